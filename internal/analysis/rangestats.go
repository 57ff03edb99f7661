package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned for a statistic name that is not supported.
var ErrUnknownField = errors.New("unknown stat field")

// StatField names a range statistic.
type StatField string

const (
	FieldAvgHeartRate  StatField = "avg_heart_rate"
	FieldTotalDistance StatField = "total_distance"
	FieldTotalDuration StatField = "total_duration"
	FieldRunCount      StatField = "run_count"
	FieldAvgPace       StatField = "avg_pace_min_per_km"
)

var fieldUnits = map[StatField]string{
	FieldAvgHeartRate:  "bpm",
	FieldTotalDistance: "km",
	FieldTotalDuration: "min",
	FieldRunCount:      "runs",
	FieldAvgPace:       "min/km",
}

// StatFields lists every supported field.
func StatFields() []StatField {
	return []StatField{FieldAvgHeartRate, FieldTotalDistance, FieldTotalDuration, FieldRunCount, FieldAvgPace}
}

// ParseStatField validates a field name.
func ParseStatField(name string) (StatField, error) {
	f := StatField(strings.TrimSpace(name))
	if _, ok := fieldUnits[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// FieldUnit returns the display unit of field.
func FieldUnit(field StatField) string {
	return fieldUnits[field]
}

// RangeStat computes field over completed runs dated within [start, end]
// (inclusive, YYYY-MM-DD). It is insufficient when no run qualifies or the
// field has no usable data.
func RangeStat(workouts []Workout, start, end string, field StatField) Stat[float64] {
	runs := completedRunsBetween(workouts, start, end)
	if len(runs) == 0 {
		return Insufficient[float64]("no completed runs in range")
	}

	switch field {
	case FieldRunCount:
		return Computed(float64(len(runs)))

	case FieldTotalDistance:
		var total float64
		for _, w := range runs {
			total += w.RunDistance.Loose()
		}
		if total <= 0 {
			return Insufficient[float64]("no distance logged")
		}
		return Computed(round(total, 2))

	case FieldTotalDuration:
		var total float64
		for _, w := range runs {
			total += w.RunDuration.Loose()
		}
		if total <= 0 {
			return Insufficient[float64]("no duration logged")
		}
		return Computed(round(total, 1))

	case FieldAvgHeartRate:
		var sum float64
		var n int
		for _, w := range runs {
			if hr := w.RunHeartRate.Loose(); hr > 0 {
				sum += hr
				n++
			}
		}
		if n == 0 {
			return Insufficient[float64]("no heart rate logged")
		}
		return Computed(round(sum/float64(n), 1))

	case FieldAvgPace:
		var sum float64
		var n int
		for _, w := range runs {
			if p, ok := statPace(w); ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			return Insufficient[float64]("no pace available")
		}
		return Computed(round(sum/float64(n), 2))
	}

	return Insufficient[float64]("unknown field")
}

// CalculateStats is RangeStat for callers that want a number or nil.
func CalculateStats(workouts []Workout, start, end string, field StatField) *float64 {
	return RangeStat(workouts, start, end, field).Ptr()
}

func completedRunsBetween(workouts []Workout, start, end string) []Workout {
	var runs []Workout
	for _, w := range workouts {
		if w.Type != TypeRun || !w.Completed() || w.Date == "" {
			continue
		}
		if start <= w.Date && w.Date <= end {
			runs = append(runs, w)
		}
	}
	return runs
}

// statPace prefers duration/distance and falls back to an M:SS pace string.
func statPace(w Workout) (float64, bool) {
	dist := w.RunDistance.Loose()
	dur := w.RunDuration.Loose()
	if dist > 0 && dur > 0 {
		return dur / dist, true
	}
	if !strings.Contains(w.RunPace, ":") {
		return 0, false
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(w.RunPace, "/km", ""), `"`, "")
	parts := strings.Split(cleaned, ":")
	if len(parts) < 2 {
		return 0, false
	}
	mins, ok := leadingFloat(parts[0])
	if !ok {
		return 0, false
	}
	secs, ok := leadingFloat(parts[1])
	if !ok {
		return 0, false
	}
	return mins + secs/60, true
}
