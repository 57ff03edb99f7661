package analysis

import (
	"sort"
	"strings"
)

// StrengthRecord holds the best-ever values for one exercise and the date
// each was set.
type StrengthRecord struct {
	Max1RM        float64 `json:"max1RM"`
	Max1RMDate    string  `json:"max1RMDate,omitempty"`
	Max1RMWeight  float64 `json:"max1RMWeight,omitempty"`
	Max1RMReps    int     `json:"max1RMReps,omitempty"`
	MaxVolume     float64 `json:"maxVolume"`
	MaxVolumeDate string  `json:"maxVolumeDate,omitempty"`
	MaxWeight     float64 `json:"maxWeight"`
	MaxWeightDate string  `json:"maxWeightDate,omitempty"`
	MaxSets       int     `json:"maxSets"`
	MaxSetsDate   string  `json:"maxSetsDate,omitempty"`
	MaxReps       int     `json:"maxReps"`
	MaxRepsDate   string  `json:"maxRepsDate,omitempty"`
	FirstDate     string  `json:"firstDate"`
	LastDate      string  `json:"lastDate"`
}

// RunRecords holds running bests. Nil means no qualifying run yet.
type RunRecords struct {
	MaxDistance         *float64 `json:"maxDistance"`
	MaxDistanceDate     string   `json:"maxDistanceDate,omitempty"`
	FastestPace         *float64 `json:"fastestPace"`
	FastestPaceDate     string   `json:"fastestPaceDate,omitempty"`
	LongestDuration     *float64 `json:"longestDuration"`
	LongestDurationDate string   `json:"longestDurationDate,omitempty"`
}

// RecordSet is the full set of personal records derived from a history.
type RecordSet struct {
	Strength map[string]*StrengthRecord `json:"strengthPRs"`
	Run      RunRecords                 `json:"runPRs"`
}

// Exercises returns the exercise names with records, sorted.
func (s RecordSet) Exercises() []string {
	names := make([]string, 0, len(s.Strength))
	for name := range s.Strength {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OneRepMax estimates a one-rep max with the Epley formula, rounded to one
// decimal. A single rep returns the weight itself.
func OneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return round(weight*(1+float64(reps)/30), 1)
}

// ExtractRecords scans completed workouts for personal records. Ties keep
// the record that was seen first.
func ExtractRecords(workouts []Workout) RecordSet {
	set := RecordSet{Strength: make(map[string]*StrengthRecord)}

	for _, w := range workouts {
		if !w.Completed() {
			continue
		}
		switch w.Type {
		case TypeStrength:
			for _, ex := range w.Exercises {
				updateStrength(set.Strength, w.Date, ex)
			}
		case TypeRun:
			updateRun(&set.Run, w)
		}
	}
	return set
}

func updateStrength(records map[string]*StrengthRecord, date string, ex Exercise) {
	name := strings.TrimSpace(ex.Name)
	if name == "" {
		return
	}
	sets := ex.Sets.Int()
	reps := ex.Reps.Int()
	weight := ex.Weight.Float()
	if sets <= 0 || reps <= 0 || weight <= 0 {
		return
	}

	volume := float64(sets*reps) * weight
	oneRM := OneRepMax(weight, reps)

	pr, ok := records[name]
	if !ok {
		pr = &StrengthRecord{FirstDate: date, LastDate: date}
		records[name] = pr
	}

	if oneRM > pr.Max1RM {
		pr.Max1RM = oneRM
		pr.Max1RMDate = date
		pr.Max1RMWeight = weight
		pr.Max1RMReps = reps
	}
	if volume > pr.MaxVolume {
		pr.MaxVolume = volume
		pr.MaxVolumeDate = date
	}
	if weight > pr.MaxWeight {
		pr.MaxWeight = weight
		pr.MaxWeightDate = date
	}
	if sets > pr.MaxSets {
		pr.MaxSets = sets
		pr.MaxSetsDate = date
	}
	if reps > pr.MaxReps {
		pr.MaxReps = reps
		pr.MaxRepsDate = date
	}
	if date < pr.FirstDate {
		pr.FirstDate = date
	}
	if date > pr.LastDate {
		pr.LastDate = date
	}
}

func updateRun(r *RunRecords, w Workout) {
	distance := w.RunDistance.Float()
	duration := w.RunDuration.Float()

	// A pace string that is present but unreadable yields no pace at all.
	var pace float64
	if w.RunPace != "" {
		pace, _ = ParsePace(w.RunPace)
	} else if distance > 0 && duration > 0 {
		pace = duration / distance
	}

	if distance > 0 && (r.MaxDistance == nil || distance > *r.MaxDistance) {
		r.MaxDistance = &distance
		r.MaxDistanceDate = w.Date
	}
	if pace > 0 && (r.FastestPace == nil || pace < *r.FastestPace) {
		r.FastestPace = &pace
		r.FastestPaceDate = w.Date
	}
	if duration > 0 && (r.LongestDuration == nil || duration > *r.LongestDuration) {
		r.LongestDuration = &duration
		r.LongestDurationDate = w.Date
	}
}
