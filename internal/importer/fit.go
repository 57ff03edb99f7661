package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/tormoder/fit"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

// FormatFIT marks workouts decoded from a device FIT activity file.
const FormatFIT Format = "fit"

// ErrNoSession is returned for an activity file without a session message.
var ErrNoSession = errors.New("FIT file has no session")

// ParseFIT decodes an activity FIT file into one completed workout per
// session. Running and treadmill sessions become runs; everything else is
// recorded as a strength session with a placeholder exercise, since FIT
// summaries carry no per-exercise detail. Sessions without a start time
// are counted in Skipped.
func ParseFIT(r io.Reader) (*Result, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, err)
	}
	if len(activity.Sessions) == 0 {
		return nil, ErrNoSession
	}

	res := &Result{Format: FormatFIT}
	for _, s := range activity.Sessions {
		w, ok := sessionWorkout(s)
		if !ok {
			res.Skipped++
			continue
		}
		res.Workouts = append(res.Workouts, w)
	}
	return res, nil
}

func sessionWorkout(s *fit.SessionMsg) (analysis.Workout, bool) {
	start := validTime(s.StartTime)
	if start.IsZero() {
		start = validTime(s.Timestamp)
	}
	if start.IsZero() {
		return analysis.Workout{}, false
	}
	date := start.Local().Format(analysis.DateLayout)

	seconds := positive(s.GetTotalElapsedTimeScaled())
	if seconds == 0 {
		seconds = positive(s.GetTotalTimerTimeScaled())
	}
	minutes := math.Round(seconds / 60)

	w := analysis.Workout{
		Date:         date,
		Status:       analysis.StatusCompleted,
		Type:         analysis.TypeStrength,
		Title:        "Strength (FIT)",
		Source:       string(FormatFIT),
		RunDuration:  analysis.NumString(strconv.Itoa(int(minutes))),
		RunHeartRate: countOrEmpty(uint(s.AvgHeartRate), math.MaxUint8),
		Calories:     countOrEmpty(uint(s.TotalCalories), math.MaxUint16),
	}

	if s.Sport == fit.SportRunning || s.SubSport == fit.SubSportTreadmill {
		km := positive(s.GetTotalDistanceScaled()) / 1000
		w.Type = analysis.TypeRun
		w.Title = "Run (FIT)"
		w.RunDistance = analysis.NumString(strconv.FormatFloat(km, 'f', 2, 64))
		if km > 0 && minutes > 0 {
			w.RunPace = analysis.FormatPace(minutes / km)
		}
	} else {
		w.Exercises = []analysis.Exercise{{Name: "Imported session", Sets: "1"}}
	}

	w.ID = workoutID(FormatFIT, date, start.UTC().Format(time.RFC3339), w.Type)
	return w, true
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

// positive maps the decoder's NaN for an absent field, and any negative
// value, to 0.
func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

// countOrEmpty formats a FIT integer field, leaving it empty when the
// device wrote the field's invalid marker or zero.
func countOrEmpty(v, invalid uint) analysis.NumString {
	if v == 0 || v == invalid {
		return ""
	}
	return analysis.NumString(strconv.FormatUint(uint64(v), 10))
}
