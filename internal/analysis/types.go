package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Workout statuses and types as stored upstream.
const (
	StatusCompleted = "completed"
	StatusPlanned   = "planned"

	TypeRun      = "run"
	TypeStrength = "strength"
	// TypeAnalysis marks form-analysis entries; they are not training.
	TypeAnalysis = "analysis"
)

// DateLayout is the calendar-date format used by every record.
const DateLayout = "2006-01-02"

// NumString holds a numeric field exactly as the upstream record stored it.
// It decodes from either a JSON number or a JSON string so that malformed
// values ("150 bpm", "120-140") survive until a parser decides what they mean.
type NumString string

// UnmarshalJSON accepts numbers, strings and null.
func (n *NumString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*n = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = NumString(str)
	default:
		*n = NumString(s)
	}
	return nil
}

// Num formats a float as a NumString.
func Num(v float64) NumString {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return NumString(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float parses the value with leading-number semantics, 0 on failure.
func (n NumString) Float() float64 { return ParseFloat(string(n)) }

// Int parses the value as a leading integer, 0 on failure.
func (n NumString) Int() int { return ParseInt(string(n)) }

// Loose parses the value with the permissive unit-stripping parser.
func (n NumString) Loose() float64 { return ParseLoose(string(n)) }

// Exercise is one line of a strength workout.
type Exercise struct {
	Name   string    `json:"name"`
	Sets   NumString `json:"sets"`
	Reps   NumString `json:"reps"`
	Weight NumString `json:"weight"`
}

// Workout is a single logged session. Run fields are only meaningful for
// runs and Exercises only for strength sessions.
type Workout struct {
	ID           string     `json:"id,omitempty"`
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	Type         string     `json:"type"`
	Title        string     `json:"title,omitempty"`
	Source       string     `json:"source,omitempty"`
	RunDistance  NumString  `json:"runDistance,omitempty"`  // km
	RunDuration  NumString  `json:"runDuration,omitempty"`  // minutes
	RunPace      string     `json:"runPace,omitempty"`      // M'SS" or M:SS
	RunHeartRate NumString  `json:"runHeartRate,omitempty"` // bpm
	Calories     NumString  `json:"calories,omitempty"`
	Exercises    []Exercise `json:"exercises,omitempty"`
}

// Completed reports whether the workout counts toward analytics.
func (w Workout) Completed() bool { return w.Status == StatusCompleted }

// BodyLog is one day's body measurement.
type BodyLog struct {
	Date    string    `json:"date"`
	Weight  NumString `json:"weight"`  // kg
	BodyFat NumString `json:"bodyFat"` // percent
}
