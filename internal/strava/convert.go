package strava

import (
	"math"
	"strconv"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

// SourceName tags workouts that came from the Strava API.
const SourceName = "strava"

var runSports = map[string]bool{
	"Run":        true,
	"TrailRun":   true,
	"VirtualRun": true,
	"Walk":       true,
	"Hike":       true,
}

var strengthSports = map[string]bool{
	"WeightTraining": true,
	"Crossfit":       true,
	"Workout":        true,
}

// WorkoutID is the stable id of the workout imported from activity id.
func WorkoutID(activityID int64) string {
	return "strava_" + strconv.FormatInt(activityID, 10)
}

// ToWorkout converts an activity summary into a completed workout. ok is
// false for sports the analytics do not model (rides, swims, ...).
func ToWorkout(a Activity) (analysis.Workout, bool) {
	sport := a.Sport()
	w := analysis.Workout{
		ID:     WorkoutID(a.ID),
		Date:   a.StartDateLocal.Format(analysis.DateLayout),
		Status: analysis.StatusCompleted,
		Title:  a.Name,
		Source: SourceName,
	}
	if a.StartDateLocal.IsZero() {
		w.Date = a.StartDate.Format(analysis.DateLayout)
	}
	if cal := activityCalories(a); cal > 0 {
		w.Calories = analysis.Num(math.Round(cal))
	}

	switch {
	case runSports[sport]:
		w.Type = analysis.TypeRun
		km := a.Distance / 1000
		minutes := float64(a.MovingTime) / 60
		if km > 0 {
			w.RunDistance = analysis.NumString(strconv.FormatFloat(km, 'f', 2, 64))
		}
		if a.MovingTime > 0 {
			w.RunDuration = analysis.Num(math.Round(minutes))
		}
		if km > 0 && minutes > 0 {
			w.RunPace = analysis.FormatPace(minutes / km)
		}
		if a.HasHeartrate && a.AverageHeartrate > 0 {
			w.RunHeartRate = analysis.Num(math.Round(a.AverageHeartrate))
		}
	case strengthSports[sport]:
		w.Type = analysis.TypeStrength
	default:
		return analysis.Workout{}, false
	}
	return w, true
}

// activityCalories prefers the reported calories and otherwise estimates
// them from work (1 kJ of mechanical work is roughly 1 kcal burned).
func activityCalories(a Activity) float64 {
	if a.Calories > 0 {
		return a.Calories
	}
	return a.Kilojoules
}
