package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

func runSession(start time.Time) *fit.SessionMsg {
	s := fit.NewSessionMsg()
	s.StartTime = start
	s.Sport = fit.SportRunning
	s.TotalElapsedTime = 30 * 60 * 1000 // ms
	s.TotalDistance = 5 * 1000 * 100    // cm
	s.AvgHeartRate = 152
	s.TotalCalories = 410
	return s
}

func TestSessionWorkout_Run(t *testing.T) {
	start := time.Date(2024, 3, 1, 7, 30, 0, 0, time.Local)

	w, ok := sessionWorkout(runSession(start))
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", w.Date)
	assert.Equal(t, analysis.TypeRun, w.Type)
	assert.Equal(t, analysis.StatusCompleted, w.Status)
	assert.Equal(t, analysis.NumString("5.00"), w.RunDistance)
	assert.Equal(t, analysis.NumString("30"), w.RunDuration)
	assert.Equal(t, "6:00", w.RunPace)
	assert.Equal(t, analysis.NumString("152"), w.RunHeartRate)
	assert.Equal(t, analysis.NumString("410"), w.Calories)
	assert.Equal(t, "fit", w.Source)
	assert.True(t, strings.HasPrefix(w.ID, "w_2024-03-01_"))

	again, _ := sessionWorkout(runSession(start))
	assert.Equal(t, w.ID, again.ID, "ids are stable across imports")
}

func TestSessionWorkout_Treadmill(t *testing.T) {
	s := runSession(time.Date(2024, 3, 2, 18, 0, 0, 0, time.Local))
	s.Sport = fit.SportTraining
	s.SubSport = fit.SubSportTreadmill

	w, ok := sessionWorkout(s)
	require.True(t, ok)
	assert.Equal(t, analysis.TypeRun, w.Type)
}

func TestSessionWorkout_Strength(t *testing.T) {
	s := fit.NewSessionMsg()
	s.StartTime = time.Date(2024, 3, 3, 12, 0, 0, 0, time.Local)
	s.Sport = fit.SportTraining
	s.SubSport = fit.SubSportStrengthTraining
	s.TotalElapsedTime = 45 * 60 * 1000

	w, ok := sessionWorkout(s)
	require.True(t, ok)
	assert.Equal(t, analysis.TypeStrength, w.Type)
	assert.Equal(t, analysis.NumString("45"), w.RunDuration)
	assert.Empty(t, w.RunDistance)
	assert.Empty(t, w.RunHeartRate, "invalid marker is not a reading")
	assert.Empty(t, w.Calories)
	require.Len(t, w.Exercises, 1)
	assert.Equal(t, analysis.NumString("1"), w.Exercises[0].Sets)
}

func TestSessionWorkout_NoStartTime(t *testing.T) {
	s := fit.NewSessionMsg()
	s.Sport = fit.SportRunning
	_, ok := sessionWorkout(s)
	assert.False(t, ok)
}

func TestParseFIT_NotFIT(t *testing.T) {
	_, err := ParseFIT(strings.NewReader("Date,Distance,Duration\n2024-01-01,5,30\n"))
	assert.Error(t, err)
}

func TestCountOrEmpty(t *testing.T) {
	assert.Equal(t, analysis.NumString("150"), countOrEmpty(150, 255))
	assert.Empty(t, countOrEmpty(255, 255))
	assert.Empty(t, countOrEmpty(0, 255))
}
