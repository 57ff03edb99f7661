package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/importer"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

const stravaExport = `start_date,name,distance,moving_time
2024-06-01T07:00:00Z,Morning Run,10000,3000
2024-06-03T07:00:00Z,Tempo,8000,2400
not-a-date,Broken,5000,1500
`

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	inv := &countingInvalidator{}
	svc := NewImportService(st, inv)

	result, err := svc.ImportCSV(ctx, strings.NewReader(stravaExport))
	require.NoError(t, err)
	assert.Equal(t, importer.FormatStrava, result.Format)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, inv.n)

	again, err := svc.ImportCSV(ctx, strings.NewReader(stravaExport))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Updated)

	n, err := st.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImportCSVRejectsUnknownLayout(t *testing.T) {
	svc := NewImportService(store.NewTestStore(t), nil)
	_, err := svc.ImportCSV(context.Background(), strings.NewReader("a,b\n1,2\n"))
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}

func TestImportFITRejectsCSV(t *testing.T) {
	inv := &countingInvalidator{}
	svc := NewImportService(store.NewTestStore(t), inv)
	_, err := svc.ImportFIT(context.Background(), strings.NewReader(stravaExport))
	assert.Error(t, err)
	assert.Zero(t, inv.n)
}

func TestExportCSVRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	seed(t, st,
		runOn("r1", "2024-06-10", "10", "50", "150"),
		liftOn("s1", "2024-06-12", "100"),
	)
	svc := NewImportService(st, nil)

	var buf bytes.Buffer
	n, err := svc.ExportCSV(ctx, &buf, store.WorkoutFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	parsed, err := importer.ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, importer.FormatCoach, parsed.Format)
	assert.Len(t, parsed.Workouts, 2)
}

func TestAddBodyLog(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	inv := &countingInvalidator{}
	svc := NewImportService(st, inv)

	require.NoError(t, svc.AddBodyLog(ctx, analysis.BodyLog{Date: "2024-06-01", Weight: "80"}))
	require.NoError(t, svc.AddBodyLog(ctx, analysis.BodyLog{Date: "2024-06-01", Weight: "79", BodyFat: "18"}))
	assert.Equal(t, 2, inv.bodyLogs)
	assert.Zero(t, inv.n)

	logs, err := st.ListBodyLogs(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, analysis.NumString("79"), logs[0].Weight)

	assert.Error(t, svc.AddBodyLog(ctx, analysis.BodyLog{Date: "2024-06-02"}))
	assert.Equal(t, 2, inv.bodyLogs)
}

func TestAddWorkout(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	svc := NewImportService(st, nil)

	w, err := svc.AddWorkout(ctx, analysis.Workout{Date: "2024-06-05", Type: analysis.TypeRun, RunDistance: "5"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.ID, "w_2024-06-05_"))
	assert.Equal(t, analysis.StatusCompleted, w.Status)

	got, err := st.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.NumString("5"), got.RunDistance)

	_, err = svc.AddWorkout(ctx, analysis.Workout{})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	st := store.NewTestStore(t)
	inv := &countingInvalidator{}
	svc := NewImportService(st, inv)

	w, err := svc.AddWorkout(ctx, analysis.Workout{Date: "2024-06-01", Type: analysis.TypeRun, RunDistance: "5"})
	require.NoError(t, err)
	require.NoError(t, svc.AddBodyLog(ctx, analysis.BodyLog{Date: "2024-06-01", Weight: "70"}))

	require.NoError(t, svc.DeleteWorkout(ctx, w.ID))
	assert.ErrorIs(t, svc.DeleteWorkout(ctx, w.ID), store.ErrWorkoutNotFound)

	require.NoError(t, svc.DeleteBodyLog(ctx, "2024-06-01"))
	logs, err := st.ListBodyLogs(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, 2, inv.n)
	assert.Equal(t, 2, inv.bodyLogs)
}
