package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

func strengthWorkout(id, date string) analysis.Workout {
	return analysis.Workout{
		ID:     id,
		Date:   date,
		Status: analysis.StatusCompleted,
		Type:   analysis.TypeStrength,
		Title:  gofakeit.Sentence(3),
		Source: "manual",
		Exercises: []analysis.Exercise{
			{Name: "Squat", Sets: "5", Reps: "5", Weight: "100"},
			{Name: "Bench", Sets: "3", Reps: "8", Weight: "60.5"},
		},
	}
}

func runWorkout(id, date string) analysis.Workout {
	return analysis.Workout{
		ID:           id,
		Date:         date,
		Status:       analysis.StatusCompleted,
		Type:         analysis.TypeRun,
		Title:        gofakeit.Sentence(2),
		Source:       "strava",
		RunDistance:  "10.02",
		RunDuration:  "52",
		RunPace:      "5:11",
		RunHeartRate: "148 bpm",
		Calories:     "640",
	}
}

func TestSaveAndGetWorkout(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	want := strengthWorkout("w1", "2024-01-15")
	created, err := s.SaveWorkout(ctx, want)
	if err != nil {
		t.Fatalf("SaveWorkout() error = %v", err)
	}
	if !created {
		t.Error("first save should report created")
	}

	got, err := s.GetWorkout(ctx, "w1")
	if err != nil {
		t.Fatalf("GetWorkout() error = %v", err)
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("GetWorkout() = %+v, want %+v", *got, want)
	}

	// Saving again replaces fields and exercises.
	want.Exercises = want.Exercises[:1]
	want.Status = analysis.StatusPlanned
	created, err = s.SaveWorkout(ctx, want)
	if err != nil {
		t.Fatalf("SaveWorkout() update error = %v", err)
	}
	if created {
		t.Error("second save should report an update")
	}
	got, _ = s.GetWorkout(ctx, "w1")
	if len(got.Exercises) != 1 || got.Status != analysis.StatusPlanned {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestGetWorkoutNotFound(t *testing.T) {
	s := NewTestStore(t)
	_, err := s.GetWorkout(context.Background(), "missing")
	if !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("GetWorkout(missing) err = %v, want ErrWorkoutNotFound", err)
	}
	if err := s.DeleteWorkout(context.Background(), "missing"); !errors.Is(err, ErrWorkoutNotFound) {
		t.Errorf("DeleteWorkout(missing) err = %v, want ErrWorkoutNotFound", err)
	}
}

func TestSaveWorkoutValidation(t *testing.T) {
	s := NewTestStore(t)
	if _, err := s.SaveWorkout(context.Background(), analysis.Workout{Date: "2024-01-01"}); err == nil {
		t.Error("expected an error for a missing id")
	}
	if _, err := s.SaveWorkout(context.Background(), analysis.Workout{ID: "x"}); err == nil {
		t.Error("expected an error for a missing date")
	}
}

func TestListWorkoutsFilter(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	batch := []analysis.Workout{
		runWorkout("r2", "2024-02-10"),
		strengthWorkout("s1", "2024-01-05"),
		runWorkout("r1", "2024-01-20"),
		strengthWorkout("s2", "2024-03-01"),
	}
	created, updated, err := s.SaveWorkouts(ctx, batch)
	if err != nil {
		t.Fatalf("SaveWorkouts() error = %v", err)
	}
	if created != 4 || updated != 0 {
		t.Errorf("SaveWorkouts() = %d created, %d updated", created, updated)
	}

	all, err := s.ListWorkouts(ctx, WorkoutFilter{})
	if err != nil {
		t.Fatalf("ListWorkouts() error = %v", err)
	}
	var ids []string
	for _, w := range all {
		ids = append(ids, w.ID)
	}
	if !reflect.DeepEqual(ids, []string{"s1", "r1", "r2", "s2"}) {
		t.Errorf("ListWorkouts order = %v", ids)
	}
	if len(all[0].Exercises) != 2 || all[0].Exercises[1].Weight != "60.5" {
		t.Errorf("exercises not loaded: %+v", all[0].Exercises)
	}
	if all[1].RunHeartRate != "148 bpm" {
		t.Errorf("RunHeartRate = %q, want raw text kept", all[1].RunHeartRate)
	}

	runs, err := s.ListWorkouts(ctx, WorkoutFilter{From: "2024-01-10", To: "2024-02-28", Type: analysis.TypeRun})
	if err != nil {
		t.Fatalf("ListWorkouts(filter) error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("len(runs) = %d, want 2", len(runs))
	}

	strength, err := s.ListWorkouts(ctx, WorkoutFilter{From: "2024-02-01"})
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range strength {
		if w.ID == "s2" && len(w.Exercises) != 2 {
			t.Errorf("filtered list lost exercises for s2")
		}
	}

	n, err := s.CountWorkouts(ctx)
	if err != nil || n != 4 {
		t.Errorf("CountWorkouts() = %d, %v", n, err)
	}

	if err := s.DeleteWorkout(ctx, "s1"); err != nil {
		t.Fatalf("DeleteWorkout() error = %v", err)
	}
	var orphans int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM exercises WHERE workout_id = 's1'`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("%d exercises left behind after delete", orphans)
	}
}

func TestBodyLogs(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	logs := []analysis.BodyLog{
		{Date: "2024-01-08", Weight: "79.5", BodyFat: "19"},
		{Date: "2024-01-01", Weight: "80", BodyFat: "20"},
		{Date: "2024-01-15", Weight: "79"},
	}
	for _, l := range logs {
		if err := s.SaveBodyLog(ctx, l); err != nil {
			t.Fatalf("SaveBodyLog() error = %v", err)
		}
	}
	// Same day replaces.
	if err := s.SaveBodyLog(ctx, analysis.BodyLog{Date: "2024-01-15", Weight: "78.8", BodyFat: "18.5"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListBodyLogs(ctx, "", "")
	if err != nil {
		t.Fatalf("ListBodyLogs() error = %v", err)
	}
	want := []analysis.BodyLog{
		{Date: "2024-01-01", Weight: "80", BodyFat: "20"},
		{Date: "2024-01-08", Weight: "79.5", BodyFat: "19"},
		{Date: "2024-01-15", Weight: "78.8", BodyFat: "18.5"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListBodyLogs() = %+v, want %+v", got, want)
	}

	ranged, err := s.ListBodyLogs(ctx, "2024-01-05", "2024-01-10")
	if err != nil || len(ranged) != 1 || ranged[0].Date != "2024-01-08" {
		t.Errorf("ListBodyLogs(range) = %+v, %v", ranged, err)
	}

	if err := s.DeleteBodyLog(ctx, "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ListBodyLogs(ctx, "", ""); len(got) != 2 {
		t.Errorf("len after delete = %d, want 2", len(got))
	}
	if err := s.SaveBodyLog(ctx, analysis.BodyLog{}); err == nil {
		t.Error("expected an error for a missing date")
	}
}

func TestCredentials(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	if _, err := s.GetCredentials(ctx, "strava"); !errors.Is(err, ErrNoAuth) {
		t.Errorf("GetCredentials() on empty store err = %v, want ErrNoAuth", err)
	}
	if err := s.UpdateTokens(ctx, "strava", "a", "r", time.Now()); !errors.Is(err, ErrNoAuth) {
		t.Errorf("UpdateTokens() on empty store err = %v, want ErrNoAuth", err)
	}
	if err := s.SaveCredentials(ctx, &Credentials{AccessToken: "a"}); err == nil {
		t.Error("SaveCredentials() without a platform should fail")
	}

	expires := time.Unix(1700000000, 0)
	if err := s.SaveCredentials(ctx, &Credentials{Platform: "strava", AccountID: 42, AccessToken: "access", RefreshToken: "refresh", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveCredentials() error = %v", err)
	}
	if err := s.SaveCredentials(ctx, &Credentials{Platform: "garmin", AccessToken: "g", RefreshToken: "g", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveCredentials(garmin) error = %v", err)
	}
	newExpiry := expires.Add(6 * time.Hour)
	if err := s.UpdateTokens(ctx, "strava", "access2", "refresh2", newExpiry); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	got, err := s.GetCredentials(ctx, "strava")
	if err != nil {
		t.Fatalf("GetCredentials() error = %v", err)
	}
	if got.AccountID != 42 || got.AccessToken != "access2" || !got.ExpiresAt.Equal(newExpiry) {
		t.Errorf("GetCredentials() = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not read back")
	}
	if !got.Expired(newExpiry) || got.Expired(newExpiry.Add(-time.Minute)) {
		t.Errorf("Expired() wrong around %v", newExpiry)
	}

	if err := s.DeleteCredentials(ctx, "strava"); err != nil {
		t.Fatalf("DeleteCredentials() error = %v", err)
	}
	if err := s.DeleteCredentials(ctx, "strava"); !errors.Is(err, ErrNoAuth) {
		t.Errorf("second DeleteCredentials() err = %v, want ErrNoAuth", err)
	}
	if _, err := s.GetCredentials(ctx, "garmin"); err != nil {
		t.Errorf("garmin login removed with strava: %v", err)
	}
}

func TestSyncState(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	v, err := s.GetSyncState(ctx, SyncKeyLastActivity)
	if err != nil || v != "" {
		t.Errorf("GetSyncState(unset) = %q, %v", v, err)
	}
	if err := s.SetSyncState(ctx, SyncKeyLastActivity, "1700000000"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSyncState(ctx, SyncKeyLastActivity, "1700086400"); err != nil {
		t.Fatal(err)
	}
	v, err = s.GetSyncState(ctx, SyncKeyLastActivity)
	if err != nil || v != "1700086400" {
		t.Errorf("GetSyncState() = %q, %v", v, err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "coach.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s.SaveWorkout(context.Background(), runWorkout("r1", "2024-01-01")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopening runs migrations again over existing tables.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if n, _ := s.CountWorkouts(context.Background()); n != 1 {
		t.Errorf("CountWorkouts() after reopen = %d, want 1", n)
	}
}
