package analysis

import (
	"math"
	"reflect"
	"testing"
)

func TestOneRepMax(t *testing.T) {
	tests := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{100, 5, 116.7},
		{100, 1, 100},
		{60, 10, 80},
		{0, 5, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := OneRepMax(tt.weight, tt.reps); got != tt.want {
			t.Errorf("OneRepMax(%v, %d) = %v, want %v", tt.weight, tt.reps, got, tt.want)
		}
	}
}

func TestOneRepMaxMonotonic(t *testing.T) {
	prev := OneRepMax(80, 1)
	for reps := 2; reps <= 20; reps++ {
		got := OneRepMax(80, reps)
		if got < prev {
			t.Fatalf("OneRepMax(80, %d) = %v dropped below %v", reps, got, prev)
		}
		prev = got
	}
}

func strength(date string, ex ...Exercise) Workout {
	return Workout{Date: date, Type: TypeStrength, Status: StatusCompleted, Exercises: ex}
}

func TestExtractRecordsStrength(t *testing.T) {
	workouts := []Workout{
		strength("2024-01-01", Exercise{Name: "Squat", Sets: "5", Reps: "5", Weight: "100"}),
		strength("2024-01-08", Exercise{Name: "Squat", Sets: "3", Reps: "3", Weight: "110"}),
		strength("2024-01-15", Exercise{Name: " Squat ", Sets: "5", Reps: "5", Weight: "100"}),
		strength("2024-01-20", Exercise{Name: "Bench", Sets: "3", Reps: "8", Weight: "60"}),
	}

	set := ExtractRecords(workouts)
	if got := set.Exercises(); !reflect.DeepEqual(got, []string{"Bench", "Squat"}) {
		t.Fatalf("Exercises() = %v", got)
	}

	squat := set.Strength["Squat"]
	if squat.Max1RM != 121 || squat.Max1RMDate != "2024-01-08" {
		t.Errorf("squat 1RM = %v on %s, want 121 on 2024-01-08", squat.Max1RM, squat.Max1RMDate)
	}
	if squat.Max1RMWeight != 110 || squat.Max1RMReps != 3 {
		t.Errorf("squat 1RM set = %vx%d, want 110x3", squat.Max1RMWeight, squat.Max1RMReps)
	}
	// The tie on 2024-01-15 keeps the first record.
	if squat.MaxVolume != 2500 || squat.MaxVolumeDate != "2024-01-01" {
		t.Errorf("squat volume = %v on %s, want 2500 on 2024-01-01", squat.MaxVolume, squat.MaxVolumeDate)
	}
	if squat.MaxWeight != 110 || squat.MaxSets != 5 || squat.MaxReps != 5 {
		t.Errorf("squat maxima = %v/%d/%d", squat.MaxWeight, squat.MaxSets, squat.MaxReps)
	}
	if squat.FirstDate != "2024-01-01" || squat.LastDate != "2024-01-15" {
		t.Errorf("squat dates = %s..%s", squat.FirstDate, squat.LastDate)
	}
}

func TestExtractRecordsSkipsIncompleteEntries(t *testing.T) {
	workouts := []Workout{
		strength("2024-01-01",
			Exercise{Name: "Deadlift", Sets: "0", Reps: "5", Weight: "140"},
			Exercise{Name: "Deadlift", Sets: "3", Reps: "", Weight: "140"},
			Exercise{Name: "Deadlift", Sets: "3", Reps: "5", Weight: "-1"},
			Exercise{Name: "", Sets: "3", Reps: "5", Weight: "50"},
		),
		{Date: "2024-01-02", Type: TypeStrength, Status: StatusPlanned, Exercises: []Exercise{{Name: "Press", Sets: "3", Reps: "5", Weight: "50"}}},
	}

	set := ExtractRecords(workouts)
	if len(set.Strength) != 0 {
		t.Errorf("Strength = %+v, want none", set.Strength)
	}
}

func TestExtractRecordsRun(t *testing.T) {
	workouts := []Workout{
		{Date: "2024-02-01", Type: TypeRun, Status: StatusCompleted, RunDistance: "10", RunDuration: "55"},
		{Date: "2024-02-03", Type: TypeRun, Status: StatusCompleted, RunDistance: "5", RunDuration: "24", RunPace: `4'48"`},
		{Date: "2024-02-05", Type: TypeRun, Status: StatusCompleted, RunDistance: "21.1", RunDuration: "120", RunPace: "steady"},
		{Date: "2024-02-06", Type: TypeRun, Status: StatusPlanned, RunDistance: "42.2", RunDuration: "240"},
	}

	run := ExtractRecords(workouts).Run
	if run.MaxDistance == nil || *run.MaxDistance != 21.1 || run.MaxDistanceDate != "2024-02-05" {
		t.Errorf("MaxDistance = %v on %s", run.MaxDistance, run.MaxDistanceDate)
	}
	if run.FastestPace == nil || math.Abs(*run.FastestPace-4.8) > 1e-9 || run.FastestPaceDate != "2024-02-03" {
		t.Errorf("FastestPace = %v on %s", run.FastestPace, run.FastestPaceDate)
	}
	if run.LongestDuration == nil || *run.LongestDuration != 120 {
		t.Errorf("LongestDuration = %v", run.LongestDuration)
	}
}

func TestExtractRecordsEmpty(t *testing.T) {
	set := ExtractRecords(nil)
	if set.Strength == nil || len(set.Strength) != 0 {
		t.Errorf("Strength = %#v, want empty map", set.Strength)
	}
	if set.Run.MaxDistance != nil || set.Run.FastestPace != nil || set.Run.LongestDuration != nil {
		t.Errorf("Run = %+v, want no records", set.Run)
	}
}

func TestExtractRecordsNeverDecreaseAsHistoryGrows(t *testing.T) {
	history := []Workout{
		strength("2024-03-01", Exercise{Name: "Squat", Sets: "5", Reps: "5", Weight: "100"}),
		strength("2024-03-04", Exercise{Name: "Squat", Sets: "3", Reps: "3", Weight: "110"}),
		strength("2024-03-06", Exercise{Name: "Bench", Sets: "3", Reps: "8", Weight: "60"}),
	}

	tests := []struct {
		name  string
		extra []Workout
	}{
		{"lighter", []Workout{
			strength("2024-03-08", Exercise{Name: "Squat", Sets: "2", Reps: "2", Weight: "60"}),
		}},
		{"skipped", []Workout{
			strength("2024-03-08",
				Exercise{Name: "Squat", Sets: "0", Reps: "5", Weight: "200"},
				Exercise{Name: "Bench", Sets: "3", Reps: "5", Weight: "-10"},
			),
			{Date: "2024-03-09", Type: TypeStrength, Status: StatusPlanned, Exercises: []Exercise{{Name: "Squat", Sets: "9", Reps: "9", Weight: "300"}}},
		}},
		{"tied", []Workout{
			strength("2024-03-08", Exercise{Name: "Squat", Sets: "5", Reps: "5", Weight: "100"}),
			strength("2024-03-09", Exercise{Name: "Squat", Sets: "3", Reps: "3", Weight: "110"}),
		}},
		{"heavier", []Workout{
			strength("2024-03-08", Exercise{Name: "Bench", Sets: "5", Reps: "5", Weight: "70"}),
		}},
		{"new exercise", []Workout{
			strength("2024-03-08", Exercise{Name: "Row", Sets: "3", Reps: "10", Weight: "50"}),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := ExtractRecords(history)
			grown := append(append([]Workout(nil), history...), tt.extra...)
			after := ExtractRecords(grown)

			for name, old := range before.Strength {
				cur, ok := after.Strength[name]
				if !ok {
					t.Fatalf("%s records disappeared", name)
				}
				if cur.Max1RM < old.Max1RM {
					t.Errorf("%s max1RM dropped from %v to %v", name, old.Max1RM, cur.Max1RM)
				}
				if cur.MaxVolume < old.MaxVolume {
					t.Errorf("%s maxVolume dropped from %v to %v", name, old.MaxVolume, cur.MaxVolume)
				}
				if cur.MaxWeight < old.MaxWeight {
					t.Errorf("%s maxWeight dropped from %v to %v", name, old.MaxWeight, cur.MaxWeight)
				}
			}
		})
	}
}
