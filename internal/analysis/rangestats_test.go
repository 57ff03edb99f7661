package analysis

import (
	"errors"
	"testing"
)

func completedRun(date string, dist, dur, hr NumString) Workout {
	return Workout{Date: date, Type: TypeRun, Status: StatusCompleted, RunDistance: dist, RunDuration: dur, RunHeartRate: hr}
}

func TestRangeStat(t *testing.T) {
	workouts := []Workout{
		completedRun("2024-04-01", "5.123", "30", "150 bpm"),
		completedRun("2024-04-03", "5", "20", "140"),
		completedRun("2024-04-05", "", "", "0"),
		completedRun("2024-05-01", "42", "240", "170"),
		{Date: "2024-04-02", Type: TypeRun, Status: StatusPlanned, RunDistance: "8"},
		strength("2024-04-02", Exercise{Name: "Squat", Sets: "5", Reps: "5", Weight: "100"}),
	}

	tests := []struct {
		field StatField
		want  float64
	}{
		{FieldRunCount, 3},
		{FieldTotalDistance, 10.12},
		{FieldTotalDuration, 50},
		{FieldAvgHeartRate, 145},
		{FieldAvgPace, 4.93},
	}
	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got, ok := RangeStat(workouts, "2024-04-01", "2024-04-30", tt.field).Value()
			if !ok {
				t.Fatalf("RangeStat(%s) insufficient", tt.field)
			}
			if got != tt.want {
				t.Errorf("RangeStat(%s) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestRangeStatPace(t *testing.T) {
	workouts := []Workout{completedRun("2024-04-01", "10", "50", "")}
	if got := CalculateStats(workouts, "2024-04-01", "2024-04-01", FieldAvgPace); got == nil || *got != 5 {
		t.Errorf("pace = %v, want 5", got)
	}

	fallback := []Workout{{Date: "2024-04-01", Type: TypeRun, Status: StatusCompleted, RunPace: "5:30/km"}}
	if got := CalculateStats(fallback, "2024-04-01", "2024-04-01", FieldAvgPace); got == nil || *got != 5.5 {
		t.Errorf("pace from string = %v, want 5.5", got)
	}

	unreadable := []Workout{{Date: "2024-04-01", Type: TypeRun, Status: StatusCompleted, RunPace: "easy"}}
	if got := CalculateStats(unreadable, "2024-04-01", "2024-04-01", FieldAvgPace); got != nil {
		t.Errorf("pace from %q = %v, want nil", "easy", *got)
	}
}

func TestRangeStatEmptyRange(t *testing.T) {
	workouts := []Workout{completedRun("2024-04-01", "10", "50", "150")}
	for _, f := range StatFields() {
		if got := CalculateStats(workouts, "2025-01-01", "2025-01-31", f); got != nil {
			t.Errorf("CalculateStats(%s) = %v, want nil", f, *got)
		}
	}
	if got := CalculateStats(nil, "2024-01-01", "2024-12-31", FieldRunCount); got != nil {
		t.Errorf("CalculateStats(nil) = %v, want nil", *got)
	}
}

func TestRangeStatUnknownField(t *testing.T) {
	workouts := []Workout{completedRun("2024-04-01", "10", "50", "150")}
	if RangeStat(workouts, "2024-04-01", "2024-04-01", StatField("max_speed")).OK() {
		t.Error("unknown field should be insufficient")
	}
	if _, err := ParseStatField("max_speed"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseStatField err = %v, want ErrUnknownField", err)
	}
	if f, err := ParseStatField(" run_count "); err != nil || f != FieldRunCount {
		t.Errorf("ParseStatField(run_count) = %v, %v", f, err)
	}
	if FieldUnit(FieldAvgPace) != "min/km" {
		t.Errorf("FieldUnit(avg pace) = %q", FieldUnit(FieldAvgPace))
	}
}
