package analysis

import (
	"fmt"
	"testing"
	"time"
)

var achievementNow = time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)

func runOnDay(date, km string) Workout {
	return Workout{Date: date, Type: TypeRun, Status: StatusCompleted, RunDistance: NumString(km)}
}

func progressByID(progress []AchievementProgress) map[string]AchievementProgress {
	m := make(map[string]AchievementProgress, len(progress))
	for _, p := range progress {
		m[p.ID] = p
	}
	return m
}

func TestEvaluateAchievementsEmpty(t *testing.T) {
	got := EvaluateAchievements(nil, achievementNow)
	if len(got) != len(Achievements()) {
		t.Fatalf("len = %d, want %d", len(got), len(Achievements()))
	}
	if u := UnlockedAchievements(got); len(u) != 0 {
		t.Errorf("unlocked = %+v, want none", u)
	}
}

func TestEvaluateAchievements(t *testing.T) {
	workouts := []Workout{
		// Three consecutive days, one of them with two sessions.
		runOnDay("2024-05-01", "12"),
		runOnDay("2024-05-02", "5"),
		strength("2024-05-02", Exercise{Name: "Squat", Sets: "5", Reps: "5", Weight: "100"}),
		runOnDay("2024-05-03", "5"),
		// Gap, then two more days.
		runOnDay("2024-05-10", "8"),
		runOnDay("2024-05-11", "8"),
		{Date: "2024-05-12", Type: TypeAnalysis, Status: StatusCompleted},
		{Date: "2024-05-13", Type: TypeRun, Status: StatusPlanned, RunDistance: "42"},
	}

	got := progressByID(EvaluateAchievements(workouts, achievementNow))

	tests := []struct {
		id       string
		current  float64
		unlocked bool
	}{
		{"first_workout", 6, true},
		{"streak_3", 3, true},
		{"streak_7", 3, false},
		{"total_10", 6, false},
		{"run_10km", 12, true},
		{"run_100km_total", 38, false},
		{"strength_50", 1, false},
		{"week_warrior", 0, false},
	}
	for _, tt := range tests {
		p, ok := got[tt.id]
		if !ok {
			t.Errorf("%s missing", tt.id)
			continue
		}
		if p.Current != tt.current || p.Unlocked != tt.unlocked {
			t.Errorf("%s = %v (unlocked %v), want %v (unlocked %v)", tt.id, p.Current, p.Unlocked, tt.current, tt.unlocked)
		}
	}
}

func TestEvaluateAchievementsWeekWarrior(t *testing.T) {
	var workouts []Workout
	// 2024-06-23 is exactly seven days back and still counts.
	for _, d := range []string{"2024-06-22", "2024-06-23", "2024-06-25", "2024-06-27", "2024-06-29"} {
		workouts = append(workouts, runOnDay(d, "5"))
	}

	p := progressByID(EvaluateAchievements(workouts, achievementNow))["week_warrior"]
	if p.Current != 4 || p.Unlocked {
		t.Errorf("week_warrior = %v (unlocked %v), want 4 locked", p.Current, p.Unlocked)
	}

	workouts = append(workouts, runOnDay("2024-06-30", "5"))
	p = progressByID(EvaluateAchievements(workouts, achievementNow))["week_warrior"]
	if !p.Unlocked {
		t.Errorf("week_warrior = %v, want unlocked", p.Current)
	}
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		dates []string
		want  int
	}{
		{nil, 0},
		{[]string{"2024-01-01"}, 1},
		{[]string{"2024-02-28", "2024-02-29", "2024-03-01"}, 3},
		{[]string{"2023-12-31", "2024-01-01", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06"}, 4},
		{[]string{"2024-01-01", "bogus", "2024-01-02"}, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.dates), func(t *testing.T) {
			set := make(map[string]bool)
			for _, d := range tt.dates {
				set[d] = true
			}
			if got := longestStreak(set); got != tt.want {
				t.Errorf("longestStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAchievementsMonotonic(t *testing.T) {
	var history []Workout
	prev := UnlockedAchievements(EvaluateAchievements(history, achievementNow))
	for day := 1; day <= 40; day++ {
		history = append(history, runOnDay(fmt.Sprintf("2024-05-%02d", (day-1)%31+1), "3"))
		cur := UnlockedAchievements(EvaluateAchievements(history, achievementNow))
		if len(cur) < len(prev) {
			t.Fatalf("day %d: unlocked %d achievements, had %d", day, len(cur), len(prev))
		}
		prev = cur
	}
}
