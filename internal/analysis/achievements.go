package analysis

import (
	"sort"
	"time"
)

// AchievementCategory groups achievements for display.
type AchievementCategory string

const (
	CategoryStreak   AchievementCategory = "streak"
	CategoryTotal    AchievementCategory = "total"
	CategoryRunning  AchievementCategory = "running"
	CategoryStrength AchievementCategory = "strength"
	CategorySpecial  AchievementCategory = "special"
)

// WeekWarriorWindow is how many days back week_warrior counts sessions.
const WeekWarriorWindow = 7

// Achievement is a milestone over the workout history.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Target      float64             `json:"target"`
}

// AchievementProgress is an achievement evaluated against a history.
type AchievementProgress struct {
	Achievement
	Current  float64 `json:"current"`
	Unlocked bool    `json:"unlocked"`
}

// historyTotals are the measures every achievement is judged on.
type historyTotals struct {
	sessions      float64
	strength      float64
	longestStreak float64
	longestRun    float64
	runKm         float64
	lastWeek      float64
}

type achievementRule struct {
	Achievement
	measure func(historyTotals) float64
}

var achievementRules = []achievementRule{
	{Achievement{"first_workout", "First Step", "Complete your first workout", CategorySpecial, 1}, func(h historyTotals) float64 { return h.sessions }},
	{Achievement{"streak_3", "Getting Started", "Train 3 days in a row", CategoryStreak, 3}, func(h historyTotals) float64 { return h.longestStreak }},
	{Achievement{"streak_7", "Consistent", "Train 7 days in a row", CategoryStreak, 7}, func(h historyTotals) float64 { return h.longestStreak }},
	{Achievement{"streak_30", "Relentless", "Train 30 days in a row", CategoryStreak, 30}, func(h historyTotals) float64 { return h.longestStreak }},
	{Achievement{"total_10", "Beginner", "Complete 10 workouts", CategoryTotal, 10}, func(h historyTotals) float64 { return h.sessions }},
	{Achievement{"total_50", "Regular", "Complete 50 workouts", CategoryTotal, 50}, func(h historyTotals) float64 { return h.sessions }},
	{Achievement{"total_100", "Centurion", "Complete 100 workouts", CategoryTotal, 100}, func(h historyTotals) float64 { return h.sessions }},
	{Achievement{"run_10km", "10K Runner", "Run 10 km in a single session", CategoryRunning, 10}, func(h historyTotals) float64 { return h.longestRun }},
	{Achievement{"run_100km_total", "100K Club", "Run 100 km in total", CategoryRunning, 100}, func(h historyTotals) float64 { return h.runKm }},
	{Achievement{"run_500km_total", "500K Club", "Run 500 km in total", CategoryRunning, 500}, func(h historyTotals) float64 { return h.runKm }},
	{Achievement{"strength_50", "Lifter", "Complete 50 strength sessions", CategoryStrength, 50}, func(h historyTotals) float64 { return h.strength }},
	{Achievement{"strength_100", "Iron Regular", "Complete 100 strength sessions", CategoryStrength, 100}, func(h historyTotals) float64 { return h.strength }},
	{Achievement{"week_warrior", "Week Warrior", "Complete 5 workouts within a week", CategorySpecial, 5}, func(h historyTotals) float64 { return h.lastWeek }},
}

// Achievements lists every achievement definition in display order.
func Achievements() []Achievement {
	out := make([]Achievement, len(achievementRules))
	for i, r := range achievementRules {
		out[i] = r.Achievement
	}
	return out
}

// EvaluateAchievements judges every achievement against the completed
// workouts. Analysis entries are not training and never count. week_warrior
// counts sessions dated on or after seven days before now.
func EvaluateAchievements(workouts []Workout, now time.Time) []AchievementProgress {
	h := totalsOf(workouts, dateOnly(now).AddDate(0, 0, -WeekWarriorWindow).Format(DateLayout))

	out := make([]AchievementProgress, len(achievementRules))
	for i, r := range achievementRules {
		cur := r.measure(h)
		out[i] = AchievementProgress{
			Achievement: r.Achievement,
			Current:     round(cur, 2),
			Unlocked:    cur >= r.Target,
		}
	}
	return out
}

// UnlockedAchievements keeps the unlocked entries of progress.
func UnlockedAchievements(progress []AchievementProgress) []AchievementProgress {
	var out []AchievementProgress
	for _, p := range progress {
		if p.Unlocked {
			out = append(out, p)
		}
	}
	return out
}

func totalsOf(workouts []Workout, weekStart string) historyTotals {
	var h historyTotals
	dates := make(map[string]bool)
	for _, w := range workouts {
		if !w.Completed() || w.Type == TypeAnalysis {
			continue
		}
		h.sessions++
		if w.Date != "" {
			dates[w.Date] = true
			if w.Date >= weekStart {
				h.lastWeek++
			}
		}
		switch w.Type {
		case TypeStrength:
			h.strength++
		case TypeRun:
			km := w.RunDistance.Float()
			h.runKm += km
			if km > h.longestRun {
				h.longestRun = km
			}
		}
	}
	h.longestStreak = float64(longestStreak(dates))
	return h
}

// longestStreak is the longest run of consecutive calendar days in dates.
// Unparseable dates break a streak.
func longestStreak(dates map[string]bool) int {
	days := make([]time.Time, 0, len(dates))
	for d := range dates {
		if t, err := time.Parse(DateLayout, d); err == nil {
			days = append(days, t)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, cur := 0, 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == 24*time.Hour {
			cur++
		} else {
			cur = 1
		}
		if cur > best {
			best = cur
		}
	}
	return best
}
