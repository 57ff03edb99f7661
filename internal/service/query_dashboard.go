package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	// Current cycle
	Cycle analysis.CycleAnalysis

	// This week
	WeekRunCount      int
	WeekStrengthCount int
	WeekDistance      float64 // km
	WeekDuration      float64 // minutes
	WeekCalories      int

	// Totals
	WorkoutCount int
	LastSync     time.Time // zero when never synced

	// For charts
	WeeklyDistance []float64 // last weeks of run distance
	WeeklyLabels   []string  // week labels (e.g., "Jan 06")
}

// GetDashboardData fetches all data needed for the dashboard
func (s *QueryService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	data := &DashboardData{}

	cycle, err := s.Cycle(ctx, 0)
	if err != nil {
		return nil, err
	}
	data.Cycle = cycle

	today := s.now().UTC()
	weekStart := today.AddDate(0, 0, -(DashboardWeekDays - 1)).Format(analysis.DateLayout)
	week, err := s.store.ListWorkouts(ctx, store.WorkoutFilter{
		From:   weekStart,
		To:     today.Format(analysis.DateLayout),
		Status: analysis.StatusCompleted,
	})
	if err != nil {
		return nil, err
	}
	s.calculateWeekStats(data, week)

	// Partial data is fine for the counters below
	if n, err := s.store.CountWorkouts(ctx); err == nil {
		data.WorkoutCount = n
	} else {
		log.Warnf("dashboard: counting workouts: %s", err)
	}
	if v, err := s.store.GetSyncState(ctx, store.SyncKeyLastRun); err == nil && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			data.LastSync = t
		}
	}

	trend, err := s.Trend(ctx, analysis.MetricDistance, analysis.ScaleWeekly)
	if err != nil {
		return nil, err
	}
	data.WeeklyDistance, data.WeeklyLabels = buildWeeklyChart(trend, DashboardTrendPoints)

	return data, nil
}

func (s *QueryService) calculateWeekStats(data *DashboardData, workouts []analysis.Workout) {
	var calories float64
	for _, w := range workouts {
		switch w.Type {
		case analysis.TypeRun:
			data.WeekRunCount++
			data.WeekDistance += w.RunDistance.Float()
			data.WeekDuration += w.RunDuration.Float()
		case analysis.TypeStrength:
			data.WeekStrengthCount++
		}
		calories += w.Calories.Float()
	}
	data.WeekCalories = int(calories + 0.5)
}

// buildWeeklyChart keeps the last n weekly points and labels them by the
// week's Monday.
func buildWeeklyChart(points []analysis.TrendPoint, n int) ([]float64, []string) {
	if len(points) > n {
		points = points[len(points)-n:]
	}
	values := make([]float64, 0, len(points))
	labels := make([]string, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
		label := p.Date
		if t, err := time.Parse(analysis.DateLayout, p.Date); err == nil {
			label = t.Format("Jan 02")
		}
		labels = append(labels, label)
	}
	return values, labels
}
