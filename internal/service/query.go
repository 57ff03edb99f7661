package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/cache"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

// QueryService runs the analytics over the stored history and caches the
// results until the next write.
type QueryService struct {
	store      *store.Store
	cache      *cache.TTLCache
	cycleWeeks int
	now        func() time.Time
}

// NewQueryService creates a query service. A nil cache disables caching and
// cycleWeeks <= 0 uses the default analysis window.
func NewQueryService(st *store.Store, c *cache.TTLCache, cycleWeeks int) *QueryService {
	if cycleWeeks <= 0 {
		cycleWeeks = analysis.DefaultCycleWeeks
	}
	return &QueryService{
		store:      st,
		cache:      c,
		cycleWeeks: cycleWeeks,
		now:        time.Now,
	}
}

// StatsResult is a range statistic with the request it answers. Value is nil
// when there is not enough data.
type StatsResult struct {
	Value     *float64 `json:"value"`
	Field     string   `json:"field"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Unit      string   `json:"unit"`
}

// NewStatsResult computes field over workouts without touching the store.
func NewStatsResult(workouts []analysis.Workout, start, end string, field analysis.StatField) StatsResult {
	return StatsResult{
		Value:     analysis.CalculateStats(workouts, start, end, field),
		Field:     string(field),
		StartDate: start,
		EndDate:   end,
		Unit:      analysis.FieldUnit(field),
	}
}

// Invalidate drops every cached result.
func (s *QueryService) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// InvalidateBodyLogs drops the results that read body logs. Records, stats
// and achievements only read workouts and stay cached.
func (s *QueryService) InvalidateBodyLogs() {
	if s.cache != nil {
		s.cache.Clear(cacheKindTrend, cacheKindCycle)
	}
}

// Today returns the current date in DateLayout.
func (s *QueryService) Today() string {
	return s.now().UTC().Format(analysis.DateLayout)
}

// cached loads key into dst, or fills dst with compute and stores it.
func cached[T any](s *QueryService, key string, compute func() (T, error)) (T, error) {
	var v T
	if s.cache != nil && s.cache.Get(key, &v) {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	if s.cache != nil {
		if err := s.cache.Set(key, v); err != nil {
			log.WithField("key", key).Warnf("query: caching result: %s", err)
		}
	}
	return v, nil
}

// completedWorkouts returns every completed workout, oldest first.
func (s *QueryService) completedWorkouts(ctx context.Context) ([]analysis.Workout, error) {
	workouts, err := s.store.ListWorkouts(ctx, store.WorkoutFilter{Status: analysis.StatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	return workouts, nil
}

// Workouts lists stored workouts matching f.
func (s *QueryService) Workouts(ctx context.Context, f store.WorkoutFilter) ([]analysis.Workout, error) {
	return s.store.ListWorkouts(ctx, f)
}

// Trend builds the series for metric from body logs and completed workouts.
func (s *QueryService) Trend(ctx context.Context, metric analysis.Metric, scale analysis.Scale) ([]analysis.TrendPoint, error) {
	key := cache.Key(cacheKindTrend, metric, scale)
	return cached(s, key, func() ([]analysis.TrendPoint, error) {
		logs, err := s.store.ListBodyLogs(ctx, "", "")
		if err != nil {
			return nil, fmt.Errorf("listing body logs: %w", err)
		}
		workouts, err := s.completedWorkouts(ctx)
		if err != nil {
			return nil, err
		}
		records := append(analysis.RecordsFromBodyLogs(logs), analysis.RecordsFromWorkouts(workouts)...)
		return analysis.BuildTrend(records, metric, scale), nil
	})
}

// PersonalRecords extracts records from the whole history.
func (s *QueryService) PersonalRecords(ctx context.Context) (analysis.RecordSet, error) {
	return cached(s, cache.Key(cacheKindRecords), func() (analysis.RecordSet, error) {
		workouts, err := s.store.ListWorkouts(ctx, store.WorkoutFilter{})
		if err != nil {
			return analysis.RecordSet{}, fmt.Errorf("listing workouts: %w", err)
		}
		return analysis.ExtractRecords(workouts), nil
	})
}

// Achievements evaluates every achievement against the stored history.
// Keyed by day because week_warrior looks back from today.
func (s *QueryService) Achievements(ctx context.Context) ([]analysis.AchievementProgress, error) {
	now := s.now()
	key := cache.Key(cacheKindAwards, now.UTC().Format(analysis.DateLayout))
	return cached(s, key, func() ([]analysis.AchievementProgress, error) {
		workouts, err := s.completedWorkouts(ctx)
		if err != nil {
			return nil, err
		}
		return analysis.EvaluateAchievements(workouts, now), nil
	})
}

// Cycle classifies the training phase over the last weeks weeks. weeks <= 0
// uses the configured window.
func (s *QueryService) Cycle(ctx context.Context, weeks int) (analysis.CycleAnalysis, error) {
	if weeks <= 0 {
		weeks = s.cycleWeeks
	}
	now := s.now()
	key := cache.Key(cacheKindCycle, weeks, now.UTC().Format(analysis.DateLayout))
	return cached(s, key, func() (analysis.CycleAnalysis, error) {
		logs, err := s.store.ListBodyLogs(ctx, "", "")
		if err != nil {
			return analysis.CycleAnalysis{}, fmt.Errorf("listing body logs: %w", err)
		}
		workouts, err := s.completedWorkouts(ctx)
		if err != nil {
			return analysis.CycleAnalysis{}, err
		}
		return analysis.AnalyzeCycle(analysis.CycleInput{
			BodyLogs: logs,
			Workouts: workouts,
			Weeks:    weeks,
		}, now), nil
	})
}

// RangeStats computes field over the stored runs dated within [start, end].
func (s *QueryService) RangeStats(ctx context.Context, start, end string, field analysis.StatField) (StatsResult, error) {
	key := cache.Key(cacheKindStats, field, start, end)
	return cached(s, key, func() (StatsResult, error) {
		workouts, err := s.store.ListWorkouts(ctx, store.WorkoutFilter{
			From: start,
			To:   end,
			Type: analysis.TypeRun,
		})
		if err != nil {
			return StatsResult{}, fmt.Errorf("listing workouts: %w", err)
		}
		return NewStatsResult(workouts, start, end, field), nil
	})
}

// WindowStats computes every stat field over the last days days, today
// included.
func (s *QueryService) WindowStats(ctx context.Context, days int) ([]StatsResult, error) {
	if days <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", days)
	}
	today := s.now().UTC()
	end := today.Format(analysis.DateLayout)
	start := today.AddDate(0, 0, -(days - 1)).Format(analysis.DateLayout)

	fields := analysis.StatFields()
	results := make([]StatsResult, 0, len(fields))
	for _, f := range fields {
		r, err := s.RangeStats(ctx, start, end, f)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
