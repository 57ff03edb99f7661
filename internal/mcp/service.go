package mcp

import (
	"context"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// analyticsService is the part of the query service the tools call.
type analyticsService interface {
	RangeStats(ctx context.Context, start, end string, field analysis.StatField) (service.StatsResult, error)
	PersonalRecords(ctx context.Context) (analysis.RecordSet, error)
	Cycle(ctx context.Context, weeks int) (analysis.CycleAnalysis, error)
	Trend(ctx context.Context, metric analysis.Metric, scale analysis.Scale) ([]analysis.TrendPoint, error)
	Achievements(ctx context.Context) ([]analysis.AchievementProgress, error)
}

var _ analyticsService = (*service.QueryService)(nil)
