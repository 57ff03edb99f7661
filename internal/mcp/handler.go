package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service analyticsService
}

// NewHandler builds a handler with the given service.
func NewHandler(service analyticsService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}

// CalculateStatsInput is the input for calculate_stats.
type CalculateStatsInput struct {
	StartDate string `json:"start_date" jsonschema:"Start date (YYYY-MM-DD), inclusive"`
	EndDate   string `json:"end_date" jsonschema:"End date (YYYY-MM-DD), inclusive"`
	Field     string `json:"field" jsonschema:"One of avg_heart_rate, total_distance, total_duration, run_count, avg_pace_min_per_km"`
}

// CalculateStatsTool returns the MCP tool handler for calculate_stats. The
// result text is the bare number or null.
func (h *Handler) CalculateStatsTool() func(context.Context, *mcp.CallToolRequest, CalculateStatsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CalculateStatsInput) (*mcp.CallToolResult, any, error) {
		if _, err := time.Parse(analysis.DateLayout, in.StartDate); err != nil {
			return errorResult("Invalid start_date: use YYYY-MM-DD"), nil, nil
		}
		if _, err := time.Parse(analysis.DateLayout, in.EndDate); err != nil {
			return errorResult("Invalid end_date: use YYYY-MM-DD"), nil, nil
		}
		field, err := analysis.ParseStatField(in.Field)
		if err != nil {
			return errorResult("Invalid field: " + err.Error()), nil, nil
		}

		res, err := h.service.RangeStats(ctx, in.StartDate, in.EndDate, field)
		if err != nil {
			return errorResult("Error calculating stats: " + err.Error()), nil, nil
		}
		if res.Value == nil {
			return textResult("null"), nil, nil
		}
		return textResult(strconv.FormatFloat(*res.Value, 'f', -1, 64)), nil, nil
	}
}

// GetPersonalRecordsTool returns the MCP tool handler for get_personal_records.
func (h *Handler) GetPersonalRecordsTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		records, err := h.service.PersonalRecords(ctx)
		if err != nil {
			return errorResult("Error fetching personal records: " + err.Error()), nil, nil
		}
		return jsonResult(records), nil, nil
	}
}

// TrainingCycleInput is the input for get_training_cycle.
type TrainingCycleInput struct {
	Weeks int `json:"weeks,omitempty" jsonschema:"Number of weeks to analyse (default 12)"`
}

// GetTrainingCycleTool returns the MCP tool handler for get_training_cycle.
func (h *Handler) GetTrainingCycleTool() func(context.Context, *mcp.CallToolRequest, TrainingCycleInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TrainingCycleInput) (*mcp.CallToolResult, any, error) {
		if in.Weeks < 0 {
			return errorResult("Invalid weeks: must not be negative"), nil, nil
		}
		cycle, err := h.service.Cycle(ctx, in.Weeks)
		if err != nil {
			return errorResult("Error analysing training cycle: " + err.Error()), nil, nil
		}
		return jsonResult(cycle), nil, nil
	}
}

// TrendInput is the input for get_trend.
type TrendInput struct {
	Metric string `json:"metric" jsonschema:"Metric name, e.g. weight, bodyFat, pace, distance, volume"`
	Scale  string `json:"scale,omitempty" jsonschema:"daily or weekly (default daily)"`
}

// GetTrendTool returns the MCP tool handler for get_trend.
func (h *Handler) GetTrendTool() func(context.Context, *mcp.CallToolRequest, TrendInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in TrendInput) (*mcp.CallToolResult, any, error) {
		metric, err := analysis.ParseMetric(in.Metric)
		if err != nil {
			return errorResult("Invalid metric: " + err.Error()), nil, nil
		}
		scale := analysis.ScaleDaily
		if in.Scale != "" {
			if scale, err = analysis.ParseScale(in.Scale); err != nil {
				return errorResult("Invalid scale: " + err.Error()), nil, nil
			}
		}

		points, err := h.service.Trend(ctx, metric, scale)
		if err != nil {
			return errorResult("Error building trend: " + err.Error()), nil, nil
		}
		return jsonResult(points), nil, nil
	}
}

// AchievementsInput is the input for get_achievements.
type AchievementsInput struct {
	UnlockedOnly bool `json:"unlocked_only,omitempty" jsonschema:"Only return unlocked achievements"`
}

// GetAchievementsTool returns the MCP tool handler for get_achievements.
func (h *Handler) GetAchievementsTool() func(context.Context, *mcp.CallToolRequest, AchievementsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AchievementsInput) (*mcp.CallToolResult, any, error) {
		progress, err := h.service.Achievements(ctx)
		if err != nil {
			return errorResult("Error evaluating achievements: " + err.Error()), nil, nil
		}
		if in.UnlockedOnly {
			progress = analysis.UnlockedAchievements(progress)
			if progress == nil {
				progress = []analysis.AchievementProgress{}
			}
		}
		return jsonResult(progress), nil, nil
	}
}
