package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Implementation details reported to MCP clients.
const (
	ServerName    = "coach-analytics"
	ServerVersion = "1.0.0"
)

// NewServer builds an MCP server exposing the training analytics as tools:
// range statistics, personal records, training cycle, trend series and
// achievements.
func NewServer(svc analyticsService) *mcp.Server {
	h := NewHandler(svc)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}

	mcp.AddTool(s, &mcp.Tool{
		Name:        "calculate_stats",
		Description: "Computes one statistic over completed runs dated within [start_date, end_date] (YYYY-MM-DD, inclusive). field is one of avg_heart_rate, total_distance (km), total_duration (min), run_count, avg_pace_min_per_km. Returns a single number, or null when there is not enough data.",
		Annotations: readOnly,
	}, h.CalculateStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_personal_records",
		Description: "Returns personal records: per-exercise best estimated 1RM, volume, weight, sets and reps with dates, plus running bests (longest distance, fastest pace, longest duration). Use when the athlete asks about PRs or progress.",
		Annotations: readOnly,
	}, h.GetPersonalRecordsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_training_cycle",
		Description: "Classifies the current training phase (bulking, cutting, maintenance, recovery) from the last weeks of body logs and workouts, with the trend indicators, a recommendation and per-week phase history. Optional arg: weeks (default 12).",
		Annotations: readOnly,
	}, h.GetTrainingCycleTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_trend",
		Description: "Returns a time series with a trailing moving average. metric: weight, bodyFat, pace, distance, duration, heartRate, calories, sets, volume. scale: daily (7-point average) or weekly (Monday buckets, 4-point average).",
		Annotations: readOnly,
	}, h.GetTrendTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_achievements",
		Description: "Returns training achievements (streaks, workout totals, running distance, strength sessions, week warrior) with current progress, target and whether each is unlocked. Optional arg: unlocked_only.",
		Annotations: readOnly,
	}, h.GetAchievementsTool())

	return s
}
