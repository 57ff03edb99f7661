package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

var asJSON bool

var trendFlags struct {
	metric string
	scale  string
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Print a metric series with its moving average",
	Long: fmt.Sprintf(`Print a metric series with its trailing moving average.

Metrics: %v
Scales: daily (7-point average), weekly (Monday buckets, 4-point average)`, analysis.Metrics()),
	Args: cobra.NoArgs,
	RunE: runTrend,
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print personal records",
	Args:  cobra.NoArgs,
	RunE:  runRecords,
}

var unlockedOnly bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress",
	Args:  cobra.NoArgs,
	RunE:  runAchievements,
}

var cycleWeeks int

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Classify the current training phase",
	Args:  cobra.NoArgs,
	RunE:  runCycle,
}

var statsFlags struct {
	field string
	from  string
	to    string
	days  int
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute running statistics over a date range (JSON)",
	Long: `Compute running statistics over a date range and print them as JSON.

With --field, one statistic over [--from, --to] is printed. Without it, every
statistic over the last --days days is printed.

Fields: avg_heart_rate, total_distance, total_duration, run_count, avg_pace_min_per_km`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	for _, c := range []*cobra.Command{trendCmd, recordsCmd, cycleCmd, achievementsCmd} {
		c.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	}
	trendCmd.Flags().StringVar(&trendFlags.metric, "metric", string(analysis.MetricWeight), "metric to chart")
	trendCmd.Flags().StringVar(&trendFlags.scale, "scale", string(analysis.ScaleDaily), "daily or weekly")
	cycleCmd.Flags().IntVar(&cycleWeeks, "weeks", 0, "look-back window in weeks (default analysis.cycle_weeks)")
	statsCmd.Flags().StringVar(&statsFlags.field, "field", "", "statistic to compute")
	statsCmd.Flags().StringVar(&statsFlags.from, "from", "", "first date (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsFlags.to, "to", "", "last date (YYYY-MM-DD, default today)")
	statsCmd.Flags().IntVar(&statsFlags.days, "days", 30, "window for all statistics when --field is not given")

	achievementsCmd.Flags().BoolVar(&unlockedOnly, "unlocked", false, "only list unlocked achievements")
	rootCmd.AddCommand(trendCmd, recordsCmd, cycleCmd, statsCmd, achievementsCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTrend(cmd *cobra.Command, args []string) error {
	metric, err := analysis.ParseMetric(trendFlags.metric)
	if err != nil {
		return err
	}
	scale, err := analysis.ParseScale(trendFlags.scale)
	if err != nil {
		return err
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	points, err := e.query.Trend(cmd.Context(), metric, scale)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, points)
	}
	if len(points) == 0 {
		fmt.Fprintf(out, "no %s data yet\n", metric)
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\t%s\tTREND\n", metric)
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", p.Date, p.Value, p.Trend)
	}
	return tw.Flush()
}

func runRecords(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	records, err := e.query.PersonalRecords(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, records)
	}

	r := records.Run
	fmt.Fprintln(out, "Running")
	if r.MaxDistance != nil {
		fmt.Fprintf(out, "  longest run    %.2f km  (%s)\n", *r.MaxDistance, r.MaxDistanceDate)
	}
	if r.FastestPace != nil {
		fmt.Fprintf(out, "  fastest pace   %s /km  (%s)\n", analysis.FormatPace(*r.FastestPace), r.FastestPaceDate)
	}
	if r.LongestDuration != nil {
		fmt.Fprintf(out, "  longest time   %.0f min  (%s)\n", *r.LongestDuration, r.LongestDurationDate)
	}

	if len(records.Strength) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nStrength")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  EXERCISE\tEST 1RM\tMAX KG\tMAX VOLUME\tMAX REPS\tLAST")
	for _, name := range records.Exercises() {
		s := records.Strength[name]
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\t%s\n", name,
			humanize.Commaf(s.Max1RM), humanize.Commaf(s.MaxWeight), humanize.Commaf(s.MaxVolume),
			s.MaxReps, humanizeDate(s.LastDate))
	}
	return tw.Flush()
}

func runAchievements(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	progress, err := e.query.Achievements(cmd.Context())
	if err != nil {
		return err
	}
	if unlockedOnly {
		progress = analysis.UnlockedAchievements(progress)
		if progress == nil {
			progress = []analysis.AchievementProgress{}
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, progress)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tACHIEVEMENT\tPROGRESS\tDESCRIPTION")
	for _, p := range progress {
		mark := " "
		if p.Unlocked {
			mark = "x"
		}
		fmt.Fprintf(tw, "[%s]\t%s\t%s/%s\t%s\n", mark, p.Name,
			humanize.Ftoa(p.Current), humanize.Ftoa(p.Target), p.Description)
	}
	return tw.Flush()
}

func humanizeDate(date string) string {
	t, err := time.Parse(analysis.DateLayout, date)
	if err != nil {
		return date
	}
	return humanize.Time(t)
}

func runCycle(cmd *cobra.Command, args []string) error {
	if cycleWeeks < 0 {
		return fmt.Errorf("--weeks must be positive, got %d", cycleWeeks)
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := e.query.Cycle(cmd.Context(), cycleWeeks)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, c)
	}

	t := c.Trend
	fmt.Fprintf(out, "Phase: %s (since %s)\n\n%s\n", analysis.PhaseName(c.CurrentPhase), c.WindowStart, c.Recommendation.Message)
	for _, a := range c.Recommendation.Actions {
		fmt.Fprintf(out, "  - %s\n", a)
	}
	fmt.Fprintf(out, "\nweight     %s %s\n", t.Weight.Strength, t.Weight.Direction)
	fmt.Fprintf(out, "body fat   %s %s\n", t.BodyFat.Strength, t.BodyFat.Direction)
	fmt.Fprintf(out, "frequency  %.1f/week, %s consistency\n", t.Frequency.PerWeek, t.Frequency.Consistency)
	fmt.Fprintf(out, "intensity  %s (%s kg avg volume)\n", t.Intensity.AvgIntensity, humanize.Commaf(t.Intensity.AvgVolume))
	fmt.Fprintf(out, "avg burn   %d kcal\n", c.AvgCalorieBurn)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	var field analysis.StatField
	if statsFlags.field != "" {
		f, err := analysis.ParseStatField(statsFlags.field)
		if err != nil {
			return err
		}
		field = f
		if statsFlags.from == "" {
			return fmt.Errorf("--from is required with --field")
		}
	}
	for name, v := range map[string]string{"from": statsFlags.from, "to": statsFlags.to} {
		if _, err := parseDateFlag(name, v); err != nil {
			return err
		}
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	if field == "" {
		results, err := e.query.WindowStats(cmd.Context(), statsFlags.days)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), results)
	}

	to := statsFlags.to
	if to == "" {
		to = e.query.Today()
	}
	result, err := e.query.RangeStats(cmd.Context(), statsFlags.from, to, field)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}
