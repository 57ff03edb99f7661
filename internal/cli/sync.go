package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

var syncFlags struct {
	platform string
	dryRun   bool
	since    string
	until    string
	limit    int
	json     bool
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull workouts from a remote platform",
	Long: `Pull workouts from a remote platform into the local database.

Strava syncs are incremental: only activities newer than the last synced one
are fetched unless --since is given.

Examples:
  coach sync
  coach sync --dry-run
  coach sync --since 2024-01-01 --until 2024-03-31`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.StringVar(&syncFlags.platform, "platform", service.PlatformStrava, fmt.Sprintf("platform to sync %v", service.SupportedPlatforms))
	f.BoolVar(&syncFlags.dryRun, "dry-run", false, "report what would change without writing")
	f.StringVar(&syncFlags.since, "since", "", "only activities after this date (YYYY-MM-DD), ignoring the stored cursor")
	f.StringVar(&syncFlags.until, "until", "", "only activities up to the end of this date (YYYY-MM-DD)")
	f.IntVar(&syncFlags.limit, "limit", 0, "stop after this many activities (0 = no limit)")
	f.BoolVar(&syncFlags.json, "json", false, "print the result as JSON")
	rootCmd.AddCommand(syncCmd)
}

func parseDateFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(analysis.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD, got %q", name, v)
	}
	return t, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	since, err := parseDateFlag("since", syncFlags.since)
	if err != nil {
		return err
	}
	until, err := parseDateFlag("until", syncFlags.until)
	if err != nil {
		return err
	}
	if !until.IsZero() {
		until = until.Add(24*time.Hour - time.Second)
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := service.SyncOptions{
		DryRun: syncFlags.dryRun,
		Since:  since,
		Until:  until,
		Limit:  syncFlags.limit,
	}
	result, err := e.syncService(cmd.Context()).SyncPlatform(cmd.Context(), syncFlags.platform, opts, nil)
	if err != nil && !errors.Is(err, service.ErrUnsupportedPlatform) {
		return err
	}

	out := cmd.OutOrStdout()
	if syncFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
		return err
	}

	verb := "imported"
	if opts.DryRun {
		verb = "would import"
	}
	fmt.Fprintf(out, "%s: %d %s, %d updated, %d skipped\n",
		syncFlags.platform, result.ImportedCount, verb, result.UpdatedCount, result.SkippedCount)
	for _, se := range result.Errors {
		fmt.Fprintf(out, "  [%s] %s\n", se.Code, se.Message)
	}
	if err != nil {
		return err
	}
	if !result.OK {
		return errors.New("sync finished with errors")
	}
	return nil
}
