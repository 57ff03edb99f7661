package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
	"github.com/fish0048-ai/my-ai-coach/internal/store"
)

var importFIT bool

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.fit>",
	Short: "Import workouts from a CSV export or a device FIT file",
	Long: `Import workouts from a Strava bulk export, a generic device export, a
file written by "coach export" or a device FIT activity file. CSV formats are
detected from the header row; files ending in .fit (or --fit) are decoded as
FIT. Use - to read from stdin. Re-importing a file updates the earlier rows.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportFlags struct {
	output string
	from   string
	to     string
	kind   string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export workouts as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a body measurement or a workout by hand",
}

var bodyFlags struct {
	date    string
	weight  float64
	bodyFat float64
}

var logBodyCmd = &cobra.Command{
	Use:   "body",
	Short: "Record weight and/or body fat for a day",
	Long: `Record weight (kg) and/or body fat (%) for a day. One entry is kept per
day; logging the same date again replaces it.

Example:
  coach log body --weight 72.4 --body-fat 15.8`,
	Args: cobra.NoArgs,
	RunE: runLogBody,
}

var workoutFlags struct {
	date      string
	kind      string
	title     string
	distance  float64
	duration  float64
	heartRate float64
	calories  float64
	exercises []string
}

var logWorkoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Record a completed workout",
	Long: `Record a completed workout.

Examples:
  coach log workout --type run --distance 10 --duration 52 --hr 148
  coach log workout --type strength -e "Squat:5x5@100" -e "Bench Press:3x8@70"`,
	Args: cobra.NoArgs,
	RunE: runLogWorkout,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a stored workout or body log",
}

var deleteWorkoutCmd = &cobra.Command{
	Use:   "workout <id>",
	Short: "Remove a workout by id (see coach export)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, func(ctx context.Context, svc *service.ImportService) error {
			return svc.DeleteWorkout(ctx, args[0])
		})
	},
}

var deleteBodyCmd = &cobra.Command{
	Use:   "body <date>",
	Short: "Remove the body log for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := parseDateFlag("date", args[0]); err != nil {
			return err
		}
		return runDelete(cmd, func(ctx context.Context, svc *service.ImportService) error {
			return svc.DeleteBodyLog(ctx, args[0])
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "-", "output file (- for stdout)")
	exportCmd.Flags().StringVar(&exportFlags.from, "from", "", "first date to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFlags.to, "to", "", "last date to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFlags.kind, "type", "", "only workouts of this type (run, strength)")

	logBodyCmd.Flags().StringVar(&bodyFlags.date, "date", "", "date (YYYY-MM-DD, default today)")
	logBodyCmd.Flags().Float64Var(&bodyFlags.weight, "weight", 0, "weight in kg")
	logBodyCmd.Flags().Float64Var(&bodyFlags.bodyFat, "body-fat", 0, "body fat percentage")

	f := logWorkoutCmd.Flags()
	f.StringVar(&workoutFlags.date, "date", "", "date (YYYY-MM-DD, default today)")
	f.StringVar(&workoutFlags.kind, "type", analysis.TypeRun, "workout type (run, strength)")
	f.StringVar(&workoutFlags.title, "title", "", "title")
	f.Float64Var(&workoutFlags.distance, "distance", 0, "run distance in km")
	f.Float64Var(&workoutFlags.duration, "duration", 0, "run duration in minutes")
	f.Float64Var(&workoutFlags.heartRate, "hr", 0, "average heart rate in bpm")
	f.Float64Var(&workoutFlags.calories, "calories", 0, "calories burned")
	f.StringArrayVarP(&workoutFlags.exercises, "exercise", "e", nil, `exercise as "Name:SETSxREPS@KG" (repeatable)`)

	logCmd.AddCommand(logBodyCmd, logWorkoutCmd)
	deleteCmd.AddCommand(deleteWorkoutCmd, deleteBodyCmd)
	importCmd.Flags().BoolVar(&importFIT, "fit", false, "decode the input as a FIT activity file")
	rootCmd.AddCommand(importCmd, exportCmd, logCmd, deleteCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	svc := service.NewImportService(e.store, e.query)
	importFile := svc.ImportCSV
	if importFIT || strings.EqualFold(filepath.Ext(args[0]), ".fit") {
		importFile = svc.ImportFIT
	}
	result, err := importFile(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s format: %d imported, %d updated, %d skipped\n",
		result.Format, result.Imported, result.Updated, result.Skipped)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	for name, v := range map[string]string{"from": exportFlags.from, "to": exportFlags.to} {
		if _, err := parseDateFlag(name, v); err != nil {
			return err
		}
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	var w io.Writer = cmd.OutOrStdout()
	if exportFlags.output != "-" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := service.NewImportService(e.store, e.query).ExportCSV(cmd.Context(), w, store.WorkoutFilter{
		From: exportFlags.from,
		To:   exportFlags.to,
		Type: exportFlags.kind,
	})
	if err != nil {
		return err
	}
	if exportFlags.output != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d workouts to %s\n", n, exportFlags.output)
	}
	return nil
}

// dateOrToday validates v, defaulting to today's date.
func dateOrToday(v string) (string, error) {
	if v == "" {
		return time.Now().Format(analysis.DateLayout), nil
	}
	if _, err := parseDateFlag("date", v); err != nil {
		return "", err
	}
	return v, nil
}

func runLogBody(cmd *cobra.Command, args []string) error {
	date, err := dateOrToday(bodyFlags.date)
	if err != nil {
		return err
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	entry := analysis.BodyLog{Date: date}
	if bodyFlags.weight > 0 {
		entry.Weight = analysis.Num(bodyFlags.weight)
	}
	if bodyFlags.bodyFat > 0 {
		entry.BodyFat = analysis.Num(bodyFlags.bodyFat)
	}
	if err := service.NewImportService(e.store, e.query).AddBodyLog(cmd.Context(), entry); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged %s: weight %s kg, body fat %s%%\n", date, orDash(entry.Weight), orDash(entry.BodyFat))
	return nil
}

func orDash(n analysis.NumString) string {
	if n == "" {
		return "-"
	}
	return string(n)
}

var exercisePattern = regexp.MustCompile(`^\s*(.+?)\s*:\s*(\d+)\s*[xX]\s*(\d+)\s*(?:@\s*(\d+(?:\.\d+)?))?\s*$`)

// parseExercise reads "Name:SETSxREPS@KG"; the weight is optional.
func parseExercise(s string) (analysis.Exercise, error) {
	m := exercisePattern.FindStringSubmatch(s)
	if m == nil {
		return analysis.Exercise{}, fmt.Errorf("exercise %q must look like \"Squat:5x5@100\"", s)
	}
	ex := analysis.Exercise{
		Name: m[1],
		Sets: analysis.NumString(m[2]),
		Reps: analysis.NumString(m[3]),
	}
	if m[4] != "" {
		if _, err := strconv.ParseFloat(m[4], 64); err != nil {
			return analysis.Exercise{}, fmt.Errorf("exercise %q: bad weight: %w", s, err)
		}
		ex.Weight = analysis.NumString(m[4])
	}
	return ex, nil
}

// buildWorkout turns the log workout flags into a workout.
func buildWorkout(date string) (analysis.Workout, error) {
	w := analysis.Workout{
		Date:   date,
		Status: analysis.StatusCompleted,
		Type:   workoutFlags.kind,
		Title:  workoutFlags.title,
		Source: "manual",
	}
	if workoutFlags.calories > 0 {
		w.Calories = analysis.Num(workoutFlags.calories)
	}

	switch workoutFlags.kind {
	case analysis.TypeRun:
		if workoutFlags.distance <= 0 && workoutFlags.duration <= 0 {
			return w, fmt.Errorf("a run needs --distance or --duration")
		}
		if workoutFlags.distance > 0 {
			w.RunDistance = analysis.Num(workoutFlags.distance)
		}
		if workoutFlags.duration > 0 {
			w.RunDuration = analysis.Num(workoutFlags.duration)
		}
		if workoutFlags.heartRate > 0 {
			w.RunHeartRate = analysis.Num(workoutFlags.heartRate)
		}
	case analysis.TypeStrength:
		if len(workoutFlags.exercises) == 0 {
			return w, fmt.Errorf("a strength workout needs at least one --exercise")
		}
		for _, s := range workoutFlags.exercises {
			ex, err := parseExercise(s)
			if err != nil {
				return w, err
			}
			w.Exercises = append(w.Exercises, ex)
		}
	default:
		return w, fmt.Errorf("--type must be %s or %s, got %q", analysis.TypeRun, analysis.TypeStrength, workoutFlags.kind)
	}
	return w, nil
}

func runLogWorkout(cmd *cobra.Command, args []string) error {
	date, err := dateOrToday(workoutFlags.date)
	if err != nil {
		return err
	}
	w, err := buildWorkout(date)
	if err != nil {
		return err
	}

	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	saved, err := service.NewImportService(e.store, e.query).AddWorkout(cmd.Context(), w)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged %s workout %s on %s\n", saved.Type, saved.ID, saved.Date)
	return nil
}

func runDelete(cmd *cobra.Command, del func(context.Context, *service.ImportService) error) error {
	e, err := setup(cmd, logToConsole)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := del(cmd.Context(), service.NewImportService(e.store, e.query)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "deleted")
	return nil
}
