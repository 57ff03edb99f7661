// Package importer reads workout history exported by other tools.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
)

var (
	// ErrEmptyFile is returned for a file without a header and at least one row.
	ErrEmptyFile = errors.New("file has no rows")
	// ErrUnsupportedFormat is returned when no known header layout matches.
	ErrUnsupportedFormat = errors.New("unsupported CSV format")
)

// Format identifies the layout a CSV file was parsed as.
type Format string

const (
	FormatStrava  Format = "strava_csv"
	FormatGeneric Format = "generic_csv"
	FormatCoach   Format = "coach_csv"
)

// importNamespace seeds deterministic workout ids, so importing the same
// file twice updates the earlier rows instead of duplicating them.
var importNamespace = uuid.MustParse("6f1d3c2e-8a54-4f0b-9a77-3b0e5c1d2f10")

var dateRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)

// Result is a parsed file.
type Result struct {
	Format   Format
	Workouts []analysis.Workout
	// Skipped counts rows without a usable date, impossible dates included.
	Skipped int
}

// ParseCSV detects the layout of r and converts each row to a completed
// workout.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	records = dropBlank(records)
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	h := newHeader(records[0])
	rows := records[1:]
	switch {
	case h.has("activity type") || h.has("活動類型"):
		return parseCoach(h, rows), nil
	case h.hasAny("start_date", "date") && h.has("distance") && h.hasAny("moving_time", "elapsed_time"):
		return parseStrava(h, rows), nil
	case h.hasAny("date", "start time") && h.hasAny("distance", "distance (km)") && h.hasAny("duration", "elapsed time"):
		return parseGeneric(h, rows), nil
	}
	return nil, fmt.Errorf("%w: header %q", ErrUnsupportedFormat, strings.Join(records[0], ","))
}

type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		c = strings.TrimPrefix(c, "\uFEFF")
		key := strings.ToLower(strings.TrimSpace(c))
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

func (h header) hasAny(names ...string) bool {
	for _, n := range names {
		if h.has(n) {
			return true
		}
	}
	return false
}

// get returns the first present column among names.
func (h header) get(row []string, names ...string) string {
	for _, n := range names {
		if i, ok := h[n]; ok {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
	}
	return ""
}

func parseStrava(h header, rows [][]string) *Result {
	res := &Result{Format: FormatStrava}
	for _, row := range rows {
		date, ok := normalizeDate(h.get(row, "start_date", "date"))
		if !ok {
			res.Skipped++
			continue
		}
		meters := analysis.ParseFloat(h.get(row, "distance"))
		seconds := analysis.ParseFloat(h.get(row, "moving_time", "elapsed_time"))
		res.Workouts = append(res.Workouts, runWorkout(FormatStrava, date, "Strava import", meters/1000, seconds/60))
	}
	return res
}

func parseGeneric(h header, rows [][]string) *Result {
	res := &Result{Format: FormatGeneric}
	for _, row := range rows {
		date, ok := normalizeDate(h.get(row, "date", "start time"))
		if !ok {
			res.Skipped++
			continue
		}
		km := analysis.ParseFloat(h.get(row, "distance", "distance (km)"))
		minutes := analysis.ParseFloat(h.get(row, "duration", "elapsed time"))
		res.Workouts = append(res.Workouts, runWorkout(FormatGeneric, date, "Device import", km, minutes))
	}
	return res
}

func runWorkout(format Format, date, title string, km, minutes float64) analysis.Workout {
	dist := strconv.FormatFloat(km, 'f', 2, 64)
	dur := strconv.Itoa(int(math.Round(minutes)))
	return analysis.Workout{
		ID:          workoutID(format, date, dist, dur),
		Date:        date,
		Status:      analysis.StatusCompleted,
		Type:        analysis.TypeRun,
		Title:       title,
		Source:      string(format),
		RunDistance: analysis.NumString(dist),
		RunDuration: analysis.NumString(dur),
	}
}

// coachColumns are the English and Chinese header labels of the app's own
// export, in that order.
var coachColumns = map[string][2]string{
	"type":     {"activity type", "活動類型"},
	"date":     {"date", "日期"},
	"title":    {"title", "標題"},
	"distance": {"distance", "距離"},
	"time":     {"time", "時間"},
	"hr":       {"avg hr", "平均心率"},
	"calories": {"calories", "卡路里"},
}

func (h header) coach(row []string, col string) string {
	names := coachColumns[col]
	return h.get(row, names[0], names[1])
}

func parseCoach(h header, rows [][]string) *Result {
	res := &Result{Format: FormatCoach}
	for _, row := range rows {
		date, ok := normalizeDate(h.coach(row, "date"))
		if !ok {
			res.Skipped++
			continue
		}

		kind := strings.ToLower(h.coach(row, "type"))
		w := analysis.Workout{
			Date:         date,
			Status:       analysis.StatusCompleted,
			Type:         analysis.TypeStrength,
			Title:        h.coach(row, "title"),
			Source:       string(FormatCoach),
			RunHeartRate: analysis.NumString(h.coach(row, "hr")),
			Calories:     analysis.NumString(h.coach(row, "calories")),
		}
		if strings.Contains(kind, "run") || strings.Contains(kind, "walk") || strings.Contains(kind, "跑") {
			w.Type = analysis.TypeRun
			w.RunDistance = analysis.NumString(h.coach(row, "distance"))
			w.RunDuration = analysis.NumString(h.coach(row, "time"))
		}
		if w.Title == "" {
			w.Title = defaultTitle(w.Type)
		}
		w.ID = workoutID(FormatCoach, date, w.Type, w.Title, string(w.RunDistance), string(w.RunDuration))
		res.Workouts = append(res.Workouts, w)
	}
	return res
}

func defaultTitle(workoutType string) string {
	if workoutType == analysis.TypeRun {
		return "Run"
	}
	return "Strength"
}

// normalizeDate accepts YYYY-MM-DD or YYYY/M/D prefixes (so timestamps work
// too) and returns a zero-padded YYYY-MM-DD. Impossible dates such as
// 2024-13-45 or 2023-02-29 are rejected.
func normalizeDate(raw string) (string, bool) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	date := fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
	if _, err := time.Parse(analysis.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

// workoutID is w_<date>_<12 hex chars> derived from the row's content.
func workoutID(format Format, date string, parts ...string) string {
	name := string(format) + "|" + date + "|" + strings.Join(parts, "|")
	id := uuid.NewSHA1(importNamespace, []byte(name))
	return NewID(date, id)
}

// NewID formats a workout id from a date and a uuid.
func NewID(date string, id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "w_" + date + "_" + hex[:12]
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, f := range rec {
			if strings.TrimSpace(f) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
