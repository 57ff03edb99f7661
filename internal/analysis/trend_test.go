package analysis

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestBuildTrendDaily(t *testing.T) {
	logs := []BodyLog{
		{Date: "2024-01-01", Weight: "70"},
		{Date: "2024-01-02", Weight: "71"},
	}

	got := BuildTrend(RecordsFromBodyLogs(logs), MetricWeight, ScaleDaily)
	want := []TrendPoint{
		{Date: "2024-01-01", Value: 70, Trend: 70},
		{Date: "2024-01-02", Value: 71, Trend: 70.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildTrend() = %+v, want %+v", got, want)
	}
}

func TestBuildTrendDropsZeroReadings(t *testing.T) {
	logs := []BodyLog{
		{Date: "2024-01-01", Weight: "70"},
		{Date: "2024-01-02", Weight: "0"},
		{Date: "2024-01-03", Weight: "not a number"},
		{Date: "2024-01-04", Weight: "72"},
	}

	got := BuildTrend(RecordsFromBodyLogs(logs), MetricWeight, ScaleDaily)
	if len(got) != 2 {
		t.Fatalf("len(BuildTrend()) = %d, want 2", len(got))
	}
	for _, p := range got {
		if p.Value == 0 {
			t.Errorf("zero reading %s leaked into the series", p.Date)
		}
	}
	if got[1].Trend != 71 {
		t.Errorf("trend = %v, want 71", got[1].Trend)
	}
}

func TestBuildTrendSortsDaily(t *testing.T) {
	logs := []BodyLog{
		{Date: "2024-01-03", Weight: "72"},
		{Date: "2024-01-01", Weight: "70"},
	}
	got := BuildTrend(RecordsFromBodyLogs(logs), MetricWeight, ScaleDaily)
	if got[0].Date != "2024-01-01" || got[1].Date != "2024-01-03" {
		t.Errorf("series not ascending: %+v", got)
	}
}

func TestBuildTrendWeekly(t *testing.T) {
	workouts := []Workout{
		{Date: "2024-01-01", Type: TypeRun, Status: StatusCompleted, RunDistance: "5"},
		{Date: "2024-01-03", Type: TypeRun, Status: StatusCompleted, RunDistance: "10"},
		{Date: "2024-01-07", Type: TypeRun, Status: StatusCompleted, RunDistance: "3"}, // Sunday
		{Date: "2024-01-08", Type: TypeRun, Status: StatusCompleted, RunDistance: "4"},
	}

	got := BuildTrend(RecordsFromWorkouts(workouts), MetricDistance, ScaleWeekly)
	want := []TrendPoint{
		{Date: "2024-01-01", Value: 18, Trend: 18},
		{Date: "2024-01-08", Value: 4, Trend: 11},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildTrend() = %+v, want %+v", got, want)
	}
}

func TestBuildTrendWeeklyMean(t *testing.T) {
	logs := []BodyLog{
		{Date: "2024-01-01", Weight: "70"},
		{Date: "2024-01-02", Weight: "72"},
	}
	got := BuildTrend(RecordsFromBodyLogs(logs), MetricWeight, ScaleWeekly)
	if len(got) != 1 || got[0].Value != 71 {
		t.Errorf("BuildTrend() = %+v, want one point of 71", got)
	}
}

func TestBuildTrendWeeklyAggregation(t *testing.T) {
	workouts := []Workout{
		{Date: "2024-01-01", Type: TypeRun, Status: StatusCompleted, RunDistance: "5", RunDuration: "30", Calories: "300"},
		{Date: "2024-01-02", Type: TypeRun, Status: StatusCompleted, RunDistance: "7", RunDuration: "40", Calories: "500"},
	}
	tests := []struct {
		metric Metric
		want   float64
	}{
		{MetricDistance, 12},
		{MetricDuration, 35},
		{MetricCalories, 400},
		{MetricVolume, 5*30 + 7*40},
	}
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			got := BuildTrend(RecordsFromWorkouts(workouts), tt.metric, ScaleWeekly)
			if len(got) != 1 || got[0].Value != tt.want {
				t.Errorf("BuildTrend(%s) = %+v, want one point of %v", tt.metric, got, tt.want)
			}
		})
	}
}

func TestBuildTrendMovingAverageWindow(t *testing.T) {
	var logs []BodyLog
	dates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08"}
	for i, d := range dates {
		logs = append(logs, BodyLog{Date: d, Weight: Num(float64(i + 1))})
	}

	got := BuildTrend(RecordsFromBodyLogs(logs), MetricWeight, ScaleDaily)
	// Last point averages values 2..8.
	if math.Abs(got[7].Trend-5) > 1e-9 {
		t.Errorf("trend[7] = %v, want 5", got[7].Trend)
	}
	if got[0].Trend != got[0].Value {
		t.Errorf("first trend = %v, want its own value %v", got[0].Trend, got[0].Value)
	}
}

func TestBuildTrendIdempotent(t *testing.T) {
	workouts := []Workout{
		{Date: "2024-02-01", Type: TypeStrength, Status: StatusCompleted, Exercises: []Exercise{{Name: "Bench", Sets: "3", Reps: "10", Weight: "60"}}},
		{Date: "2024-02-05", Type: TypeStrength, Status: StatusCompleted, Exercises: []Exercise{{Name: "Bench", Sets: "4", Reps: "8", Weight: "65"}}},
	}
	records := RecordsFromWorkouts(workouts)

	a := BuildTrend(records, MetricVolume, ScaleWeekly)
	b := BuildTrend(records, MetricVolume, ScaleWeekly)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("BuildTrend not idempotent: %+v vs %+v", a, b)
	}
	if a[0].Value != 1800 || a[1].Value != 2080 {
		t.Errorf("volumes = %v, %v, want 1800, 2080", a[0].Value, a[1].Value)
	}
}

func TestBuildTrendExtractors(t *testing.T) {
	workouts := []Workout{
		{Date: "2024-03-01", Type: TypeRun, Status: StatusCompleted, RunDistance: "10", RunDuration: "50", RunHeartRate: "150 bpm"},
		{Date: "2024-03-02", Type: TypeRun, Status: StatusCompleted, RunPace: `4'30"`},
		{Date: "2024-03-03", Type: TypeStrength, Status: StatusCompleted, Exercises: []Exercise{{Name: "Row", Sets: "3", Reps: "10", Weight: "40"}, {Name: "Curl", Sets: "2", Reps: "12", Weight: "10"}}},
	}
	records := RecordsFromWorkouts(workouts)

	pace := BuildTrend(records, MetricPace, ScaleDaily)
	if len(pace) != 2 || pace[0].Value != 5 || pace[1].Value != 4.5 {
		t.Errorf("pace series = %+v", pace)
	}

	sets := BuildTrend(records, MetricSets, ScaleDaily)
	if len(sets) != 1 || sets[0].Value != 5 {
		t.Errorf("sets series = %+v", sets)
	}

	hr := BuildTrend(records, MetricHeartRate, ScaleDaily)
	if len(hr) != 1 || hr[0].Value != 150 {
		t.Errorf("heart rate series = %+v", hr)
	}

	// Arbitrary field names read the raw upstream field.
	raw := BuildTrend(records, Metric("runDuration"), ScaleDaily)
	if len(raw) != 1 || raw[0].Value != 50 {
		t.Errorf("raw field series = %+v", raw)
	}
}

func TestBuildTrendEmpty(t *testing.T) {
	got := BuildTrend(nil, MetricWeight, ScaleDaily)
	if got == nil || len(got) != 0 {
		t.Errorf("BuildTrend(nil) = %#v, want empty slice", got)
	}
}

func TestWeekStart(t *testing.T) {
	tests := map[string]string{
		"2024-01-01": "2024-01-01", // Monday
		"2024-01-03": "2024-01-01",
		"2024-01-07": "2024-01-01", // Sunday
		"2024-03-01": "2024-02-26",
	}
	for in, want := range tests {
		got, ok := WeekStart(in)
		if !ok || got != want {
			t.Errorf("WeekStart(%q) = %q, %v, want %q", in, got, ok, want)
		}
	}
	if _, ok := WeekStart("yesterday"); ok {
		t.Error("WeekStart accepted an invalid date")
	}
}

func TestParseScaleAndMetric(t *testing.T) {
	if s, err := ParseScale("Weekly"); err != nil || s != ScaleWeekly {
		t.Errorf("ParseScale(Weekly) = %v, %v", s, err)
	}
	if _, err := ParseScale("monthly"); !errors.Is(err, ErrUnknownScale) {
		t.Errorf("ParseScale(monthly) err = %v, want ErrUnknownScale", err)
	}
	if _, err := ParseMetric(" "); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("ParseMetric(blank) err = %v, want ErrUnknownMetric", err)
	}
	if m, err := ParseMetric("bodyFat"); err != nil || m != MetricBodyFat {
		t.Errorf("ParseMetric(bodyFat) = %v, %v", m, err)
	}
}
