package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrUnknownMetric is returned when a metric name is empty.
var ErrUnknownMetric = errors.New("unknown metric")

// ErrUnknownScale is returned for a time scale other than daily or weekly.
var ErrUnknownScale = errors.New("unknown time scale")

// Metric identifies the value projected out of each record.
type Metric string

const (
	MetricWeight    Metric = "weight"
	MetricBodyFat   Metric = "bodyFat"
	MetricPace      Metric = "pace"
	MetricDistance  Metric = "distance"
	MetricDuration  Metric = "duration"
	MetricHeartRate Metric = "heartRate"
	MetricCalories  Metric = "calories"
	MetricSets      Metric = "sets"
	MetricVolume    Metric = "volume"
)

// Scale selects daily points or Monday-keyed weekly buckets.
type Scale string

const (
	ScaleDaily  Scale = "daily"
	ScaleWeekly Scale = "weekly"
)

// Moving-average windows per scale.
const (
	DailyTrendWindow  = 7
	WeeklyTrendWindow = 4
)

// TrendRecord is a dated record a metric can be projected from. Extra holds
// raw numeric fields by their upstream names so arbitrary metrics still work.
type TrendRecord struct {
	Date    string
	Workout *Workout
	BodyLog *BodyLog
	Extra   map[string]string
}

// TrendPoint is one point of a trend series.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Trend float64 `json:"trend"`
}

// Extractor projects a record onto a metric value. Zero means no reading.
type Extractor func(TrendRecord) float64

var extractors = map[Metric]Extractor{
	MetricWeight: func(r TrendRecord) float64 {
		if r.BodyLog == nil {
			return 0
		}
		return r.BodyLog.Weight.Float()
	},
	MetricBodyFat: func(r TrendRecord) float64 {
		if r.BodyLog == nil {
			return 0
		}
		return r.BodyLog.BodyFat.Float()
	},
	MetricPace: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		return runPace(*r.Workout)
	},
	MetricDistance: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		return r.Workout.RunDistance.Float()
	},
	MetricDuration: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		return r.Workout.RunDuration.Float()
	},
	MetricHeartRate: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		return r.Workout.RunHeartRate.Loose()
	},
	MetricCalories: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		return r.Workout.Calories.Float()
	},
	MetricSets: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		total := 0
		for _, ex := range r.Workout.Exercises {
			total += ex.Sets.Int()
		}
		return float64(total)
	},
	MetricVolume: func(r TrendRecord) float64 {
		if r.Workout == nil {
			return 0
		}
		return workoutVolume(*r.Workout)
	},
}

// summedMetrics are combined by sum in weekly buckets; everything else,
// duration and calories included, by mean.
var summedMetrics = map[Metric]bool{
	MetricDistance: true,
	MetricSets:     true,
	MetricVolume:   true,
}

// Metrics lists the metrics with a typed extractor, in display order.
func Metrics() []Metric {
	return []Metric{
		MetricWeight, MetricBodyFat, MetricPace, MetricDistance, MetricDuration,
		MetricHeartRate, MetricCalories, MetricSets, MetricVolume,
	}
}

// ParseMetric validates a metric name. Names without a typed extractor are
// accepted and read from a record's raw fields.
func ParseMetric(name string) (Metric, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrUnknownMetric
	}
	return Metric(name), nil
}

// ParseScale validates a time scale name.
func ParseScale(name string) (Scale, error) {
	switch Scale(strings.ToLower(strings.TrimSpace(name))) {
	case ScaleDaily:
		return ScaleDaily, nil
	case ScaleWeekly:
		return ScaleWeekly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScale, name)
}

// ExtractorFor returns the typed extractor for m, or a raw-field extractor
// when m has none.
func ExtractorFor(m Metric) Extractor {
	if fn, ok := extractors[m]; ok {
		return fn
	}
	return FieldMetric(string(m))
}

// FieldMetric reads the named raw field of a record.
func FieldMetric(field string) Extractor {
	return func(r TrendRecord) float64 {
		return ParseFloat(r.Extra[field])
	}
}

// RecordsFromBodyLogs wraps body logs as trend records.
func RecordsFromBodyLogs(logs []BodyLog) []TrendRecord {
	records := make([]TrendRecord, 0, len(logs))
	for i := range logs {
		l := logs[i]
		records = append(records, TrendRecord{
			Date:    l.Date,
			BodyLog: &l,
			Extra: map[string]string{
				"weight":  string(l.Weight),
				"bodyFat": string(l.BodyFat),
			},
		})
	}
	return records
}

// RecordsFromWorkouts wraps workouts as trend records.
func RecordsFromWorkouts(workouts []Workout) []TrendRecord {
	records := make([]TrendRecord, 0, len(workouts))
	for i := range workouts {
		w := workouts[i]
		records = append(records, TrendRecord{
			Date:    w.Date,
			Workout: &w,
			Extra: map[string]string{
				"runDistance":  string(w.RunDistance),
				"runDuration":  string(w.RunDuration),
				"runHeartRate": string(w.RunHeartRate),
				"calories":     string(w.Calories),
			},
		})
	}
	return records
}

// BuildTrend projects records onto metric and returns an ascending series
// with a trailing moving average.
//
// A value of exactly zero is treated as "no reading" and dropped, so a real
// zero (a rest day with 0 km) never shows up in the series.
func BuildTrend(records []TrendRecord, metric Metric, scale Scale) []TrendPoint {
	extract := ExtractorFor(metric)

	points := make([]TrendPoint, 0, len(records))
	for _, r := range records {
		v := extract(r)
		if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
			continue
		}
		points = append(points, TrendPoint{Date: r.Date, Value: v})
	}

	if scale == ScaleWeekly {
		points = weeklyBuckets(points, summedMetrics[metric])
	} else {
		sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	}

	window := DailyTrendWindow
	if scale == ScaleWeekly {
		window = WeeklyTrendWindow
	}
	applyMovingAverage(points, window)
	return points
}

// weeklyBuckets combines points by the Monday of their week. Points with an
// unparseable date are dropped.
func weeklyBuckets(points []TrendPoint, sum bool) []TrendPoint {
	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	for _, p := range points {
		monday, ok := WeekStart(p.Date)
		if !ok {
			continue
		}
		b, exists := buckets[monday]
		if !exists {
			b = &bucket{}
			buckets[monday] = b
		}
		b.sum += p.Value
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		v := b.sum
		if !sum {
			v = b.sum / float64(b.count)
		}
		out = append(out, TrendPoint{Date: k, Value: v})
	}
	return out
}

// WeekStart returns the Monday of the week containing date. Sunday belongs
// to the week that started six days earlier.
func WeekStart(date string) (string, bool) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", false
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(DateLayout), true
}

// applyMovingAverage sets each point's trend to the mean of itself and up to
// window-1 preceding points.
func applyMovingAverage(points []TrendPoint, window int) {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	for i := range points {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		points[i].Trend = stat.Mean(values[start:i+1], nil)
	}
}

// runPace is the pace of a run in min/km: the pace string when it parses,
// else duration over distance.
func runPace(w Workout) float64 {
	if p, ok := ParsePace(w.RunPace); ok {
		return p
	}
	dist := w.RunDistance.Float()
	dur := w.RunDuration.Float()
	if dist > 0 && dur > 0 {
		return dur / dist
	}
	return 0
}

// workoutVolume is sets×reps×weight summed over exercises for strength and
// distance×duration for runs. It is a load proxy, not a physical unit.
func workoutVolume(w Workout) float64 {
	switch w.Type {
	case TypeStrength:
		var total float64
		for _, ex := range w.Exercises {
			total += float64(ex.Sets.Int()*ex.Reps.Int()) * ex.Weight.Float()
		}
		return total
	case TypeRun:
		return w.RunDistance.Float() * w.RunDuration.Float()
	}
	return 0
}
