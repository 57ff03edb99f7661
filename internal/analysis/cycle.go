package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultCycleWeeks is the look-back window when none is given.
const DefaultCycleWeeks = 12

// Direction of a body-metric trend.
type Direction string

const (
	DirectionStable     Direction = "stable"
	DirectionIncreasing Direction = "increasing"
	DirectionDecreasing Direction = "decreasing"
)

// TrendStrength grades how steep a trend is.
type TrendStrength string

const (
	StrengthWeak     TrendStrength = "weak"
	StrengthModerate TrendStrength = "moderate"
	StrengthStrong   TrendStrength = "strong"
)

// Level is a coarse low/moderate/high grade.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// Phase is a training-cycle label.
type Phase string

const (
	PhaseBulking     Phase = "bulking"
	PhaseCutting     Phase = "cutting"
	PhaseMaintenance Phase = "maintenance"
	PhaseRecovery    Phase = "recovery"
)

// Classification thresholds.
const (
	stableRelativeSlope = 0.01
	strongRelativeSlope = 0.05

	highConsistencyCV     = 0.3
	moderateConsistencyCV = 0.6

	highIntensityVolume     = 5000
	moderateIntensityVolume = 2000

	lowFrequencyPerWeek = 2
)

// Trend describes the direction of a body metric over the window.
type Trend struct {
	Slope         float64       `json:"slope"`
	Direction     Direction     `json:"direction"`
	Strength      TrendStrength `json:"strength"`
	RelativeSlope float64       `json:"relativeSlope"`
}

// StableTrend is the neutral trend used when there is not enough data.
func StableTrend() Trend {
	return Trend{Direction: DirectionStable, Strength: StrengthWeak}
}

// Frequency summarises how often and how evenly the athlete trains.
type Frequency struct {
	PerWeek      float64     `json:"perWeek"`
	Consistency  Level       `json:"consistency"`
	WeeklyCounts map[int]int `json:"weeklyCounts"`
}

// Intensity summarises average per-workout load.
type Intensity struct {
	AvgVolume     float64 `json:"avgVolume"`
	AvgIntensity  Level   `json:"avgIntensity"`
	StrengthCount int     `json:"strengthCount"`
	RunCount      int     `json:"runCount"`
}

// TrendBundle is the set of indicators a phase is decided from.
type TrendBundle struct {
	Weight    Trend     `json:"weight"`
	BodyFat   Trend     `json:"bodyFat"`
	Frequency Frequency `json:"frequency"`
	Intensity Intensity `json:"intensity"`
}

// PhaseIndicators feeds DeterminePhase. A nil indicator yields maintenance.
type PhaseIndicators struct {
	Weight    *Trend
	BodyFat   *Trend
	Frequency *Frequency
	Intensity *Intensity
}

// Recommendation is the canned advice shown for a phase.
type Recommendation struct {
	Message string   `json:"message"`
	Actions []string `json:"actions"`
	Color   string   `json:"color"`
}

// WeekPhase is one entry of the per-week phase history.
type WeekPhase struct {
	Week         int      `json:"week"`
	Date         string   `json:"date"`
	Phase        Phase    `json:"phase"`
	Weight       *float64 `json:"weight"`
	BodyFat      *float64 `json:"bodyFat"`
	WorkoutCount int      `json:"workoutCount"`
}

// CycleInput is the data a cycle analysis runs over.
type CycleInput struct {
	BodyLogs []BodyLog
	Workouts []Workout
	Weeks    int
}

// CycleAnalysis is the result of AnalyzeCycle.
type CycleAnalysis struct {
	CurrentPhase   Phase          `json:"currentPhase"`
	Trend          TrendBundle    `json:"trend"`
	Recommendation Recommendation `json:"recommendation"`
	AvgCalorieBurn int            `json:"avgCalorieBurn"`
	WindowStart    string         `json:"windowStart"`
	Phases         []WeekPhase    `json:"phases"`
}

var recommendations = map[Phase]Recommendation{
	PhaseBulking: {
		Message: "You are in a bulking phase. Keep training hard and eat enough to support growth.",
		Actions: []string{
			"Keep training 4-5 times per week",
			"Get enough protein (1.6-2.2 g per kg of body weight)",
			"Watch body fat (stay under about 20%)",
		},
		Color: "blue",
	},
	PhaseCutting: {
		Message: "You are in a cutting phase. Hold a calorie deficit while keeping training intensity up.",
		Actions: []string{
			"Keep training 3-4 times per week",
			"Eat 80-90% of your TDEE",
			"Aim to lose 0.5-1 kg per week",
		},
		Color: "green",
	},
	PhaseMaintenance: {
		Message: "You are in a maintenance phase. Keep your current training rhythm and eating habits.",
		Actions: []string{
			"Train 3-5 times per week",
			"Keep calories balanced",
			"Check weight and body fat regularly",
		},
		Color: "yellow",
	},
	PhaseRecovery: {
		Message: "You are in a recovery phase. Rest as needed and build training back up gradually.",
		Actions: []string{
			"Work back up to 3 or more sessions per week",
			"Start at low intensity and progress slowly",
			"Prioritise sleep and nutrition",
		},
		Color: "gray",
	},
}

var phaseNames = map[Phase]string{
	PhaseBulking:     "Bulking",
	PhaseCutting:     "Cutting",
	PhaseMaintenance: "Maintenance",
	PhaseRecovery:    "Recovery",
}

// RecommendationFor returns the advice for phase, falling back to maintenance.
func RecommendationFor(phase Phase) Recommendation {
	if r, ok := recommendations[phase]; ok {
		return r
	}
	return recommendations[PhaseMaintenance]
}

// PhaseName returns a display name for phase.
func PhaseName(phase Phase) string {
	if name, ok := phaseNames[phase]; ok {
		return name
	}
	return "Unknown"
}

// PhaseColor returns the color tag for phase.
func PhaseColor(phase Phase) string {
	if r, ok := recommendations[phase]; ok {
		return r.Color
	}
	return "gray"
}

// AnalyzeCycle classifies the current training phase from the last
// in.Weeks weeks of data. now bounds the window and is used for the whole
// call.
func AnalyzeCycle(in CycleInput, now time.Time) CycleAnalysis {
	weeks := in.Weeks
	if weeks <= 0 {
		weeks = DefaultCycleWeeks
	}
	today := dateOnly(now)
	start := today.AddDate(0, 0, -weeks*7).Format(DateLayout)

	logs := recentBodyLogs(in.BodyLogs, start)
	workouts := recentWorkouts(in.Workouts, start)

	bundle := TrendBundle{
		Weight:    ClassifyTrend(weightSeries(logs)),
		BodyFat:   ClassifyTrend(bodyFatSeries(logs)),
		Frequency: TrainingFrequency(workouts, weeks),
		Intensity: TrainingIntensity(workouts),
	}
	phase := DeterminePhase(bundle.indicators())

	return CycleAnalysis{
		CurrentPhase:   phase,
		Trend:          bundle,
		Recommendation: RecommendationFor(phase),
		AvgCalorieBurn: AvgCalorieBurn(workouts),
		WindowStart:    start,
		Phases:         phaseHistory(logs, workouts, weeks, today),
	}
}

func (b TrendBundle) indicators() PhaseIndicators {
	return PhaseIndicators{
		Weight:    &b.Weight,
		BodyFat:   &b.BodyFat,
		Frequency: &b.Frequency,
		Intensity: &b.Intensity,
	}
}

// ClassifyTrend grades a series by its relative regression slope. Series too
// short or degenerate to fit are stable and weak.
func ClassifyTrend(values []float64) Trend {
	fit, ok := IndexTrend(values).Value()
	if !ok {
		return StableTrend()
	}

	var rel float64
	if fit.Mean != 0 {
		rel = fit.Slope / fit.Mean
	}
	if !finite(rel) || math.Abs(rel) < stableRelativeSlope {
		return Trend{Slope: fit.Slope, Direction: DirectionStable, Strength: StrengthWeak, RelativeSlope: zeroIfNaN(rel)}
	}

	t := Trend{Slope: fit.Slope, RelativeSlope: rel, Strength: StrengthModerate}
	if math.Abs(rel) > strongRelativeSlope {
		t.Strength = StrengthStrong
	}
	if rel > 0 {
		t.Direction = DirectionIncreasing
	} else {
		t.Direction = DirectionDecreasing
	}
	return t
}

// TrainingFrequency is distinct training days per week plus consistency
// graded by the coefficient of variation of per-week workout counts.
func TrainingFrequency(workouts []Workout, weeks int) Frequency {
	empty := Frequency{Consistency: LevelLow, WeeklyCounts: map[int]int{}}
	if len(workouts) == 0 || weeks <= 0 {
		return empty
	}

	dates := make(map[string]struct{})
	counts := make(map[int]int)
	for _, w := range workouts {
		if w.Date == "" {
			continue
		}
		dates[w.Date] = struct{}{}
		counts[weekOfYear(w.Date)]++
	}
	if len(counts) == 0 {
		return empty
	}

	cv, ok := coefficientOfVariation(counts).Value()
	if !ok {
		return empty
	}

	consistency := LevelLow
	switch {
	case cv < highConsistencyCV:
		consistency = LevelHigh
	case cv < moderateConsistencyCV:
		consistency = LevelModerate
	}

	return Frequency{
		PerWeek:      float64(len(dates)) / float64(weeks),
		Consistency:  consistency,
		WeeklyCounts: counts,
	}
}

func coefficientOfVariation(counts map[int]int) Stat[float64] {
	xs := make([]float64, 0, len(counts))
	for _, c := range counts {
		xs = append(xs, float64(c))
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	if mean == 0 || !finite(mean) || !finite(std) {
		return Insufficient[float64]("no workouts counted")
	}
	return Computed(std / mean)
}

// TrainingIntensity averages workout volume over all workouts, counting
// workouts of other types in the denominator.
func TrainingIntensity(workouts []Workout) Intensity {
	if len(workouts) == 0 {
		return Intensity{AvgIntensity: LevelLow}
	}

	var total float64
	var in Intensity
	for _, w := range workouts {
		switch w.Type {
		case TypeStrength:
			total += workoutVolume(w)
			in.StrengthCount++
		case TypeRun:
			total += workoutVolume(w)
			in.RunCount++
		}
	}

	in.AvgVolume = zeroIfNaN(total / float64(len(workouts)))
	switch {
	case in.AvgVolume > highIntensityVolume:
		in.AvgIntensity = LevelHigh
	case in.AvgVolume > moderateIntensityVolume:
		in.AvgIntensity = LevelModerate
	default:
		in.AvgIntensity = LevelLow
	}
	return in
}

// AvgCalorieBurn is the rounded mean of logged calories per workout.
func AvgCalorieBurn(workouts []Workout) int {
	if len(workouts) == 0 {
		return 0
	}
	var total float64
	for _, w := range workouts {
		total += w.Calories.Float()
	}
	return int(math.Round(total / float64(len(workouts))))
}

// DeterminePhase applies the phase rules in priority order: recovery,
// cutting, bulking, then maintenance.
func DeterminePhase(ind PhaseIndicators) Phase {
	if ind.Weight == nil || ind.BodyFat == nil || ind.Frequency == nil || ind.Intensity == nil {
		return PhaseMaintenance
	}

	weightUp := ind.Weight.Direction == DirectionIncreasing && ind.Weight.Strength != StrengthWeak
	weightDown := ind.Weight.Direction == DirectionDecreasing && ind.Weight.Strength != StrengthWeak
	fatDown := ind.BodyFat.Direction == DirectionDecreasing && ind.BodyFat.Strength != StrengthWeak
	fatNotFalling := ind.BodyFat.Direction == DirectionStable || ind.BodyFat.Direction == DirectionIncreasing

	switch {
	case ind.Frequency.PerWeek < lowFrequencyPerWeek || ind.Intensity.AvgIntensity == LevelLow:
		return PhaseRecovery
	case weightDown && fatDown:
		return PhaseCutting
	case weightUp && fatNotFalling && ind.Intensity.AvgIntensity == LevelHigh:
		return PhaseBulking
	}
	return PhaseMaintenance
}

// phaseHistory classifies each of the last weeks weeks on its own data.
func phaseHistory(logs []BodyLog, workouts []Workout, weeks int, today time.Time) []WeekPhase {
	phases := make([]WeekPhase, 0, weeks)
	for i := 0; i < weeks; i++ {
		weekStart := today.AddDate(0, 0, -(weeks-i)*7)
		from := weekStart.Format(DateLayout)
		to := weekStart.AddDate(0, 0, 6).Format(DateLayout)

		var weekLogs []BodyLog
		for _, l := range logs {
			if l.Date >= from && l.Date <= to {
				weekLogs = append(weekLogs, l)
			}
		}
		var weekWorkouts []Workout
		for _, w := range workouts {
			if w.Date >= from && w.Date <= to {
				weekWorkouts = append(weekWorkouts, w)
			}
		}

		bundle := TrendBundle{
			Weight:    ClassifyTrend(weightSeries(weekLogs)),
			BodyFat:   ClassifyTrend(bodyFatSeries(weekLogs)),
			Frequency: TrainingFrequency(weekWorkouts, 1),
			Intensity: TrainingIntensity(weekWorkouts),
		}

		wp := WeekPhase{
			Week:         i + 1,
			Date:         from,
			Phase:        DeterminePhase(bundle.indicators()),
			WorkoutCount: len(weekWorkouts),
		}
		if n := len(weekLogs); n > 0 {
			last := weekLogs[n-1]
			wp.Weight = parsedPtr(last.Weight)
			wp.BodyFat = parsedPtr(last.BodyFat)
		}
		phases = append(phases, wp)
	}
	return phases
}

func recentBodyLogs(logs []BodyLog, start string) []BodyLog {
	out := make([]BodyLog, 0, len(logs))
	for _, l := range logs {
		if l.Date != "" && l.Date >= start {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func recentWorkouts(workouts []Workout, start string) []Workout {
	out := make([]Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Date != "" && w.Date >= start && w.Completed() {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func weightSeries(logs []BodyLog) []float64 {
	values := make([]float64, len(logs))
	for i, l := range logs {
		values[i] = l.Weight.Float()
	}
	return values
}

func bodyFatSeries(logs []BodyLog) []float64 {
	values := make([]float64, len(logs))
	for i, l := range logs {
		values[i] = l.BodyFat.Float()
	}
	return values
}

// weekOfYear counts whole weeks since January 1st of the date's year.
// Unparseable dates fall into week 0.
func weekOfYear(date string) int {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	return (t.YearDay() - 1) / 7
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func parsedPtr(n NumString) *float64 {
	v, ok := leadingFloat(string(n))
	if !ok {
		return nil
	}
	return &v
}

func zeroIfNaN(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}
