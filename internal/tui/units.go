package tui

import (
	"fmt"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/config"
)

const kmPerMile = 1.609344

// Units provides unit conversion and formatting based on user preferences.
// Stored values are always kilometres and minutes per kilometre.
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}

func (u Units) paceInMiles() bool {
	return u.cfg.PaceUnit == "min/mi"
}

// Distance converts kilometres to the preferred unit.
func (u Units) Distance(km float64) float64 {
	if u.IsMiles() {
		return km / kmPerMile
	}
	return km
}

// FormatDistance formats a distance in kilometres in the preferred unit.
func (u Units) FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f %s", u.Distance(km), u.DistanceLabel())
}

// Pace converts minutes per kilometre to the preferred pace unit.
func (u Units) Pace(minPerKm float64) float64 {
	if u.paceInMiles() {
		return minPerKm * kmPerMile
	}
	return minPerKm
}

// FormatPace renders a pace in minutes per kilometre as M:SS/unit.
func (u Units) FormatPace(minPerKm float64) string {
	pace := analysis.FormatPace(u.Pace(minPerKm))
	if pace == "-" {
		return pace
	}
	return pace + "/" + u.paceDistanceLabel()
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

func (u Units) paceDistanceLabel() string {
	if u.paceInMiles() {
		return "mi"
	}
	return "km"
}

// PaceLabel returns the pace unit label ("min/mi" or "min/km")
func (u Units) PaceLabel() string {
	return "min/" + u.paceDistanceLabel()
}

// MetricUnit is the display unit of a trend metric.
func (u Units) MetricUnit(m analysis.Metric) string {
	switch m {
	case analysis.MetricWeight, analysis.MetricVolume:
		return "kg"
	case analysis.MetricBodyFat:
		return "%"
	case analysis.MetricPace:
		return u.PaceLabel()
	case analysis.MetricDistance:
		return u.DistanceLabel()
	case analysis.MetricDuration:
		return "min"
	case analysis.MetricHeartRate:
		return "bpm"
	case analysis.MetricCalories:
		return "kcal"
	case analysis.MetricSets:
		return "sets"
	}
	return ""
}

// ConvertSeries converts a metric's stored values for charting.
func (u Units) ConvertSeries(m analysis.Metric, values []float64) []float64 {
	var conv func(float64) float64
	switch m {
	case analysis.MetricDistance:
		conv = u.Distance
	case analysis.MetricPace:
		conv = u.Pace
	default:
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = conv(v)
	}
	return out
}

// StatValue formats a range statistic in the preferred units.
func (u Units) StatValue(field analysis.StatField, v *float64) string {
	if v == nil {
		return "-"
	}
	switch field {
	case analysis.FieldTotalDistance:
		return u.FormatDistance(*v)
	case analysis.FieldAvgPace:
		return u.FormatPace(*v)
	case analysis.FieldRunCount:
		return fmt.Sprintf("%.0f", *v)
	case analysis.FieldTotalDuration:
		return formatMinutes(*v)
	case analysis.FieldAvgHeartRate:
		return fmt.Sprintf("%.0f bpm", *v)
	}
	return fmt.Sprintf("%g", *v)
}

func formatMinutes(minutes float64) string {
	total := int(minutes + 0.5)
	h, m := total/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
