package tui

import (
	"math"
	"testing"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/config"
)

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name string
		unit string
		km   float64
		want string
	}{
		{"kilometres", "km", 10, "10.0 km"},
		{"miles", "mi", 16.09344, "10.0 mi"},
		{"unset defaults to km", "", 5.24, "5.2 km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUnits(config.DisplayConfig{DistanceUnit: tt.unit})
			if got := u.FormatDistance(tt.km); got != tt.want {
				t.Errorf("FormatDistance(%v) = %q, want %q", tt.km, got, tt.want)
			}
		})
	}
}

func TestFormatPace(t *testing.T) {
	tests := []struct {
		name     string
		paceUnit string
		minPerKm float64
		want     string
	}{
		{"per km", "min/km", 5.5, "5:30/km"},
		{"per mile", "min/mi", 5, "8:03/mi"},
		{"no pace", "min/km", 0, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUnits(config.DisplayConfig{PaceUnit: tt.paceUnit})
			if got := u.FormatPace(tt.minPerKm); got != tt.want {
				t.Errorf("FormatPace(%v) = %q, want %q", tt.minPerKm, got, tt.want)
			}
		})
	}
}

func TestConvertSeries(t *testing.T) {
	u := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	got := u.ConvertSeries(analysis.MetricDistance, []float64{kmPerMile, 0})
	if math.Abs(got[0]-1) > 1e-9 || got[1] != 0 {
		t.Errorf("distance series = %v, want [1 0]", got)
	}

	weights := []float64{70, 71}
	if got := u.ConvertSeries(analysis.MetricWeight, weights); &got[0] != &weights[0] {
		t.Errorf("weight series should be returned unchanged")
	}
}

func TestStatValue(t *testing.T) {
	u := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	v := func(f float64) *float64 { return &f }

	tests := []struct {
		field analysis.StatField
		value *float64
		want  string
	}{
		{analysis.FieldRunCount, v(3), "3"},
		{analysis.FieldTotalDistance, v(21.1), "21.1 km"},
		{analysis.FieldTotalDuration, v(95), "1h 35m"},
		{analysis.FieldTotalDuration, v(42), "42m"},
		{analysis.FieldAvgPace, v(6), "6:00/km"},
		{analysis.FieldAvgHeartRate, v(144.6), "145 bpm"},
		{analysis.FieldAvgHeartRate, nil, "-"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			if got := u.StatValue(tt.field, tt.value); got != tt.want {
				t.Errorf("StatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetricUnit(t *testing.T) {
	u := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})
	for _, m := range analysis.Metrics() {
		if u.MetricUnit(m) == "" {
			t.Errorf("metric %s has no unit", m)
		}
	}
	if got := u.MetricUnit(analysis.MetricPace); got != "min/mi" {
		t.Errorf("pace unit = %q, want min/mi", got)
	}
}
