package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// maxChartPoints caps the chart to the most recent points.
const maxChartPoints = 60

// TrendsModel charts one metric with its moving average.
type TrendsModel struct {
	queryService *service.QueryService
	units        Units
	metrics      []analysis.Metric
	metricIdx    int
	scale        analysis.Scale
	points       []analysis.TrendPoint
	loading      bool
	err          error
}

// NewTrendsModel creates a new trends model
func NewTrendsModel(qs *service.QueryService, units Units) TrendsModel {
	return TrendsModel{
		queryService: qs,
		units:        units,
		metrics:      analysis.Metrics(),
		scale:        analysis.ScaleDaily,
		loading:      true,
	}
}

// Init initializes the trends screen
func (m TrendsModel) Init() tea.Cmd {
	return m.loadTrend
}

type trendLoadedMsg struct {
	metric analysis.Metric
	scale  analysis.Scale
	points []analysis.TrendPoint
	err    error
}

func (m TrendsModel) metric() analysis.Metric {
	return m.metrics[m.metricIdx]
}

func (m TrendsModel) loadTrend() tea.Msg {
	metric, scale := m.metric(), m.scale
	points, err := m.queryService.Trend(context.Background(), metric, scale)
	return trendLoadedMsg{metric: metric, scale: scale, points: points, err: err}
}

// Update handles messages
func (m TrendsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trendLoadedMsg:
		// Drop responses for a selection the user already moved away from
		if msg.metric != m.metric() || msg.scale != m.scale {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.points = msg.points

	case tea.KeyMsg:
		switch msg.String() {
		case "right", "l", "tab":
			m.metricIdx = (m.metricIdx + 1) % len(m.metrics)
		case "left", "h", "shift+tab":
			m.metricIdx = (m.metricIdx + len(m.metrics) - 1) % len(m.metrics)
		case "d":
			if m.scale == analysis.ScaleDaily {
				return m, nil
			}
			m.scale = analysis.ScaleDaily
		case "w":
			if m.scale == analysis.ScaleWeekly {
				return m, nil
			}
			m.scale = analysis.ScaleWeekly
		case "r":
		default:
			return m, nil
		}
		m.loading = true
		return m, m.loadTrend
	}
	return m, nil
}

// View renders the trends screen
func (m TrendsModel) View() string {
	var sections []string

	sections = append(sections, m.renderTabs())

	switch {
	case m.loading:
		sections = append(sections, "\n  Loading trend...")
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
	case len(m.points) < 2:
		sections = append(sections, "\n  Not enough data to chart this metric yet.")
	default:
		sections = append(sections, m.renderChart(), m.renderSummary())
	}

	sections = append(sections, "", statusStyle.Render("  ←/→: metric  d: daily  w: weekly  r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m TrendsModel) renderTabs() string {
	tabs := make([]string, 0, len(m.metrics))
	for i, metric := range m.metrics {
		if i == m.metricIdx {
			tabs = append(tabs, navActiveStyle.Render(string(metric)))
		} else {
			tabs = append(tabs, navInactiveStyle.Render(string(metric)))
		}
	}
	return navStyle.Render(strings.Join(tabs, " ")) + "  " + statusStyle.Render(string(m.scale))
}

func (m TrendsModel) renderChart() string {
	points := m.points
	if len(points) > maxChartPoints {
		points = points[len(points)-maxChartPoints:]
	}

	values := make([]float64, len(points))
	trend := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
		trend[i] = p.Trend
	}
	metric := m.metric()
	values = m.units.ConvertSeries(metric, values)
	trend = m.units.ConvertSeries(metric, trend)

	title := cardTitleStyle.Render(fmt.Sprintf("%s (%s)", metric, m.units.MetricUnit(metric)))
	graph := asciigraph.PlotMany([][]float64{values, trend},
		asciigraph.Height(10),
		asciigraph.Width(64),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Green),
	)
	dates := statusStyle.Render(fmt.Sprintf("        %s ... %s", points[0].Date, points[len(points)-1].Date))

	return lipgloss.JoinVertical(lipgloss.Left, title, graph, dates)
}

func (m TrendsModel) renderSummary() string {
	last := m.points[len(m.points)-1]
	first := m.points[0]
	metric := m.metric()
	conv := m.units.ConvertSeries(metric, []float64{first.Trend, last.Value, last.Trend})

	arrow := "→"
	switch {
	case conv[2] > conv[0]:
		arrow = "↑"
	case conv[2] < conv[0]:
		arrow = "↓"
	}

	lines := []string{
		RenderMetric("Latest", m.formatValue(conv[1]), ""),
		RenderMetric("Moving avg", m.formatValue(conv[2]), arrow),
		RenderMetric("Points", fmt.Sprintf("%d", len(m.points)), ""),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m TrendsModel) formatValue(v float64) string {
	if m.metric() == analysis.MetricPace {
		return analysis.FormatPace(v) + " " + m.units.PaceLabel()
	}
	return fmt.Sprintf("%.1f %s", v, m.units.MetricUnit(m.metric()))
}
