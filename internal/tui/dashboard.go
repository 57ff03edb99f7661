package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData(context.Background())
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			m.queryService.Invalidate()
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || m.data.WorkoutCount == 0 {
		return "\n  No workouts yet. Press 's' to sync with Strava or run `coach import <file.csv>`."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPhaseCard(), "  ", m.renderWeekCard())
	sections = append(sections, topRow)
	sections = append(sections, m.renderTrendCard())

	if len(m.data.WeeklyDistance) > 2 {
		sections = append(sections, m.renderChart())
	}

	sections = append(sections, statusStyle.Render(m.syncLine()))
	sections = append(sections, statusStyle.Render("Press 'r' to refresh, 's' to sync, '2' for trends"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderPhaseCard() string {
	c := m.data.Cycle
	title := cardTitleStyle.Render("Training Phase")

	lines := []string{
		phaseStyle(c.CurrentPhase).Render(analysis.PhaseName(c.CurrentPhase)),
		"",
		lipgloss.NewStyle().Width(40).Render(c.Recommendation.Message),
		"",
	}
	for _, action := range c.Recommendation.Actions {
		lines = append(lines, "  • "+action)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(46).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("Last 7 Days")

	lines := []string{
		RenderMetric("Runs", fmt.Sprintf("%d", m.data.WeekRunCount), ""),
		RenderMetric("Strength", fmt.Sprintf("%d", m.data.WeekStrengthCount), ""),
		RenderMetric("Distance", m.units.FormatDistance(m.data.WeekDistance), ""),
		RenderMetric("Time", formatMinutes(m.data.WeekDuration), ""),
		RenderMetric("Calories", humanize.Comma(int64(m.data.WeekCalories)), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderTrendCard() string {
	t := m.data.Cycle.Trend
	title := cardTitleStyle.Render(fmt.Sprintf("Indicators (since %s)", m.data.Cycle.WindowStart))

	lines := []string{
		RenderMetric("Weight", describeTrend(t.Weight), trendArrow(t.Weight.Direction)),
		RenderMetric("Body fat", describeTrend(t.BodyFat), trendArrow(t.BodyFat.Direction)),
		RenderMetric("Frequency", fmt.Sprintf("%.1f/week (%s consistency)", t.Frequency.PerWeek, t.Frequency.Consistency), ""),
		RenderMetric("Intensity", fmt.Sprintf("%s (%s kg avg volume)", t.Intensity.AvgIntensity, humanize.Commaf(math.Round(t.Intensity.AvgVolume))), ""),
		RenderMetric("Avg burn", fmt.Sprintf("%d kcal", m.data.Cycle.AvgCalorieBurn), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(82).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Weekly Distance (%s)", m.units.DistanceLabel()))

	values := m.units.ConvertSeries(analysis.MetricDistance, m.data.WeeklyDistance)
	graph := asciigraph.Plot(values,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
	)

	labels := m.data.WeeklyLabels[0] + strings.Repeat(" ", 50) + m.data.WeeklyLabels[len(m.data.WeeklyLabels)-1]
	return lipgloss.JoinVertical(lipgloss.Left, title, graph, statusStyle.Render("        "+labels))
}

func (m DashboardModel) syncLine() string {
	if m.data.LastSync.IsZero() {
		return fmt.Sprintf("%d workouts stored, never synced", m.data.WorkoutCount)
	}
	return fmt.Sprintf("%d workouts stored, last sync %s", m.data.WorkoutCount, humanize.Time(m.data.LastSync))
}

func describeTrend(t analysis.Trend) string {
	if t.Direction == analysis.DirectionStable {
		return "stable"
	}
	return fmt.Sprintf("%s %s (%+.2f/pt)", t.Strength, t.Direction, t.Slope)
}
