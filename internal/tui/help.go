package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Trends"},
		{"3", "Personal records"},
		{"4", "Running stats"},
		{"5 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	sections = append(sections, m.renderSection("Dashboard", []keyHelp{
		{"r", "Recompute from stored data"},
	}))

	sections = append(sections, m.renderSection("Trends", []keyHelp{
		{"← / →", "Previous / next metric"},
		{"d", "Daily points, 7-point moving average"},
		{"w", "Weekly averages, 4-week moving average"},
	}))

	sections = append(sections, m.renderSection("Records / Stats", []keyHelp{
		{"j / k", "Scroll or select"},
		{"r", "Refresh"},
	}))

	sections = append(sections, m.renderSection("Sync Screen", []keyHelp{
		{"j / k", "Choose platform"},
		{"d", "Toggle dry run"},
		{"s / enter", "Start sync"},
	}))

	// Metrics explanation
	metricsSection := m.renderMetricsHelp()
	sections = append(sections, metricsSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")).Render("Metrics Explained"))
	lines = append(lines, "")

	metrics := []struct {
		name string
		desc string
	}{
		{"Training phase", "Bulking, cutting, maintenance or recovery, from weight and body fat trends plus training frequency."},
		{"Trend", "Least-squares slope over the window. Under 1% of the mean per point counts as stable."},
		{"Consistency", "How evenly workouts spread over weeks (coefficient of variation)."},
		{"Est. 1RM", "Epley estimate: weight x (1 + reps / 30)."},
		{"Volume", "Sum of sets x reps x weight for one workout."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
