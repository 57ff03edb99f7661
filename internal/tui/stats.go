package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// StatsModel is the rolling window stats screen model
type StatsModel struct {
	queryService *service.QueryService
	units        Units
	windows      []int
	rows         [][]service.StatsResult // one row per window
	loading      bool
	err          error
	cursor       int
}

// NewStatsModel creates a new stats model
func NewStatsModel(qs *service.QueryService, units Units) StatsModel {
	return StatsModel{
		queryService: qs,
		units:        units,
		windows:      service.StatsWindows,
		loading:      true,
	}
}

// Init initializes the stats screen
func (m StatsModel) Init() tea.Cmd {
	return m.loadStats
}

type statsLoadedMsg struct {
	rows [][]service.StatsResult
	err  error
}

func (m StatsModel) loadStats() tea.Msg {
	ctx := context.Background()
	rows := make([][]service.StatsResult, 0, len(m.windows))
	for _, days := range m.windows {
		results, err := m.queryService.WindowStats(ctx, days)
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		rows = append(rows, results)
	}
	return statsLoadedMsg{rows: rows}
}

// Update handles messages
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadStats
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// View renders the stats screen
func (m StatsModel) View() string {
	if m.loading {
		return "\n  Loading stats..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render("Running Stats"))

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %5s  %11s  %9s  %12s  %8s",
		"Window", "Runs", "Distance", "Time", "Avg pace", "Avg HR"))
	sections = append(sections, header)

	for i, row := range m.rows {
		line := fmt.Sprintf("   %-10s  %5s  %11s  %9s  %12s  %8s",
			fmt.Sprintf("%d days", m.windows[i]),
			m.cell(row, analysis.FieldRunCount),
			m.cell(row, analysis.FieldTotalDistance),
			m.cell(row, analysis.FieldTotalDuration),
			m.cell(row, analysis.FieldAvgPace),
			m.cell(row, analysis.FieldAvgHeartRate),
		)
		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(line))
		} else {
			sections = append(sections, tableRowStyle.Render(line))
		}
	}

	if len(m.rows) > 0 && m.cursor < len(m.rows) && len(m.rows[m.cursor]) > 0 {
		r := m.rows[m.cursor][0]
		sections = append(sections, "", statusStyle.Render(fmt.Sprintf("  %s to %s", r.StartDate, r.EndDate)))
	}

	sections = append(sections, "", statusStyle.Render("  j/k: select window  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m StatsModel) cell(row []service.StatsResult, field analysis.StatField) string {
	for _, r := range row {
		if r.Field == string(field) {
			return m.units.StatValue(field, r.Value)
		}
	}
	return "-"
}
