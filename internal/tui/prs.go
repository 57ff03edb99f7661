package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/fish0048-ai/my-ai-coach/internal/analysis"
	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// PRsModel is the personal records screen model
type PRsModel struct {
	queryService *service.QueryService
	units        Units
	data         *analysis.RecordSet
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewPRsModel creates a new PRs model
func NewPRsModel(qs *service.QueryService, units Units, width, height int) PRsModel {
	m := PRsModel{
		queryService: qs,
		units:        units,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the PRs screen
func (m PRsModel) Init() tea.Cmd {
	return m.loadPRs
}

type prsLoadedMsg struct {
	data *analysis.RecordSet
	err  error
}

func (m PRsModel) loadPRs() tea.Msg {
	data, err := m.queryService.PersonalRecords(context.Background())
	if err != nil {
		return prsLoadedMsg{err: err}
	}
	return prsLoadedMsg{data: &data}
}

// Update handles messages
func (m PRsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case prsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadPRs
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the PRs screen
func (m PRsModel) View() string {
	if m.loading {
		return "\n  Loading personal records..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m PRsModel) renderContent() string {
	if m.data == nil {
		return "No personal records yet. Sync or import some workouts first."
	}

	var sections []string

	sections = append(sections, "")
	sections = append(sections, cardTitleStyle.Render("Personal Records"))
	sections = append(sections, "")

	hasRuns := m.data.Run.MaxDistance != nil || m.data.Run.FastestPace != nil || m.data.Run.LongestDuration != nil
	if hasRuns {
		sections = append(sections, m.renderRunRecords())
	}
	if len(m.data.Strength) > 0 {
		sections = append(sections, m.renderStrengthRecords())
	}

	if !hasRuns && len(m.data.Strength) == 0 {
		sections = append(sections, lipgloss.NewStyle().Foreground(mutedColor).Render("  No personal records found. Sync or import some workouts first."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m PRsModel) renderRunRecords() string {
	var lines []string
	r := m.data.Run

	lines = append(lines, m.sectionHeader("Running"))
	if r.MaxDistance != nil {
		lines = append(lines, formatRecordRow("Longest run", m.units.FormatDistance(*r.MaxDistance), r.MaxDistanceDate))
	}
	if r.FastestPace != nil {
		lines = append(lines, formatRecordRow("Fastest pace", m.units.FormatPace(*r.FastestPace), r.FastestPaceDate))
	}
	if r.LongestDuration != nil {
		lines = append(lines, formatRecordRow("Longest time", formatMinutes(*r.LongestDuration), r.LongestDurationDate))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m PRsModel) renderStrengthRecords() string {
	var lines []string

	lines = append(lines, m.sectionHeader("Strength"))
	lines = append(lines, m.tableHeader())

	for _, name := range m.data.Exercises() {
		lines = append(lines, m.formatStrengthRow(name, m.data.Strength[name]))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m PRsModel) sectionHeader(title string) string {
	titleLen := len([]rune(title))
	dividerLen := 72 - titleLen - 4
	if dividerLen < 0 {
		dividerLen = 0
	}
	divider := strings.Repeat("─", dividerLen)
	return lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(fmt.Sprintf("── %s %s", title, divider))
}

func (m PRsModel) tableHeader() string {
	header := fmt.Sprintf("  %-20s  %9s  %9s  %11s  %5s  %s", "Exercise", "Est. 1RM", "Max kg", "Max volume", "Reps", "Last trained")
	return lipgloss.NewStyle().Foreground(primaryColor).Render(header)
}

func (m PRsModel) formatStrengthRow(name string, r *analysis.StrengthRecord) string {
	if len([]rune(name)) > 20 {
		name = string([]rune(name)[:17]) + "..."
	}
	return fmt.Sprintf("  %-20s  %9s  %9s  %11s  %5d  %s",
		name,
		humanize.Commaf(r.Max1RM),
		humanize.Commaf(r.MaxWeight),
		humanize.Commaf(r.MaxVolume),
		r.MaxReps,
		relativeDate(r.LastDate),
	)
}

func formatRecordRow(label, value, date string) string {
	return fmt.Sprintf("  %-18s  %12s  (%s)", label, value, date)
}

// relativeDate renders a stored date as "3 days ago", or as-is when it does
// not parse.
func relativeDate(date string) string {
	t, err := time.Parse(analysis.DateLayout, date)
	if err != nil {
		return date
	}
	return humanize.Time(t)
}
