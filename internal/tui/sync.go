package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fish0048-ai/my-ai-coach/internal/service"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	platforms   []string
	platformIdx int
	dryRun      bool

	spinner  spinner.Model
	syncing  bool
	progress service.SyncProgress
	updates  <-chan service.SyncProgress
	done     <-chan syncDoneMsg

	result *service.PlatformSyncResult
	err    error
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
		platforms:   service.SupportedPlatforms,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(helpKeyStyle)),
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

type syncDoneMsg struct {
	result *service.PlatformSyncResult
	err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		return m, m.waitForProgress()

	case syncDoneMsg:
		m.syncing = false
		m.result = msg.result
		m.err = msg.err
		summary := m.summaryLine()
		return m, func() tea.Msg { return SyncCompleteMsg{Summary: summary} }

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.syncing {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.platformIdx > 0 {
				m.platformIdx--
			}
		case "down", "j":
			if m.platformIdx < len(m.platforms)-1 {
				m.platformIdx++
			}
		case "d":
			m.dryRun = !m.dryRun
		case "enter", "s":
			return m.startSync()
		}
	}
	return m, nil
}

func (m SyncModel) startSync() (tea.Model, tea.Cmd) {
	updates := make(chan service.SyncProgress, 16)
	done := make(chan syncDoneMsg, 1)
	platform := m.platforms[m.platformIdx]
	opts := service.SyncOptions{DryRun: m.dryRun}

	go func() {
		result, err := m.syncService.SyncPlatform(context.Background(), platform, opts, updates)
		done <- syncDoneMsg{result: result, err: err}
	}()

	m.syncing = true
	m.result = nil
	m.err = nil
	m.progress = service.SyncProgress{}
	m.updates = updates
	m.done = done
	return m, tea.Batch(m.spinner.Tick, m.waitForProgress())
}

// waitForProgress reads the next progress update, or the result once the
// service has closed the progress channel.
func (m SyncModel) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return <-done
		}
		return syncProgressMsg(p)
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Sync"))

	switch {
	case m.syncing:
		sections = append(sections, m.renderProgress())
	case m.err != nil && m.result == nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderStartPrompt())
	case m.result != nil:
		sections = append(sections, m.renderSummary())
		sections = append(sections, m.renderStartPrompt())
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Platform:")
	for i, p := range m.platforms {
		line := "    " + p
		if i == m.platformIdx {
			lines = append(lines, tableSelectedStyle.Render("  > "+p))
		} else {
			lines = append(lines, tableRowStyle.Render(line))
		}
	}
	lines = append(lines, "")

	mode := "off"
	if m.dryRun {
		mode = warningStyle.Render("on (nothing is written)")
	}
	lines = append(lines, "  Dry run: "+mode)
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  j/k: platform  d: toggle dry run  s/enter: start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string
	p := m.progress

	lines = append(lines, "")
	switch p.Phase {
	case "store":
		lines = append(lines, fmt.Sprintf("  %s Storing %d workouts", m.spinner.View(), p.Total))
		if p.Total > 0 {
			lines = append(lines, "  "+RenderProgressBar(float64(p.Completed)/float64(p.Total), 40))
		}
	default:
		lines = append(lines, fmt.Sprintf("  %s Fetching activities (%d so far)", m.spinner.View(), p.Completed))
	}
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string
	r := m.result

	lines = append(lines, "")
	if r.OK {
		lines = append(lines, successStyle.Render("  Sync complete!"))
	} else {
		lines = append(lines, warningStyle.Render("  Sync finished with problems"))
	}

	verb := "imported"
	if m.dryRun {
		verb = "would import"
	}
	lines = append(lines, fmt.Sprintf("  %d %s, %d updated, %d skipped", r.ImportedCount, verb, r.UpdatedCount, r.SkippedCount))

	for _, e := range r.Errors {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  [%s] %s", e.Code, e.Message)))
	}

	return strings.Join(lines, "\n")
}

func (m SyncModel) summaryLine() string {
	if m.result == nil {
		if m.err != nil {
			return "Sync failed: " + m.err.Error()
		}
		return ""
	}
	return fmt.Sprintf("%s sync: %d imported, %d updated, %d errors",
		m.result.Platform, m.result.ImportedCount, m.result.UpdatedCount, len(m.result.Errors))
}
