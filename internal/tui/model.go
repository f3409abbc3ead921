package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vocabemb/internal/domain"
	"vocabemb/internal/report"
)

// ProgressMsg carries a progress update from the builder.
type ProgressMsg struct {
	Done  int
	Total int
}

// DoneMsg ends the program with the build outcome.
type DoneMsg struct {
	Stats  *domain.BuildStats
	Output string
	Err    error
}

// Model is the Bubble Tea model showing build progress.
type Model struct {
	provider    string
	warnings    []string
	bar         progress.Model
	done        int
	total       int
	stats       *domain.BuildStats
	output      string
	err         error
	finished    bool
	interrupted bool
	onInterrupt func()
}

// New creates a progress model for the named provider.
func New(provider string, warnings []string) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return Model{provider: provider, warnings: warnings, bar: bar}
}

// OnInterrupt sets a callback run when the user presses Ctrl+C or Ctrl+D.
func (m Model) OnInterrupt(fn func()) Model {
	m.onInterrupt = fn
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles progress, completion and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(20, min(msg.Width-20, 80))
		return m, nil
	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
		return m, nil
	case DoneMsg:
		m.finished = true
		m.stats, m.output, m.err = msg.Stats, msg.Output, msg.Err
		if msg.Stats != nil {
			m.done, m.total = msg.Stats.Tokens, msg.Stats.Tokens
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.interrupted = true
			if m.onInterrupt != nil {
				m.onInterrupt()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the progress bar and, once finished, the summary or error.
func (m Model) View() string {
	var b strings.Builder
	header := lipgloss.NewStyle().Bold(true).Render("Building embedding matrix")
	b.WriteString(header + " " + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("("+m.provider+")") + "\n")
	for _, w := range m.warnings {
		b.WriteString(report.Warning(w) + "\n")
	}
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString(fmt.Sprintf(" %d/%d tokens\n", m.done, m.total))
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	case m.stats != nil:
		b.WriteString(report.Summarize(m.stats, m.output) + "\n")
	case m.interrupted:
		b.WriteString(errorStyle.Render("interrupted") + "\n")
	}
	return b.String()
}

// Interrupted reports whether the user quit before the build finished.
func (m Model) Interrupted() bool { return m.interrupted && !m.finished }

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

// Reporter forwards builder progress into a running program.
type Reporter struct {
	program *tea.Program
}

func NewReporter(p *tea.Program) *Reporter { return &Reporter{program: p} }

// Report implements domain.ProgressReporter.
func (r *Reporter) Report(done, total int) {
	r.program.Send(ProgressMsg{Done: done, Total: total})
}
