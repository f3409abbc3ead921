package report

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vocabemb/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// LogReporter prints progress lines through a standard logger.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter creates a reporter. A nil logger means log.Default().
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{logger: logger}
}

// Report implements domain.ProgressReporter.
func (r *LogReporter) Report(done, total int) {
	r.logger.Printf("processed %d/%d tokens", done, total)
}

// Summarize renders a short description of a finished build.
func Summarize(stats *domain.BuildStats, output string) string {
	reserved := "none"
	if len(stats.Reserved) > 0 {
		reserved = strings.Join(stats.Reserved, ", ")
	}
	lines := []string{
		titleStyle.Render("Embedding matrix ready"),
		line("provider", stats.Provider),
		line("shape", fmt.Sprintf("[%d, %d]", stats.Tokens, stats.Dimension)),
		line("embedded", fmt.Sprintf("%d", stats.Embedded)),
		line("absent (zero rows)", fmt.Sprintf("%d", stats.Absent)),
		line("fallback rows", reserved),
	}
	if output != "" {
		lines = append(lines, line("saved to", output))
	}
	return strings.Join(lines, "\n")
}

// Warning renders a non-fatal degradation message.
func Warning(msg string) string {
	return warningStyle.Render("warning: " + msg)
}

func line(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
