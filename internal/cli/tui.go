package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/output"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FormatListModel - output format selection
// =============================================================================

// FormatListModel is the bubbletea model for choosing the output format.
type FormatListModel struct {
	Formats   []output.Format
	Cursor    int
	Selected  *output.Format
	Cancelled bool
}

// NewFormatListModel creates a format list with the cursor on optimized PNG.
func NewFormatListModel() FormatListModel {
	return FormatListModel{Formats: output.Formats, Cursor: int(output.OptimizedPNG)}
}

func (m FormatListModel) Init() tea.Cmd {
	return nil
}

func (m FormatListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "q", "ctrl+c", "esc":
		m.Cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Formats)-1 {
			m.Cursor++
		}
	case "enter":
		f := m.Formats[m.Cursor]
		m.Selected = &f
		return m, tea.Quit
	default:
		// Digits pick a format directly, the way the numbered menu reads.
		if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(m.Formats) {
			m.Cursor = n
			f := m.Formats[n]
			m.Selected = &f
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FormatListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Output Format"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  0-3/⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.Formats {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%d  %s", cursor, i, f)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// LevelInputModel - compression level entry
// =============================================================================

// LevelInputModel reads a compression level for a modified format. Invalid
// input ends the prompt with a configuration error; there is no retry.
type LevelInputModel struct {
	Format    output.Format
	Input     string
	Level     int
	Done      bool
	Err       error
	Cancelled bool
}

// NewLevelInputModel creates a level prompt for format f.
func NewLevelInputModel(f output.Format) LevelInputModel {
	return LevelInputModel{Format: f}
}

func (m LevelInputModel) Init() tea.Cmd {
	return nil
}

func (m LevelInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Cancelled = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.Input != "" {
			m.Input = m.Input[:len(m.Input)-1]
		}
	case tea.KeyEnter:
		m.Done = true
		m.Level, m.Err = parseLevel(m.Format, m.Input)
		return m, tea.Quit
	case tea.KeyRunes:
		if len(m.Input) < 4 {
			m.Input += string(key.Runes)
		}
	}
	return m, nil
}

func (m LevelInputModel) View() string {
	lo, hi := m.Format.LevelRange()
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Compression Level (%d-%d)", lo, hi)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(m.Format.LevelHint()))
	b.WriteString("\n\n")
	b.WriteString(listSelectedStyle.Render("▸ " + m.Input))
	b.WriteString("\n")
	return b.String()
}

// parseLevel validates a typed compression level against f's range.
func parseLevel(f output.Format, s string) (int, error) {
	lo, hi := f.LevelRange()
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "compression %q is invalid for %s (must be %d-%d)", s, f, lo, hi)
	}
	return n, nil
}

// =============================================================================
// ConfirmModel - yes/no question
// =============================================================================

// ConfirmModel asks a yes/no question. Enter accepts the default of no.
type ConfirmModel struct {
	Question  string
	Answer    bool
	Done      bool
	Cancelled bool
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "ctrl+c", "esc":
		m.Cancelled = true
		return m, tea.Quit
	case "y":
		m.Answer, m.Done = true, true
		return m, tea.Quit
	case "n", "enter":
		m.Answer, m.Done = false, true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	return StyleTitle.Render(m.Question) + " " + listDimStyle.Render("[y/N]") + "\n"
}

// =============================================================================
// Prompt
// =============================================================================

// promptSpec asks for format, compression level and optimize flag.
// Aborting any prompt returns context.Canceled.
func promptSpec(ctx context.Context, in io.Reader, out io.Writer) (output.Spec, error) {
	run := func(m tea.Model) (tea.Model, error) {
		return tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	}

	fm, err := run(NewFormatListModel())
	if err != nil {
		return output.Spec{}, err
	}
	format := fm.(FormatListModel)
	if format.Cancelled || format.Selected == nil {
		return output.Spec{}, context.Canceled
	}
	f := *format.Selected
	if !f.IsModified() {
		return output.NewSpec(int(f), 0, false)
	}

	level, err := promptLevel(ctx, in, out, f)
	if err != nil {
		return output.Spec{}, err
	}

	cm, err := run(ConfirmModel{Question: "Optimize?"})
	if err != nil {
		return output.Spec{}, err
	}
	confirm := cm.(ConfirmModel)
	if confirm.Cancelled {
		return output.Spec{}, context.Canceled
	}
	return output.NewSpec(int(f), level, confirm.Answer)
}

// promptLevel asks for the compression level of a modified format.
func promptLevel(ctx context.Context, in io.Reader, out io.Writer, f output.Format) (int, error) {
	m, err := tea.NewProgram(NewLevelInputModel(f), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return 0, err
	}
	level := m.(LevelInputModel)
	if level.Cancelled {
		return 0, context.Canceled
	}
	if level.Err != nil {
		return 0, level.Err
	}
	return level.Level, nil
}
