package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lethalposters/pkg/batch"
	"github.com/matzehuels/lethalposters/pkg/composite"
	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/geometry"
	"github.com/matzehuels/lethalposters/pkg/output"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleBarFilled = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty  = lipgloss.NewStyle().Foreground(colorDim)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints an output directory line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// ErrorText renders err for stderr. Errors the user can fix from the command
// line get a suggested next command on a second line.
func ErrorText(err error) string {
	text := styleIconError.Render(iconError) + " " + errors.UserMessage(err)

	var description, cmd string
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidConfig:
		description, cmd = "See the format and compression flags", appName+" generate --help"
	case errors.ErrCodeEmptySource:
		description, cmd = "Create the input folder and a sample config", appName+" init"
	case errors.ErrCodeTemplateLoad:
		description, cmd = "Show the regions a template must cover", appName+" geometry"
	default:
		return text
	}
	return text + "\n  " + StyleDim.Render(description+":") + " " + styleCommand.Render(cmd)
}

// =============================================================================
// Run Summary
// =============================================================================

// printSummary reports the outcome of a batch run.
func printSummary(s *batch.Summary, layout output.Layout, spec output.Spec) {
	printNewline()
	switch {
	case len(s.Failures) > 0:
		printWarning("Wrote %d files for %d of %d images", s.Written, s.Processed, s.Images)
	case s.Processed < s.Images:
		printWarning("Stopped after %d of %d images", s.Processed, s.Images)
	default:
		printSuccess("Wrote %d files for %d images", s.Written, s.Images)
	}
	printDetail("%s", summaryLine(s, spec))
	for _, f := range s.Failures {
		printError("image %d: %v", f.Index, f.Err)
	}
	if s.Written > 0 {
		for _, c := range output.Categories {
			printFile(layout.Dir(c))
		}
	}
}

// summaryLine joins the run statistics into one dim line.
func summaryLine(s *batch.Summary, spec output.Spec) string {
	parts := []string{
		spec.String(),
		fmt.Sprintf("%d failed", len(s.Failures)),
		s.Duration.Round(time.Millisecond).String(),
	}
	if len(s.RunID) >= 8 {
		parts = append(parts, "run "+s.RunID[:8])
	}
	return strings.Join(parts, " · ")
}

// =============================================================================
// Geometry Table
// =============================================================================

// geometryTable renders every placement region as a table.
func geometryTable() string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	var rows [][]string
	for i, r := range geometry.AtlasRegions() {
		rows = append(rows, placementRow(string(output.Posters)+" "+strconv.Itoa(i), r, composite.Contain, composite.TopRight))
	}
	rows = append(rows,
		placementRow(string(output.Tips), geometry.TipRegion(), composite.Contain, composite.TopRight),
		placementRow(string(output.Paintings), geometry.PaintingRegion(), composite.CoverCrop, composite.TopLeft),
	)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Output", "Region", "Size", "Fit", "Anchor").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func placementRow(name string, r geometry.Region, fit composite.FitPolicy, anchor composite.Anchor) []string {
	return []string{name, r.String(), fmt.Sprintf("%dx%d", r.Width, r.Height), fit.String(), anchor.String()}
}
