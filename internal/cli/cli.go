package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lethalposters/pkg/buildinfo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for the config file and display.
	appName = "lethalposters"

	// defaultConfigFile is read from the working directory when --config is not given.
	defaultConfigFile = appName + ".toml"

	defaultInputDir  = "input"
	defaultOutputDir = "output"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdin and Stderr are consulted for terminal detection. Tests replace
	// them to force the non-interactive path.
	Stdin  *os.File
	Stderr *os.File
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdin:  os.Stdin,
		Stderr: os.Stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lethalposters builds custom poster, tip and painting textures for Lethal Company",
		Long:         `Lethalposters composites your own images into the poster atlas, tip card and painting textures used by the LethalPosters and LethalPaintings BepInEx plugins.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.geometryCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Terminal Detection
// =============================================================================

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// interactive reports whether the format prompt may be shown.
func (c *CLI) interactive() bool {
	return isTerminal(c.Stdin)
}

// showProgress reports whether the progress bar should be drawn. Debug
// logging disables it so log lines are not overdrawn.
func (c *CLI) showProgress(disabled bool) bool {
	return !disabled && isTerminal(c.Stderr) && c.Logger.GetLevel() > log.DebugLevel
}
