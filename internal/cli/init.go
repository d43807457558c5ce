package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/output"
)

// initOpts holds the command-line flags for the init command.
type initOpts struct {
	input  string // input directory to create
	output string // output root to create
	config string // config file to write
	force  bool   // overwrite an existing config file
}

// initCommand creates the init command, which prepares a working directory.
func (c *CLI) initCommand() *cobra.Command {
	opts := initOpts{
		input:  defaultInputDir,
		output: defaultOutputDir,
		config: defaultConfigFile,
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the input and output directories and a sample config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInit(&opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", opts.input, "input directory to create")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output root to create")
	cmd.Flags().StringVar(&opts.config, "config", opts.config, "config file to write")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing config file")
	registerPathCompletions(cmd)

	return cmd
}

func (c *CLI) runInit(opts *initOpts) error {
	if err := os.MkdirAll(opts.input, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "create input directory %s", opts.input)
	}
	layout := output.Layout{Root: opts.output}
	if err := layout.Ensure(); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "create output directories")
	}
	c.Logger.Debug("created directories", "input", opts.input, "output", opts.output)

	sample := defaultGenerateOpts()
	sample.Input = opts.input
	sample.Output = opts.output
	sample.Format = int(output.OptimizedPNG)
	sample.Compression = 6
	if err := writeSampleConfig(opts.config, sample, opts.force); err != nil {
		return err
	}

	printSuccess("Initialized %s", appName)
	printKeyValue("input", opts.input)
	for _, cat := range output.Categories {
		printFile(layout.Dir(cat))
	}
	printKeyValue("config", opts.config)
	printNewline()
	printNextStep("Add images to "+opts.input+", then run", appName+" generate")
	return nil
}
