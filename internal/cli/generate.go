package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lethalposters/pkg/batch"
	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/generate"
	"github.com/matzehuels/lethalposters/pkg/geometry"
	"github.com/matzehuels/lethalposters/pkg/observability"
	"github.com/matzehuels/lethalposters/pkg/output"
	"github.com/matzehuels/lethalposters/pkg/source"
)

// generateCommand creates the generate command, the main workflow: load the
// templates and inputs, then write one atlas, tip and painting per image.
func (c *CLI) generateCommand() *cobra.Command {
	opts := defaultGenerateOpts()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Composite input images into poster, tip and painting textures",
		Long: `Generate composites every image in the input directory into the poster
atlas, the tip card and the painting texture, and writes them to

  <output>/BepInEx/plugins/LethalPosters/posters/<n>.<ext>
  <output>/BepInEx/plugins/LethalPosters/tips/<n>.<ext>
  <output>/BepInEx/plugins/LethalPaintings/paintings/<n>.<ext>

Output formats:
  0  PNG - Raw
  1  PNG - Modified   (--compression 0-9, --optimize)
  2  JPG - Raw
  3  JPG - Modified   (--compression 0-95 quality, --optimize)

Without --format or a format in the config file, the format is asked for
interactively when stdin is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.loadConfig(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			if path != "" {
				c.Logger.Debug("loaded config", "path", path)
			}
			return c.runGenerate(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", opts.Input, "directory with input images (png, jpg, jpeg)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", opts.Output, "output root for the BepInEx plugin tree")
	cmd.Flags().StringVar(&opts.PostersTemplate, "posters-template", opts.PostersTemplate, "poster atlas template image")
	cmd.Flags().StringVar(&opts.PaintingTemplate, "painting-template", opts.PaintingTemplate, "painting template image")
	cmd.Flags().IntVarP(&opts.Format, "format", "f", 0, "output format: 0 PNG raw, 1 PNG modified, 2 JPG raw, 3 JPG modified")
	cmd.Flags().IntVarP(&opts.Compression, "compression", "c", 0, "compression level for modified formats (PNG 0-9, JPG 0-95)")
	cmd.Flags().BoolVar(&opts.Optimize, "optimize", false, "optimize modified formats")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", opts.Workers, fmt.Sprintf("images processed concurrently (1-%d)", batch.MaxWorkers))
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "keep going after a failed save and report failures at the end")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default ./"+defaultConfigFile+")")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")

	registerPathCompletions(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormat)
	_ = cmd.RegisterFlagCompletionFunc("compression", completeCompression)

	return cmd
}

// runGenerate executes the full generation workflow.
func (c *CLI) runGenerate(ctx context.Context, in io.Reader, errOut io.Writer, opts *generateOpts) error {
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)

	spec, err := c.resolveSpec(ctx, in, errOut, opts)
	if err != nil {
		return err
	}
	bopts := opts.batchOptions()
	if err := bopts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	logger.Info("output format", "format", spec)
	if spec.Optimize && !spec.Format.IsPNG() {
		logger.Debug("optimize has no effect on JPG output")
	}

	showProgress := c.showProgress(opts.noProgress)
	rc, err := c.loadRunContext(ctx, opts, spec, showProgress, errOut)
	if err != nil {
		return err
	}
	defer rc.Release()

	if showProgress {
		observability.SetBatchHooks(newProgressBar(errOut))
		defer observability.Reset()
	}

	layout := output.Layout{Root: opts.Output}
	summary, err := batch.NewRunner(layout, logger).Run(ctx, rc, bopts)
	if summary != nil && summary.Images > 0 {
		printSummary(summary, layout, spec)
	}
	return err
}

// resolveSpec returns the output spec from flags or config, falling back to
// the interactive prompt. Without a terminal a missing format, or a modified
// format without a compression level, is an error.
func (c *CLI) resolveSpec(ctx context.Context, in io.Reader, out io.Writer, opts *generateOpts) (output.Spec, error) {
	if opts.formatSet {
		f, err := output.ParseFormat(opts.Format)
		if err != nil {
			return output.Spec{}, err
		}
		if f.IsModified() && !opts.compressionSet {
			if !c.interactive() {
				lo, hi := f.LevelRange()
				return output.Spec{}, errors.New(errors.ErrCodeInvalidConfig,
					"format %d (%s) needs a compression level (use --compression %d-%d or set compression in %s)",
					opts.Format, f, lo, hi, defaultConfigFile)
			}
			level, err := promptLevel(ctx, in, out, f)
			if err != nil {
				return output.Spec{}, err
			}
			opts.Compression = level
		}
		return opts.spec()
	}
	if !c.interactive() {
		return output.Spec{}, errors.New(errors.ErrCodeInvalidConfig, "no output format given (use --format 0-3 or set format in %s)", defaultConfigFile)
	}
	return promptSpec(ctx, in, out)
}

// loadRunContext loads both templates and the input images.
func (c *CLI) loadRunContext(ctx context.Context, opts *generateOpts, spec output.Spec, spin bool, w io.Writer) (*generate.RunContext, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if !spin {
		w = nil
	}
	s := newSpinner(ctx, w, "Loading images...")
	s.Start()
	defer s.Stop()

	posters, err := source.LoadTemplate(opts.PostersTemplate, geometry.AtlasRegions()...)
	if err != nil {
		return nil, err
	}
	painting, err := source.LoadTemplate(opts.PaintingTemplate, geometry.PaintingRegion())
	if err != nil {
		return nil, err
	}
	images, err := source.Load(ctx, opts.Input, logger)
	if err != nil {
		return nil, err
	}
	s.Stop()
	prog.done(fmt.Sprintf("Loaded %d images from %s", images.Len(), opts.Input))

	return generate.NewRunContext(posters, painting, images, spec)
}
