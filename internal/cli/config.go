package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lethalposters/pkg/batch"
	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/output"
	"github.com/matzehuels/lethalposters/pkg/source"
)

// generateOpts holds the settings of the generate command. Exported fields
// can also be set from the config file; unexported ones are flag-only.
type generateOpts struct {
	Input            string `toml:"input"`             // directory scanned for input images
	Output           string `toml:"output"`            // root of the BepInEx output tree
	PostersTemplate  string `toml:"posters_template"`  // poster atlas template
	PaintingTemplate string `toml:"painting_template"` // painting template
	Format           int    `toml:"format"`            // 0-3, see output.Format
	Compression      int    `toml:"compression"`       // PNG level or JPEG quality
	Optimize         bool   `toml:"optimize"`          // optimize flag for modified formats
	Workers          int    `toml:"workers"`           // concurrent indices
	KeepGoing        bool   `toml:"keep_going"`        // collect save failures instead of aborting

	config         string // --config path, empty for the default file
	noProgress     bool   // disable the progress bar
	formatSet      bool   // format came from a flag or the config file
	compressionSet bool   // compression came from a flag or the config file
}

func defaultGenerateOpts() generateOpts {
	return generateOpts{
		Input:            defaultInputDir,
		Output:           defaultOutputDir,
		PostersTemplate:  source.PostersTemplateFile,
		PaintingTemplate: source.PaintingTemplateFile,
		Workers:          batch.DefaultWorkers,
	}
}

// configKeys maps flag names to their config file keys.
var configKeys = map[string]string{
	"input":             "input",
	"output":            "output",
	"posters-template":  "posters_template",
	"painting-template": "painting_template",
	"format":            "format",
	"compression":       "compression",
	"optimize":          "optimize",
	"workers":           "workers",
	"keep-going":        "keep_going",
}

// loadConfig reads the config file and copies every key it defines into o,
// unless the matching flag was set explicitly. A missing default config file
// is not an error; a missing --config file is.
func (o *generateOpts) loadConfig(changed func(flag string) bool) (string, error) {
	path, required := o.config, true
	if path == "" {
		path, required = defaultConfigFile, false
	}

	var file generateOpts
	md, err := toml.DecodeFile(path, &file)
	switch {
	case err == nil:
	case os.IsNotExist(err) && !required:
		o.formatSet = changed("format")
		o.compressionSet = changed("compression")
		return "", nil
	default:
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return "", errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	o.merge(&file, md.IsDefined, changed)
	return path, nil
}

// merge copies each field defined in file whose flag was not changed.
func (o *generateOpts) merge(file *generateOpts, defined func(key ...string) bool, changed func(flag string) bool) {
	use := func(flag string) bool {
		return defined(configKeys[flag]) && !changed(flag)
	}
	if use("input") {
		o.Input = file.Input
	}
	if use("output") {
		o.Output = file.Output
	}
	if use("posters-template") {
		o.PostersTemplate = file.PostersTemplate
	}
	if use("painting-template") {
		o.PaintingTemplate = file.PaintingTemplate
	}
	if use("format") {
		o.Format = file.Format
	}
	if use("compression") {
		o.Compression = file.Compression
	}
	if use("optimize") {
		o.Optimize = file.Optimize
	}
	if use("workers") {
		o.Workers = file.Workers
	}
	if use("keep-going") {
		o.KeepGoing = file.KeepGoing
	}
	o.formatSet = changed("format") || defined("format")
	o.compressionSet = changed("compression") || defined("compression")
}

// spec builds the output spec from the resolved format settings.
func (o *generateOpts) spec() (output.Spec, error) {
	return output.NewSpec(o.Format, o.Compression, o.Optimize)
}

// batchOptions returns the batch runner options.
func (o *generateOpts) batchOptions() batch.Options {
	return batch.Options{Workers: o.Workers, KeepGoing: o.KeepGoing}
}

// writeSampleConfig writes o as a TOML config file at path. Existing files
// are only replaced when force is set.
func writeSampleConfig(path string, o generateOpts, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "config %s already exists (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodePersistence, err, "create config directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "create config %s", path)
	}
	defer f.Close()

	if _, err := f.WriteString(sampleConfigHeader); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write config %s", path)
	}
	if err := toml.NewEncoder(f).Encode(o); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write config %s", path)
	}
	return nil
}

const sampleConfigHeader = `# lethalposters configuration
#
# format: 0 = PNG raw, 1 = PNG modified, 2 = JPG raw, 3 = JPG modified
# compression: PNG 0-9 (0=None, 9=Best Compression)
#              JPG 0-95 (0=Best Compression, 95=Best Quality)
#              required for formats 1 and 3
# Command line flags override these values.

`
