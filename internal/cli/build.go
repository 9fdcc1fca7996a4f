package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/pipeline"
)

// sharedBOMName is the file name of the merged BOM.
const sharedBOMName = "shared.bom.tsv"

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output   string
	formats  string
	scale    float64
	refresh  bool
	noShared bool
	harnessFlags
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	opts := buildOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "build [file...]",
		Short: "Build diagrams and BOMs for every harness in the given files",
		Long: `Build reads YAML harness documents (several per file are allowed, separated
by ---) and writes one set of outputs per harness, named after the harness.

When more than one harness builds, their BOMs are also merged into
shared.bom.tsv. A failing harness is reported and does not stop the others.`,
		Example: `  harnessviz build demo.yml
  harnessviz build -f svg,png,tsv -o out/ a.yml b.yml
  harnessviz build --color-mode full --length-unit ft demo.yml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default: directory of the first input)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: gv, svg, png, pdf, json, tsv, csv (default gv,svg,tsv)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().BoolVar(&opts.noShared, "no-shared-bom", false, "skip the merged BOM")
	addHarnessFlags(cmd, &opts.harnessFlags)

	return cmd
}

// addHarnessFlags registers the settings overrides on cmd.
func addHarnessFlags(cmd *cobra.Command, f *harnessFlags) {
	cmd.Flags().StringVar(&f.gaugeMatching, "gauge-matching", "", "AWG/mm² equivalence: exact or nearest")
	cmd.Flags().StringVar(&f.lengthUnit, "length-unit", "", "default cable length unit: m, cm, mm, ft, in")
	cmd.Flags().StringVar(&f.lengthMode, "bom-length-mode", "", "cable BOM grouping: bucket or sum")
	cmd.Flags().StringVar(&f.colorMode, "color-mode", "", "wire color labels: short, full, hex")
}

func (c *CLI) runBuild(ctx context.Context, paths []string, opts buildOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	docs, err := loadDocuments(ctx, paths)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Config:    &cfg,
		Overrides: opts.overrides(),
		Formats:   parseFormats(opts.formats),
		Scale:     opts.scale,
		Refresh:   opts.refresh,
		Logger:    logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer runner.Close()

	batch, err := runner.BuildAll(ctx, docs, popts)
	if err != nil {
		return err
	}

	dir := outputDir(opts.output, paths)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create output directory")
	}

	built := 0
	for _, res := range batch.Results {
		if res.Err != nil {
			printError("%s", res.Name)
			printDetail("%s", errors.UserMessage(res.Err))
			continue
		}
		built++
		printSuccess("%s", res.Name)
		printStats(res.Stats.Connectors, res.Stats.Cables, res.Stats.Links, res.CacheInfo.RenderHit)
		if err := writeArtifacts(dir, res, popts.Formats); err != nil {
			return err
		}
	}

	if built > 1 && !opts.noShared {
		path := filepath.Join(dir, sharedBOMName)
		if err := writeSharedBOM(path, batch.Shared); err != nil {
			return err
		}
		printInfo("Shared BOM: %d entries across %d harnesses", len(batch.Shared), built)
		printFile(path)
	}

	prog.done(fmt.Sprintf("Built %d of %d harnesses", built, len(batch.Results)))
	if failed := batch.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d harnesses failed: %w", len(failed), len(batch.Results), batch.Err())
	}
	if built > 0 && len(paths) > 0 && paths[0] != "-" {
		printNextStep("Browse interactively", appName+" inspect "+paths[0])
	}
	return nil
}

// writeArtifacts writes the artifacts of res in the requested format order.
func writeArtifacts(dir string, res *pipeline.Result, formats []string) error {
	for _, format := range formats {
		data, ok := res.Artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(dir, res.Name, format)
		if err := writeFile(path, data); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

func writeSharedBOM(path string, shared []bom.SharedEntry) error {
	var buf bytes.Buffer
	if err := bom.WriteTSV(&buf, bom.Entries(shared)); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}
