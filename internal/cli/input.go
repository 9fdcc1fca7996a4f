package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
)

// harnessFlags are the settings overrides shared by build, bom and serve.
type harnessFlags struct {
	gaugeMatching string
	lengthUnit    string
	lengthMode    string
	colorMode     string
}

// overrides returns the flags as document options. Unset flags stay empty
// so lower layers keep their values.
func (f harnessFlags) overrides() document.Options {
	return document.Options{
		GaugeMatching: f.gaugeMatching,
		LengthUnit:    f.lengthUnit,
		BOMLengthMode: f.lengthMode,
		ColorMode:     f.colorMode,
	}
}

// loadDocuments reads every harness in paths in argument order. A "-"
// path reads stdin. Harness names must be unique across files because
// they name the output files.
func loadDocuments(ctx context.Context, paths []string) ([]*document.Document, error) {
	logger := loggerFromContext(ctx)

	var docs []*document.Document
	owner := make(map[string]string)
	for _, p := range paths {
		var (
			loaded []*document.Document
			err    error
		)
		if p == "-" {
			loaded, err = document.Load(os.Stdin, "stdin")
		} else {
			loaded, err = document.LoadFile(p)
		}
		if err != nil {
			return nil, err
		}
		for _, d := range loaded {
			if prev, ok := owner[d.Name]; ok {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"harness %q is defined in both %s and %s", d.Name, prev, p)
			}
			owner[d.Name] = p
		}
		logger.Debug("loaded documents", "path", p, "harnesses", len(loaded))
		docs = append(docs, loaded...)
	}
	return docs, nil
}

// outputPath names the file written for one harness artifact. BOM tables
// get a ".bom" infix so they sit next to the diagram.
func outputPath(dir, name, format string) string {
	ext := format
	if format == "tsv" || format == "csv" {
		ext = "bom." + format
	}
	return filepath.Join(dir, safeName(name)+"."+ext)
}

// safeName replaces path separators in harness names.
func safeName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(name)
}

// outputDir is dir, or the directory of the first input file.
func outputDir(dir string, paths []string) string {
	if dir != "" {
		return dir
	}
	if len(paths) == 0 || paths[0] == "-" {
		return "."
	}
	return filepath.Dir(paths[0])
}
