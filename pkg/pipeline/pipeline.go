// Package pipeline runs the harness build shared by the CLI and the HTTP API.
//
// One document goes through five stages:
//
//  1. Build: harness.New instantiates connectors, cables and templates
//  2. Resolve: resolve.Apply turns connection rows into links
//  3. BOM: bom.Aggregator groups parts into entries
//  4. Emit: graph.Emit and dot.ToDOT describe the diagram
//  5. Render: Graphviz and rsvg-convert produce SVG, PNG and PDF
//
// Stages 1 to 4 are pure and run in [Build]. [Runner] adds rendering with an
// artifact cache and fans out over multi-document inputs:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	batch, err := runner.BuildAll(ctx, docs, pipeline.Options{
//	    Formats: []string{"svg", "tsv"},
//	})
//	for _, res := range batch.Results {
//	    if res.Err != nil {
//	        continue // other harnesses are unaffected
//	    }
//	    svg := res.Artifacts["svg"]
//	}
package pipeline

import (
	"io"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/config"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/graph"
	"github.com/matzehuels/harnessviz/pkg/harness"
)

// DefaultScale is the PNG resolution factor.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatGV   = "gv"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatTSV  = "tsv"
	FormatCSV  = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatGV:   true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatTSV:  true,
	FormatCSV:  true,
}

// DefaultFormats are written when no format is requested.
var DefaultFormats = []string{FormatGV, FormatSVG, FormatTSV}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Config is the base configuration. Nil means config.Default().
	Config *config.Config `json:"-"`

	// Overrides is applied after each document's own options section,
	// so command-line flags win over documents.
	Overrides document.Options `json:"overrides,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`   // PNG scale factor
	Refresh bool     `json:"refresh,omitempty"` // bypass the artifact cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it again has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == nil {
		cfg := config.Default()
		o.Config = &cfg
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Workers returns the build concurrency. Zero in the config means one
// worker per CPU.
func (o *Options) Workers() int {
	if o.Config == nil || o.Config.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Config.Workers
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of one harness.
type Result struct {
	Name    string
	Harness *harness.Harness
	Graph   *graph.Graph
	DOT     string
	BOM     []bom.Entry

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo

	// Err is set when this harness failed in BuildAll. Its other fields
	// are then empty.
	Err error
}

// Stats contains per-harness counts and timings.
type Stats struct {
	Connectors int
	Cables     int
	Links      int
	BOMEntries int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks artifact cache hits.
type CacheInfo struct {
	RenderHit bool // every Graphviz artifact came from cache
}

// Batch is the outcome of a multi-harness run.
type Batch struct {
	// Results follow document order, failed harnesses included.
	Results []*Result

	// Shared is the merged BOM of every successful harness.
	Shared []bom.SharedEntry
}

// Failed returns the results that carry an error.
func (b *Batch) Failed() []*Result {
	var out []*Result
	for _, r := range b.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Err returns the first harness error, or nil.
func (b *Batch) Err() error {
	for _, r := range b.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
