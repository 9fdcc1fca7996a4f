package pipeline

import (
	"time"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/config"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/graph"
	"github.com/matzehuels/harnessviz/pkg/harness"
	"github.com/matzehuels/harnessviz/pkg/render/dot"
	"github.com/matzehuels/harnessviz/pkg/resolve"
	"github.com/matzehuels/harnessviz/pkg/units"
)

// Build runs one document through the harness model, the connection
// resolver, the BOM aggregator and the graph emitter. It performs no I/O
// and the same inputs always give the same DOT and BOM. Errors carry the
// harness name.
func Build(doc *document.Document, cfg config.Config, overrides document.Options) (*Result, error) {
	res, err := build(doc, cfg, overrides)
	if err != nil {
		return nil, errors.WithHarness(err, doc.Name)
	}
	return res, nil
}

func build(doc *document.Document, cfg config.Config, overrides document.Options) (*Result, error) {
	start := time.Now()

	cfg, err := settings(doc, cfg, overrides)
	if err != nil {
		return nil, err
	}
	lengthUnit, err := cfg.Length()
	if err != nil {
		return nil, err
	}
	mode, err := bom.ParseLengthMode(cfg.BOM.LengthMode)
	if err != nil {
		return nil, err
	}

	h, err := harness.New(doc, harness.Options{
		Gauges:            units.NewRegistry(cfg.Matching()),
		LengthUnit:        lengthUnit,
		TemplateSeparator: cfg.TemplateSeparator,
		ShowEquiv:         cfg.Render.ShowEquiv,
	})
	if err != nil {
		return nil, err
	}
	if err := resolve.Apply(h); err != nil {
		return nil, err
	}

	entries, err := aggregate(h, bom.Options{LengthMode: mode, LengthUnit: lengthUnit})
	if err != nil {
		return nil, err
	}
	if err := h.SetBOM(entries); err != nil {
		return nil, err
	}

	g := graph.Emit(h, graph.Options{ColorMode: cfg.ColorMode()})
	src := dot.ToDOT(g, dot.Options{FontName: cfg.Render.FontName, BgColor: cfg.Render.BgColor})

	return &Result{
		Name:      h.Name,
		Harness:   h,
		Graph:     g,
		DOT:       src,
		BOM:       entries,
		Artifacts: make(map[string][]byte),
		Stats: Stats{
			Connectors: len(h.Connectors),
			Cables:     len(h.Cables),
			Links:      len(h.Links()),
			BOMEntries: len(entries),
			BuildTime:  time.Since(start),
		},
	}, nil
}

// settings layers the document's options and then the overrides on cfg.
func settings(doc *document.Document, cfg config.Config, overrides document.Options) (config.Config, error) {
	cfg, err := cfg.WithDocument(doc.Options)
	if err != nil {
		return config.Config{}, err
	}
	return cfg.WithDocument(overrides)
}

// aggregate feeds every connector, cable and additional item to a fresh
// aggregator.
func aggregate(h *harness.Harness, opts bom.Options) ([]bom.Entry, error) {
	agg := bom.NewAggregator(opts)
	for _, src := range h.Sources() {
		if err := agg.Add(src); err != nil {
			return nil, err
		}
	}
	for _, it := range h.Items {
		if err := agg.AddItem(it.BOMPart()); err != nil {
			return nil, err
		}
	}
	return agg.Finalize()
}
