package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/cache"
	"github.com/matzehuels/harnessviz/pkg/graph"
	"github.com/matzehuels/harnessviz/pkg/observability"
	"github.com/matzehuels/harnessviz/pkg/render"
	"github.com/matzehuels/harnessviz/pkg/render/dot"
)

// artifactKeyType labels artifact traffic in cache hooks.
const artifactKeyType = "artifact"

// IsGraphviz reports whether format needs a Graphviz layout.
func IsGraphviz(format string) bool {
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		return true
	}
	return false
}

// Render produces every requested format for a built harness. Graphviz
// artifacts are cached by the hash of the DOT text; the bool reports
// whether all of them came from the cache.
func (r *Runner) Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	rd := &renderer{runner: r, res: res, opts: opts, dotHash: cache.Hash([]byte(res.DOT))}
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached, anyGraphviz := true, false
	hooks := observability.Pipeline()

	for _, format := range opts.Formats {
		start := time.Now()
		hooks.OnRenderStart(ctx, res.Name, format)
		data, cached, err := rd.artifact(ctx, format)
		hooks.OnRenderComplete(ctx, res.Name, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		if IsGraphviz(format) {
			anyGraphviz = true
			allCached = allCached && cached
		}
		artifacts[format] = data
	}
	return artifacts, anyGraphviz && allCached, nil
}

// renderer renders the formats of one result and lays out the SVG at most
// once.
type renderer struct {
	runner  *Runner
	res     *Result
	opts    Options
	dotHash string
	svg     []byte
}

func (rd *renderer) artifact(ctx context.Context, format string) ([]byte, bool, error) {
	switch format {
	case FormatGV:
		return []byte(rd.res.DOT), false, nil
	case FormatJSON:
		data, err := graph.Marshal(rd.res.Graph)
		return data, false, err
	case FormatTSV, FormatCSV:
		var buf bytes.Buffer
		write := bom.WriteTSV
		if format == FormatCSV {
			write = bom.WriteCSV
		}
		if err := write(&buf, rd.res.BOM); err != nil {
			return nil, false, err
		}
		return buf.Bytes(), false, nil
	}
	return rd.cached(ctx, format)
}

// cached serves a Graphviz artifact from the cache or renders and stores it.
func (rd *renderer) cached(ctx context.Context, format string) ([]byte, bool, error) {
	c, hooks := rd.runner.Cache, observability.Cache()
	keyOpts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		keyOpts.Scale = rd.opts.Scale
	}
	key := rd.runner.Keyer.ArtifactKey(rd.dotHash, keyOpts)

	if !rd.opts.Refresh {
		if data, hit, err := c.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, artifactKeyType)
			return data, true, nil
		}
		hooks.OnCacheMiss(ctx, artifactKeyType)
	}

	data, err := rd.graphviz(ctx, format)
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, rd.runner.TTL); err != nil {
		rd.runner.Logger.Warn("cache write failed", "harness", rd.res.Name, "format", format, "err", err)
	} else {
		hooks.OnCacheSet(ctx, artifactKeyType, len(data))
	}
	return data, false, nil
}

func (rd *renderer) graphviz(ctx context.Context, format string) ([]byte, error) {
	if rd.svg == nil {
		svg, err := dot.RenderSVG(ctx, rd.res.DOT)
		if err != nil {
			return nil, err
		}
		rd.svg = svg
	}
	switch format {
	case FormatPNG:
		return render.ToPNG(ctx, rd.svg, rd.opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, rd.svg)
	}
	return rd.svg, nil
}
