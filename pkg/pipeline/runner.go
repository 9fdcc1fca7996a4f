package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/cache"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/observability"
)

// Runner executes the pipeline with an artifact cache. It holds no
// per-run state, so one Runner may serve concurrent callers.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached artifacts.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLArtifact,
	}
}

// Execute builds one document and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, doc.Name)
	res, err := Build(doc, *opts.Config, opts.Overrides)
	if err != nil {
		hooks.OnBuildComplete(ctx, doc.Name, 0, 0, err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, res.Name, res.Stats.Links, res.Stats.BuildTime, nil)

	r.Logger.Info("built harness",
		"harness", res.Name,
		"connectors", res.Stats.Connectors,
		"cables", res.Stats.Cables,
		"links", res.Stats.Links,
		"bom", res.Stats.BOMEntries,
		"duration", res.Stats.BuildTime)

	renderStart := time.Now()
	artifacts, hit, err := r.Render(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	res.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"harness", res.Name,
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// BuildAll executes every document with at most opts.Workers() in flight.
// A failing harness is recorded in its Result and never stops the others.
// After all harnesses finish, the BOMs of the successful ones are merged
// in document order. The returned error is only set for invalid options
// or a cancelled context.
func (r *Runner) BuildAll(ctx context.Context, docs []*document.Document, opts Options) (*Batch, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	results := make([]*Result, len(docs))
	var g errgroup.Group
	g.SetLimit(opts.Workers())
	for i, doc := range docs {
		g.Go(func() error {
			res, err := r.Execute(ctx, doc, opts)
			if err != nil {
				r.Logger.Error("harness failed", "harness", doc.Name, "err", err)
				res = &Result{Name: doc.Name, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	batch := &Batch{Results: results}
	var named []bom.Named
	for _, res := range results {
		if res.Err == nil {
			named = append(named, bom.Named{Name: res.Name, Entries: res.BOM})
		}
	}
	batch.Shared = bom.Merge(named...)
	return batch, ctx.Err()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
