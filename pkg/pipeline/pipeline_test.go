package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/harnessviz/pkg/config"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/graph"
)

const serial = `
metadata:
  title: serial
connectors:
  X1:
    type: D-Sub
    pincount: 9
  X2:
    pincount: 3
cables:
  W1:
    wirecount: 3
    gauge: 0.25 mm2
    length: 0.2
    color_code: DIN
    shield: true
connections:
  -
    - X1: [5, 2, 3]
    - W1: [1, 2, 3]
    - X2: [1, 3, 2]
  -
    - X1: 5
    - W1: s
`

const power = `
metadata:
  title: power
connectors:
  J1: {pincount: 2}
  J2: {pincount: 2}
cables:
  W1: {colors: [RD, BK], gauge: 0.25 mm2, length: 0.2}
connections:
  - [J1, W1, J2]
`

const broken = `
metadata:
  title: broken
connectors:
  X1: {pincount: 2}
cables:
  W1: {wirecount: 3}
connections:
  - [X1, W1]
`

func parse(t *testing.T, src string) []*document.Document {
	t.Helper()
	docs, err := document.Parse([]byte(src), "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return docs
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"gv", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"tsv", false},
		{"csv", false},
		{"html", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "tsv"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if strings.Join(opts.Formats, ",") != "gv,svg,tsv" {
		t.Errorf("Formats = %v, want [gv svg tsv]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Config == nil || opts.Config.LengthUnit != "m" {
		t.Errorf("Config = %+v, want defaults", opts.Config)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if opts.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", opts.Workers())
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	cfg := opts.Config
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Config != cfg || len(opts.Formats) != 1 {
		t.Error("second call changed options")
	}
}

func TestOptionsInvalid(t *testing.T) {
	bad := config.Default()
	bad.BOM.LengthMode = "weekly"
	tests := []struct {
		name string
		opts Options
	}{
		{"format", Options{Formats: []string{"bmp"}}},
		{"config", Options{Config: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuild(t *testing.T) {
	res, err := Build(parse(t, serial)[0], config.Default(), document.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if res.Name != "serial" {
		t.Errorf("Name = %q", res.Name)
	}
	if res.Stats.Links != 4 {
		t.Errorf("Links = %d, want 4", res.Stats.Links)
	}
	if res.Stats.Connectors != 2 || res.Stats.Cables != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.BOM) != 3 || len(res.Harness.BOM()) != 3 {
		t.Errorf("BOM entries = %d, want 3 (two connectors, one cable)", len(res.BOM))
	}
	if !strings.HasPrefix(res.DOT, `graph "serial" {`) {
		t.Errorf("DOT header = %q", strings.SplitN(res.DOT, "\n", 2)[0])
	}
	if !strings.Contains(res.DOT, `"X1":"p5r":e -- "W1":"ws":w`) {
		t.Error("DOT missing shield edge")
	}
}

func TestBuildDeterministic(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	opts := Options{Formats: []string{FormatGV, FormatTSV, FormatJSON}}

	var first map[string][]byte
	for i := 0; i < 3; i++ {
		res, err := r.Execute(ctx, parse(t, serial)[0], opts)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if first == nil {
			first = res.Artifacts
			continue
		}
		for f, data := range res.Artifacts {
			if string(data) != string(first[f]) {
				t.Errorf("run %d: %s output differs", i, f)
			}
		}
	}
}

func TestBuildLayering(t *testing.T) {
	doc := parse(t, serial)[0]
	doc.Options.ColorMode = "full"

	viaDoc, err := Build(doc, config.Default(), document.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	viaOverride, err := Build(doc, config.Default(), document.Options{ColorMode: "hex"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	portColor := func(res *Result) string {
		n, _ := res.Graph.Node("W1")
		p, _ := n.Port(1)
		return p.Color
	}
	if got := portColor(viaDoc); got == "WH" || got == "" {
		t.Errorf("document color_mode ignored: %q", got)
	}
	if got := portColor(viaOverride); !strings.HasPrefix(got, "#") {
		t.Errorf("override color_mode ignored: %q", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		overrides document.Options
		code      errors.Code
	}{
		{"resolution", broken, document.Options{}, errors.ErrCodeResolution},
		{"bad override", power, document.Options{LengthUnit: "kg"}, errors.ErrCodeInvalidInput},
		{"unknown entity", `
connectors:
  X1: {pincount: 1}
connections:
  - [X1, W9]
`, document.Options{}, errors.ErrCodeSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.src)[0]
			_, err := Build(doc, config.Default(), tt.overrides)
			if !errors.Is(err, tt.code) {
				t.Fatalf("Build() error = %v, want %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), "harness "+doc.Name) {
				t.Errorf("error %q does not name the harness", err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	res, err := Build(parse(t, power)[0], config.Default(), document.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	artifacts, hit, err := r.Render(ctx, res, Options{Formats: []string{FormatGV, FormatJSON, FormatCSV, FormatTSV}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if hit {
		t.Error("text formats should not report a cache hit")
	}
	if string(artifacts[FormatGV]) != res.DOT {
		t.Error("gv artifact should be the DOT text")
	}
	g, err := graph.Unmarshal(artifacts[FormatJSON])
	if err != nil || len(g.Edges) != 2 {
		t.Errorf("json artifact = %v edges, err %v", len(g.Edges), err)
	}
	if !strings.HasPrefix(string(artifacts[FormatCSV]), "Id,Description,Qty") {
		t.Errorf("csv header = %q", strings.SplitN(string(artifacts[FormatCSV]), "\n", 2)[0])
	}
	if !strings.HasPrefix(string(artifacts[FormatTSV]), "Id\tDescription\tQty") {
		t.Errorf("tsv header = %q", strings.SplitN(string(artifacts[FormatTSV]), "\n", 2)[0])
	}
}

// memCache counts traffic to check the runner's cache use.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Clear(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.data)
	c.data = make(map[string][]byte)
	return n, nil
}

func (c *memCache) Close() error { return nil }

func TestRunnerArtifactCache(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	opts := Options{Formats: []string{FormatSVG}}

	first, err := r.Execute(ctx, parse(t, power)[0], opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}
	if !strings.Contains(string(first.Artifacts[FormatSVG]), "<svg") {
		t.Error("svg artifact missing <svg> tag")
	}

	second, err := r.Execute(ctx, parse(t, power)[0], opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, parse(t, power)[0], opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if third.CacheInfo.RenderHit || mc.sets != 2 {
		t.Errorf("refresh should bypass the cache (hit=%v, sets=%d)", third.CacheInfo.RenderHit, mc.sets)
	}
}

func TestRunnerBuildAllIsolatesFailures(t *testing.T) {
	src := serial + "\n---\n" + broken + "\n---\n" + power
	docs := parse(t, src)

	r := NewRunner(nil, nil, nil)
	batch, err := r.BuildAll(context.Background(), docs, Options{Formats: []string{FormatGV, FormatTSV}})
	if err != nil {
		t.Fatalf("BuildAll() error = %v", err)
	}

	names := make([]string, len(batch.Results))
	for i, res := range batch.Results {
		names[i] = res.Name
	}
	if strings.Join(names, ",") != "serial,broken,power" {
		t.Errorf("result order = %v", names)
	}

	failed := batch.Failed()
	if len(failed) != 1 || failed[0].Name != "broken" {
		t.Fatalf("Failed() = %v", failed)
	}
	if !errors.Is(batch.Err(), errors.ErrCodeResolution) {
		t.Errorf("Err() = %v", batch.Err())
	}
	if batch.Results[2].Artifacts[FormatGV] == nil {
		t.Error("harness after the failure was not rendered")
	}

	var designators []string
	for _, e := range batch.Shared {
		designators = append(designators, e.Designators...)
		for _, h := range e.Harnesses {
			if h == "broken" {
				t.Error("failed harness contributed to the shared BOM")
			}
		}
	}
	joined := strings.Join(designators, ",")
	for _, want := range []string{"serial/X1", "serial/W1", "power/J1", "power/J2", "power/W1"} {
		if !strings.Contains(joined, want) {
			t.Errorf("shared BOM missing %s in %s", want, joined)
		}
	}
}

func TestRunnerBuildAllSerialWorker(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 1
	docs := parse(t, power+"\n---\n"+serial)

	batch, err := NewRunner(nil, nil, nil).BuildAll(context.Background(), docs, Options{Config: &cfg, Formats: []string{FormatGV}})
	if err != nil {
		t.Fatalf("BuildAll() error = %v", err)
	}
	if batch.Err() != nil {
		t.Errorf("unexpected failure: %v", batch.Err())
	}
	data, _ := json.Marshal(batch.Shared)
	if len(batch.Shared) == 0 || len(data) == 0 {
		t.Error("shared BOM is empty")
	}
}
