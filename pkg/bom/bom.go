package bom

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/units"
)

// Category groups BOM entries and prefixes their designators.
type Category string

const (
	Connector Category = "CONN"
	Cable     Category = "CABLE"
	Wire      Category = "WIRE"
	Item      Category = "ITEM"
)

var categoryOrder = []Category{Connector, Cable, Wire, Item}

func (c Category) rank() int { return slices.Index(categoryOrder, c) }

// LengthMode selects how cable lengths contribute to entries.
type LengthMode string

const (
	// Bucket keeps length in the grouping key; qty counts pieces.
	Bucket LengthMode = "bucket"
	// Sum drops length from the key; qty is the total length.
	Sum LengthMode = "sum"
)

// Part is one purchasable line contributed by a source.
type Part struct {
	Category    Category
	Description string // set for additional items; generated otherwise
	Type        string
	Subtype     string
	PinCount    int
	WireCount   int
	Gauge       units.Quantity
	Shield      bool
	Colors      string // color-code standard or color sequence
	Length      units.Quantity

	Manufacturer string
	MPN          string
	PN           string
	Notes        string

	Qty         float64  // additional items only; 0 means 1
	Unit        string   // additional items only
	Designators []string // additional items only; otherwise the source ref
}

// Source is anything that contributes parts, identified by a harness-unique ref.
type Source interface {
	Ref() string
	BOMParts() []Part
}

// Options configures an Aggregator.
type Options struct {
	LengthMode LengthMode
	LengthUnit units.Unit
}

// Entry is one aggregated BOM line.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	Designator   string    `json:"designator"`
	Category     Category  `json:"category"`
	Description  string    `json:"description"`
	Qty          float64   `json:"qty"`
	Unit         string    `json:"unit,omitempty"`
	Designators  []string  `json:"designators"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	MPN          string    `json:"mpn,omitempty"`
	PN           string    `json:"pn,omitempty"`
	Notes        []string  `json:"notes,omitempty"`

	key string
}

// namespace seeds the UUIDv5 of every entry key.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/harnessviz/bom"))

// Aggregator collects parts into entries. It is single-use: after Finalize
// every call fails with AGGREGATOR_STATE_ERROR.
type Aggregator struct {
	opts      Options
	seen      map[string]bool
	groups    map[string]*Entry
	order     []*Entry
	finalized bool
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts Options) *Aggregator {
	if opts.LengthMode == "" {
		opts.LengthMode = Bucket
	}
	if opts.LengthUnit == "" {
		opts.LengthUnit = units.Meter
	}
	return &Aggregator{
		opts:   opts,
		seen:   make(map[string]bool),
		groups: make(map[string]*Entry),
	}
}

// ParseLengthMode validates a length mode setting. Empty means bucket.
func ParseLengthMode(s string) (LengthMode, error) {
	switch LengthMode(s) {
	case "", Bucket:
		return Bucket, nil
	case Sum:
		return Sum, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid length mode %q (must be bucket or sum)", s)
}

// Add records the parts of src. Adding the same ref twice is a no-op.
func (a *Aggregator) Add(src Source) error {
	if a.finalized {
		return errors.AggregatorState("add %s: aggregator already finalized", src.Ref())
	}
	if a.seen[src.Ref()] {
		return nil
	}
	parts := src.BOMParts()
	lines := make([]line, len(parts))
	for i, p := range parts {
		l, err := a.measure(p)
		if err != nil {
			return errors.WithEntity(err, src.Ref())
		}
		lines[i] = l
	}
	a.seen[src.Ref()] = true
	for i, p := range parts {
		a.record(p, lines[i], []string{src.Ref()})
	}
	return nil
}

// AddItem records an additional BOM item.
func (a *Aggregator) AddItem(p Part) error {
	if a.finalized {
		return errors.AggregatorState("add item %q: aggregator already finalized", p.Description)
	}
	if p.Description == "" {
		return errors.Schema("", "additional BOM item has no description")
	}
	p.Category = Item
	l, err := a.measure(p)
	if err != nil {
		return err
	}
	a.record(p, l, p.Designators)
	return nil
}

// Finalize returns the entries ordered by category, then first appearance.
func (a *Aggregator) Finalize() ([]Entry, error) {
	if a.finalized {
		return nil, errors.AggregatorState("aggregator already finalized")
	}
	a.finalized = true
	return finish(a.order), nil
}

// line is the quantity a part contributes and the length left in its key.
type line struct {
	qty    float64
	unit   string
	length units.Quantity
}

func (a *Aggregator) measure(p Part) (line, error) {
	l := line{qty: 1, length: p.Length}
	switch {
	case p.Category == Item:
		if p.Qty > 0 {
			l.qty = p.Qty
		}
		l.unit = p.Unit
	case a.opts.LengthMode == Sum && !p.Length.IsZero():
		c, err := units.ConvertLength(p.Length, a.opts.LengthUnit)
		if err != nil {
			return line{}, err
		}
		l = line{qty: c.Value, unit: string(c.Unit)}
	}
	return l, nil
}

func (a *Aggregator) record(p Part, l line, refs []string) {
	qty, unit, length := l.qty, l.unit, l.length
	key := partKey(p, length, unit)
	e, ok := a.groups[key]
	if !ok {
		e = &Entry{
			Category:     p.Category,
			Description:  describe(p, length),
			Unit:         unit,
			Manufacturer: p.Manufacturer,
			MPN:          p.MPN,
			PN:           p.PN,
			key:          key,
		}
		a.groups[key] = e
		a.order = append(a.order, e)
	}
	e.Qty += qty
	for _, r := range refs {
		if !slices.Contains(e.Designators, r) {
			e.Designators = append(e.Designators, r)
		}
	}
	if p.Notes != "" && !slices.Contains(e.Notes, p.Notes) {
		e.Notes = append(e.Notes, p.Notes)
	}
}

// finish sorts entries, numbers them per category and assigns IDs.
func finish(in []*Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = *e
		out[i].Designators = slices.Clone(e.Designators)
		out[i].Notes = slices.Clone(e.Notes)
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return a.Category.rank() - b.Category.rank()
	})
	counters := make(map[Category]int)
	for i := range out {
		counters[out[i].Category]++
		out[i].Designator = string(out[i].Category) + strconv.Itoa(counters[out[i].Category])
		out[i].ID = uuid.NewSHA1(namespace, []byte(out[i].key))
	}
	return out
}

// partKey lists every field that distinguishes two purchasable parts.
// Notes are not part of the key.
func partKey(p Part, length units.Quantity, unit string) string {
	fields := []string{
		string(p.Category),
		p.Description,
		p.Type,
		p.Subtype,
		strconv.Itoa(p.PinCount),
		strconv.Itoa(p.WireCount),
		p.Gauge.Key(),
		strconv.FormatBool(p.Shield),
		p.Colors,
		length.Key(),
		unit,
		p.Manufacturer,
		p.MPN,
		p.PN,
	}
	return strings.Join(fields, "\x1f")
}

func describe(p Part, length units.Quantity) string {
	if p.Description != "" {
		return p.Description
	}
	var parts []string
	switch p.Category {
	case Connector:
		parts = append(parts, "Connector")
		parts = appendNonEmpty(parts, p.Type, p.Subtype)
		if p.PinCount > 0 {
			parts = append(parts, pluralize(p.PinCount, "pin"))
		}
	case Cable:
		parts = append(parts, "Cable")
		parts = appendNonEmpty(parts, p.Type)
		size := strconv.Itoa(p.WireCount)
		if !p.Gauge.IsZero() {
			size += " x " + p.Gauge.String()
		}
		if p.Shield {
			size += " shielded"
		}
		parts = append(parts, size)
		parts = appendNonEmpty(parts, p.Colors)
	case Wire:
		parts = append(parts, "Wire")
		parts = appendNonEmpty(parts, p.Type)
		if !p.Gauge.IsZero() {
			parts = append(parts, p.Gauge.String())
		}
		parts = appendNonEmpty(parts, p.Colors)
	}
	if !length.IsZero() {
		parts = append(parts, length.String())
	}
	return strings.Join(parts, ", ")
}

func appendNonEmpty(dst []string, vs ...string) []string {
	for _, v := range vs {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
