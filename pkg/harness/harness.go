package harness

import (
	"slices"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/units"
)

// Options control how a document becomes a harness.
type Options struct {
	Gauges            *units.Registry
	LengthUnit        units.Unit
	TemplateSeparator string
	ShowEquiv         bool
}

func (o *Options) setDefaults() {
	if o.Gauges == nil {
		o.Gauges = units.NewRegistry(units.MatchExact)
	}
	if o.LengthUnit == "" {
		o.LengthUnit = units.Meter
	}
	if o.TemplateSeparator == "" {
		o.TemplateSeparator = "."
	}
}

// Harness owns every entity, row and link of one harness document.
type Harness struct {
	Name       string
	Metadata   document.Metadata
	Connectors []*Connector
	Cables     []*Cable
	Rows       []Row
	Items      []Item
	Options    Options

	entities map[string]Entity
	links    []Link
	bom      []bom.Entry
}

// Entity returns the connector or cable with the given ID.
func (h *Harness) Entity(id string) (Entity, bool) {
	e, ok := h.entities[id]
	return e, ok
}

// Connector returns the connector with the given ID.
func (h *Harness) Connector(id string) (*Connector, bool) {
	c, ok := h.entities[id].(*Connector)
	return c, ok
}

// Cable returns the cable with the given ID.
func (h *Harness) Cable(id string) (*Cable, bool) {
	c, ok := h.entities[id].(*Cable)
	return c, ok
}

// Connect appends resolved links. Every endpoint must name an entity of h.
func (h *Harness) Connect(links ...Link) error {
	for _, l := range links {
		for _, ep := range []*Endpoint{l.From, &l.Via, l.To} {
			if ep == nil {
				continue
			}
			if _, ok := h.entities[ep.Entity]; !ok {
				return errors.Resolution(l.Row, ep.Entity, "link references unknown entity")
			}
		}
		if _, ok := h.Cable(l.Via.Entity); !ok {
			return errors.Resolution(l.Row, l.Via.Entity, "link must run through a cable")
		}
	}
	h.links = append(h.links, links...)
	return nil
}

// Links returns the resolved links in creation order.
func (h *Harness) Links() []Link {
	return slices.Clone(h.links)
}

// Connected reports whether any link ends on the given connector pin.
func (h *Harness) Connected(connector, pinID string) bool {
	for _, l := range h.links {
		for _, ep := range []*Endpoint{l.From, l.To} {
			if ep != nil && ep.Entity == connector && ep.Designator == pinID {
				return true
			}
		}
	}
	return false
}

// SetBOM stores the finalized BOM. It may be set once.
func (h *Harness) SetBOM(entries []bom.Entry) error {
	if h.bom != nil {
		return errors.AggregatorState("harness %s already has a BOM", h.Name)
	}
	h.bom = slices.Clone(entries)
	if h.bom == nil {
		h.bom = []bom.Entry{}
	}
	return nil
}

// BOM returns the finalized BOM, or nil before SetBOM.
func (h *Harness) BOM() []bom.Entry {
	return slices.Clone(h.bom)
}

// Sources returns every BOM source in declaration order.
func (h *Harness) Sources() []bom.Source {
	out := make([]bom.Source, 0, len(h.Connectors)+len(h.Cables))
	for _, c := range h.Connectors {
		out = append(out, c)
	}
	for _, c := range h.Cables {
		out = append(out, c)
	}
	return out
}
