package harness

import (
	"strconv"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/bom"
	"github.com/matzehuels/harnessviz/pkg/colors"
	"github.com/matzehuels/harnessviz/pkg/units"
)

// ShieldDesignator addresses the shield conductor of a cable.
const ShieldDesignator = "s"

// Kind distinguishes connectors from cables.
type Kind int

const (
	KindConnector Kind = iota
	KindCable
)

func (k Kind) String() string {
	if k == KindCable {
		return "cable"
	}
	return "connector"
}

// Entity is a connector or cable addressable from connection rows.
type Entity interface {
	bom.Source
	Kind() Kind
	// Size is the number of natural positions: pins or wires, never the shield.
	Size() int
	// Position resolves a designator to its 1-based position, or 0 for a shield.
	Position(designator string) (Position, bool)
}

// Position is one resolved pin or wire.
type Position struct {
	Index int    // 1-based; 0 for the shield
	ID    string // canonical designator
}

// Pin is a connector contact.
type Pin struct {
	Index int               `json:"index"`
	ID    string            `json:"id"`
	Label string            `json:"label,omitempty"`
	Color colors.Multicolor `json:"color,omitempty"`
}

// Connector is a component with an ordered set of pins.
type Connector struct {
	ID               string
	Type             string
	Subtype          string
	Pins             []Pin
	HideDisconnected bool
	Parts

	byID    map[string]int
	byLabel map[string]int
}

// Parts holds the purchasing fields shared by connectors and cables.
type Parts struct {
	Manufacturer string
	MPN          string
	PN           string
	Notes        string
}

func (c *Connector) Ref() string { return c.ID }
func (c *Connector) Kind() Kind  { return KindConnector }
func (c *Connector) Size() int   { return len(c.Pins) }

// Pin resolves a designator by pin ID, then by label.
func (c *Connector) Pin(designator string) (Pin, bool) {
	if i, ok := c.byID[designator]; ok {
		return c.Pins[i], true
	}
	if i, ok := c.byLabel[designator]; ok {
		return c.Pins[i], true
	}
	return Pin{}, false
}

func (c *Connector) Position(designator string) (Position, bool) {
	p, ok := c.Pin(designator)
	if !ok {
		return Position{}, false
	}
	return Position{Index: p.Index, ID: p.ID}, true
}

func (c *Connector) BOMParts() []bom.Part {
	return []bom.Part{{
		Category:     bom.Connector,
		Type:         c.Type,
		Subtype:      c.Subtype,
		PinCount:     len(c.Pins),
		Manufacturer: c.Manufacturer,
		MPN:          c.MPN,
		PN:           c.PN,
		Notes:        c.Notes,
	}}
}

// Wire is one conductor of a cable, or its shield.
type Wire struct {
	Index  int               `json:"index"` // 1-based; 0 for the shield
	ID     string            `json:"id"`
	Label  string            `json:"label,omitempty"`
	Color  colors.Multicolor `json:"color,omitempty"`
	Shield bool              `json:"shield,omitempty"`
}

// Cable is a set of conductors with shared gauge and length.
type Cable struct {
	ID        string
	Type      string
	Category  string
	Wires     []Wire
	Shield    *Wire
	Gauge     units.Quantity
	ShowEquiv bool
	// GaugeLabel is the gauge as shown on diagrams, with its equivalent when ShowEquiv.
	GaugeLabel string
	Length     units.Quantity
	// ColorCode names the standard the wire colors came from, if any.
	ColorCode string
	Parts

	byLabel map[string]int
}

// Bundle is the category of cables whose wires are purchased individually.
const Bundle = "bundle"

func (c *Cable) Ref() string    { return c.ID }
func (c *Cable) Kind() Kind     { return KindCable }
func (c *Cable) Size() int      { return len(c.Wires) }
func (c *Cable) IsBundle() bool { return c.Category == Bundle }

// Wire resolves a designator: 1-based index, wire label, or "s" for the shield.
func (c *Cable) Wire(designator string) (Wire, bool) {
	if designator == ShieldDesignator && c.Shield != nil {
		return *c.Shield, true
	}
	if n, err := strconv.Atoi(designator); err == nil && n >= 1 && n <= len(c.Wires) {
		return c.Wires[n-1], true
	}
	if i, ok := c.byLabel[designator]; ok {
		return c.Wires[i], true
	}
	return Wire{}, false
}

func (c *Cable) Position(designator string) (Position, bool) {
	w, ok := c.Wire(designator)
	if !ok {
		return Position{}, false
	}
	return Position{Index: w.Index, ID: w.ID}, true
}

// ColorSummary names the standard, or lists the explicit wire colors.
func (c *Cable) ColorSummary() string {
	if c.ColorCode != "" {
		return c.ColorCode
	}
	cols := make([]string, 0, len(c.Wires))
	for _, w := range c.Wires {
		if !w.Color.IsZero() {
			cols = append(cols, w.Color.String())
		}
	}
	return strings.Join(cols, ", ")
}

func (c *Cable) BOMParts() []bom.Part {
	if !c.IsBundle() {
		return []bom.Part{{
			Category:     bom.Cable,
			Type:         c.Type,
			WireCount:    len(c.Wires),
			Gauge:        c.Gauge,
			Shield:       c.Shield != nil,
			Colors:       c.ColorSummary(),
			Length:       c.Length,
			Manufacturer: c.Manufacturer,
			MPN:          c.MPN,
			PN:           c.PN,
			Notes:        c.Notes,
		}}
	}
	parts := make([]bom.Part, len(c.Wires))
	for i, w := range c.Wires {
		parts[i] = bom.Part{
			Category:     bom.Wire,
			Type:         c.Type,
			Gauge:        c.Gauge,
			Colors:       w.Color.Title(),
			Length:       c.Length,
			Manufacturer: c.Manufacturer,
			MPN:          c.MPN,
			PN:           c.PN,
			Notes:        c.Notes,
		}
	}
	return parts
}

// Item is an additional BOM line declared by the document.
type Item struct {
	Description string
	Qty         float64
	Unit        string
	Designators []string
	Parts
}

// BOMPart converts the item for bom.Aggregator.AddItem.
func (it Item) BOMPart() bom.Part {
	return bom.Part{
		Category:     bom.Item,
		Description:  it.Description,
		Qty:          it.Qty,
		Unit:         it.Unit,
		Designators:  it.Designators,
		Manufacturer: it.Manufacturer,
		MPN:          it.MPN,
		PN:           it.PN,
		Notes:        it.Notes,
	}
}
