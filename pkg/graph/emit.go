package graph

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/matzehuels/harnessviz/pkg/colors"
	"github.com/matzehuels/harnessviz/pkg/harness"
)

// Options configures the projection.
type Options struct {
	// ColorMode selects how port colors are written.
	ColorMode colors.Mode
}

// Emit projects a harness onto a graph. It reads h only.
func Emit(h *harness.Harness, opts Options) *Graph {
	if opts.ColorMode == "" {
		opts.ColorMode = colors.ModeShort
	}
	links := h.Links()
	g := &Graph{
		Name:  h.Name,
		Nodes: make([]Node, 0, len(h.Connectors)+len(h.Cables)),
		Edges: make([]Edge, 0, len(links)),
	}
	for _, c := range h.Connectors {
		g.Nodes = append(g.Nodes, connectorNode(h, c, opts))
	}
	for _, c := range h.Cables {
		g.Nodes = append(g.Nodes, cableNode(c, links, opts))
	}
	for _, l := range links {
		g.Edges = append(g.Edges, edge(h, l, opts))
	}
	return g
}

// =============================================================================
// Nodes
// =============================================================================

func connectorNode(h *harness.Harness, c *harness.Connector, opts Options) Node {
	n := Node{ID: c.ID, Kind: KindConnector, Notes: c.Notes}
	n.Attributes = nonEmpty(c.Type, c.Subtype, strconv.Itoa(len(c.Pins))+"-pin")
	n.Attributes = append(n.Attributes, partLines(c.Parts)...)

	for _, p := range c.Pins {
		if c.HideDisconnected && !h.Connected(c.ID, p.ID) {
			continue
		}
		n.Ports = append(n.Ports, Port{
			Index: p.Index,
			ID:    p.ID,
			Label: p.Label,
			Color: p.Color.Format(opts.ColorMode),
			Hexes: p.Color.Hexes(),
		})
	}
	return n
}

func cableNode(c *harness.Cable, links []harness.Link, opts Options) Node {
	n := Node{ID: c.ID, Kind: KindCable, Notes: c.Notes}
	size := strconv.Itoa(len(c.Wires)) + "x"
	if c.Shield != nil {
		size += " + S"
	}
	attrs := []string{c.Type, size, c.GaugeLabel, c.Length.String(), c.ColorCode}
	if c.IsBundle() {
		attrs = append(attrs, "bundle")
	}
	n.Attributes = append(nonEmpty(attrs...), partLines(c.Parts)...)

	wires := c.Wires
	if c.Shield != nil {
		wires = append(slices.Clone(wires), *c.Shield)
	}
	for _, w := range wires {
		p := Port{
			Index:  w.Index,
			ID:     w.ID,
			Label:  w.Label,
			Color:  w.Color.Format(opts.ColorMode),
			Hexes:  w.Color.Hexes(),
			Shield: w.Shield,
		}
		for _, l := range links {
			if l.Via.Entity != c.ID || l.Via.Index != w.Index {
				continue
			}
			if l.From != nil && !slices.Contains(p.Left, l.From.String()) {
				p.Left = append(p.Left, l.From.String())
			}
			if l.To != nil && !slices.Contains(p.Right, l.To.String()) {
				p.Right = append(p.Right, l.To.String())
			}
		}
		n.Ports = append(n.Ports, p)
	}
	return n
}

func partLines(p harness.Parts) []string {
	var out []string
	if p.Manufacturer != "" {
		out = append(out, p.Manufacturer)
	}
	if p.MPN != "" {
		out = append(out, "MPN: "+p.MPN)
	}
	if p.PN != "" {
		out = append(out, "P/N: "+p.PN)
	}
	return out
}

func nonEmpty(vs ...string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// =============================================================================
// Edges
// =============================================================================

func edge(h *harness.Harness, l harness.Link, opts Options) Edge {
	e := Edge{Row: l.Row, Via: ref(l.Via)}
	if l.From != nil {
		from := ref(*l.From)
		e.From = &from
	}
	if l.To != nil {
		to := ref(*l.To)
		e.To = &to
	}
	if c, ok := h.Cable(l.Via.Entity); ok {
		e.Gauge = c.GaugeLabel
		e.Length = c.Length.String()
		if w, ok := c.Wire(l.Via.Designator); ok {
			e.Color = w.Color.Format(opts.ColorMode)
			e.Hexes = w.Color.Hexes()
		}
	}
	return e
}

func ref(ep harness.Endpoint) Ref {
	return Ref{Node: ep.Entity, Port: ep.Index, Designator: ep.Designator}
}

// String renders a ref as "node:port".
func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Node, r.Port)
}
