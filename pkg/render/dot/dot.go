package dot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	FontName string // default "arial"
	BgColor  string // default "#ffffff"
}

func (o *Options) setDefaults() {
	if o.FontName == "" {
		o.FontName = "arial"
	}
	if o.BgColor == "" {
		o.BgColor = "#ffffff"
	}
}

// Wire drawing constants.
const (
	outline    = "#000000"
	noColor    = "#ffffff"
	shieldHex  = "#808080"
	wireHeight = 6
)

// ToDOT converts a harness graph to an undirected Graphviz DOT document.
// Connectors and cables are drawn as HTML-table nodes whose cells carry
// ports, and each edge ties a pin port to a wire port. The output depends
// only on g and opts.
func ToDOT(g *graph.Graph, opts Options) string {
	opts.setDefaults()

	var b strings.Builder
	fmt.Fprintf(&b, "graph %q {\n", g.Name)
	fmt.Fprintf(&b, "  graph [rankdir=LR, ranksep=2, nodesep=0.33, bgcolor=%q, fontname=%q];\n", opts.BgColor, opts.FontName)
	fmt.Fprintf(&b, "  node [shape=none, width=0, height=0, margin=0, style=filled, fillcolor=%q, fontname=%q];\n", opts.BgColor, opts.FontName)
	fmt.Fprintf(&b, "  edge [style=bold, fontname=%q];\n", opts.FontName)
	b.WriteString("\n")

	for i := range g.Nodes {
		n := &g.Nodes[i]
		label := connectorLabel(n)
		if n.IsCable() {
			label = cableLabel(n)
		}
		fmt.Fprintf(&b, "  %q [label=<%s>];\n", n.ID, label)
	}

	if len(g.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range g.Edges {
		attrs := edgeAttrs(e)
		via := wirePort(e.Via.Port)
		if e.From != nil {
			fmt.Fprintf(&b, "  %q:%q:e -- %q:%q:w [%s];\n", e.From.Node, pinPort(e.From.Port, "r"), e.Via.Node, via, attrs)
		}
		if e.To != nil {
			fmt.Fprintf(&b, "  %q:%q:e -- %q:%q:w [%s];\n", e.Via.Node, via, e.To.Node, pinPort(e.To.Port, "l"), attrs)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// =============================================================================
// Ports
// =============================================================================

func pinPort(index int, side string) string {
	return "p" + strconv.Itoa(index) + side
}

func wirePort(index int) string {
	if index == graph.ShieldPort {
		return "ws"
	}
	return "w" + strconv.Itoa(index)
}

// =============================================================================
// Labels
// =============================================================================

const tableOpen = `<table border="0" cellspacing="0" cellpadding="3" cellborder="1">`

func connectorLabel(n *graph.Node) string {
	var b strings.Builder
	b.WriteString(tableOpen)
	header(&b, n)
	for _, p := range n.Ports {
		mid := esc(joinNonEmpty(" ", p.Label, p.Color))
		id := esc(p.ID)
		fmt.Fprintf(&b, `<tr><td port="%s">%s</td><td>%s</td><td port="%s">%s</td></tr>`,
			pinPort(p.Index, "l"), id, mid, pinPort(p.Index, "r"), id)
	}
	notes(&b, n)
	b.WriteString("</table>")
	return b.String()
}

func cableLabel(n *graph.Node) string {
	var b strings.Builder
	b.WriteString(`<table border="0" cellspacing="0" cellpadding="3" cellborder="0">`)
	header(&b, n)
	b.WriteString(`<tr><td colspan="3"> </td></tr>`)
	for _, p := range n.Ports {
		name := p.ID
		if p.Label != "" && p.Label != p.ID {
			name += " " + p.Label
		}
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
			esc(strings.Join(p.Left, ", ")), esc(joinNonEmpty(":", name, p.Color)), esc(strings.Join(p.Right, ", ")))
		fmt.Fprintf(&b, `<tr><td colspan="3" port="%s" cellpadding="0" height="%d">%s</td></tr>`,
			wirePort(p.Index), wireHeight, wireBar(p))
	}
	b.WriteString(`<tr><td colspan="3"> </td></tr>`)
	notes(&b, n)
	b.WriteString("</table>")
	return b.String()
}

func header(b *strings.Builder, n *graph.Node) {
	border := ""
	if n.IsCable() {
		border = ` border="1"`
	}
	fmt.Fprintf(b, `<tr><td colspan="3"%s><b>%s</b></td></tr>`, border, esc(n.ID))
	if len(n.Attributes) > 0 {
		fmt.Fprintf(b, `<tr><td colspan="3"%s>%s</td></tr>`, border, esc(strings.Join(n.Attributes, " | ")))
	}
}

func notes(b *strings.Builder, n *graph.Node) {
	if n.Notes == "" {
		return
	}
	fmt.Fprintf(b, `<tr><td colspan="3" align="left">%s</td></tr>`, esc(n.Notes))
}

// wireBar draws a wire as a stack of colored stripes between two outline
// stripes. A shield is a single grey stripe.
func wireBar(p graph.Port) string {
	hexes := p.Hexes
	switch {
	case p.Shield:
		hexes = []string{shieldHex}
	case len(hexes) == 0:
		hexes = []string{noColor}
	}
	var b strings.Builder
	b.WriteString(`<table border="0" cellspacing="0" cellborder="0">`)
	fmt.Fprintf(&b, `<tr><td bgcolor="%s" height="1"></td></tr>`, outline)
	for _, h := range hexes {
		fmt.Fprintf(&b, `<tr><td bgcolor="%s" height="%d"></td></tr>`, h, max(1, wireHeight/len(hexes)))
	}
	fmt.Fprintf(&b, `<tr><td bgcolor="%s" height="1"></td></tr>`, outline)
	b.WriteString("</table>")
	return b.String()
}

// =============================================================================
// Edges
// =============================================================================

// edgeAttrs draws the wire color between two outline strands. Shield
// connections carry no color and are dashed.
func edgeAttrs(e graph.Edge) string {
	if e.Via.Port == graph.ShieldPort {
		return fmt.Sprintf("color=%q, style=dashed", outline)
	}
	hexes := e.Hexes
	if len(hexes) == 0 {
		hexes = []string{noColor}
	}
	strands := append([]string{outline}, hexes...)
	strands = append(strands, outline)
	return fmt.Sprintf("color=%q", strings.Join(strands, ":"))
}

func esc(s string) string {
	return html.EscapeString(s)
}

func joinNonEmpty(sep string, vs ...string) string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
