package graph

// =============================================================================
// Constants
// =============================================================================

// Node kinds.
const (
	KindConnector = "connector"
	KindCable     = "cable"
)

// ShieldPort is the port index of a cable shield.
const ShieldPort = 0

// =============================================================================
// Graph - Harness Diagram Description
// =============================================================================

// Graph is the language-neutral description of a harness diagram.
// Nodes come in declaration order (connectors, then cables) and edges in
// link order, so the same harness always yields the same graph.
type Graph struct {
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// =============================================================================
// Node - Connector or Cable
// =============================================================================

// Node is one connector or cable.
type Node struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Attributes []string `json:"attributes,omitempty"` // header lines: type, size, gauge, …
	Ports      []Port   `json:"ports"`
	Notes      string   `json:"notes,omitempty"`
}

// IsCable returns true if the node is a cable.
func (n *Node) IsCable() bool { return n.Kind == KindCable }

// Port returns the port with the given index.
func (n *Node) Port(index int) (*Port, bool) {
	for i := range n.Ports {
		if n.Ports[i].Index == index {
			return &n.Ports[i], true
		}
	}
	return nil, false
}

// Port is a connector pin or a cable wire.
type Port struct {
	Index  int      `json:"index"` // 1-based; ShieldPort for a shield
	ID     string   `json:"id"`
	Label  string   `json:"label,omitempty"`
	Color  string   `json:"color,omitempty"` // formatted for display
	Hexes  []string `json:"hexes,omitempty"`
	Shield bool     `json:"shield,omitempty"`

	// Cable ports list the endpoints attached on either side.
	Left  []string `json:"left,omitempty"`
	Right []string `json:"right,omitempty"`
}

// =============================================================================
// Edge - Resolved Link
// =============================================================================

// Ref addresses one port of a node. Designator is the pin or wire
// designator the port was resolved from.
type Ref struct {
	Node       string `json:"node"`
	Port       int    `json:"port"`
	Designator string `json:"designator,omitempty"`
}

// Edge is one resolved link: a wire and the pins at its ends, labelled with
// the wire's color, gauge and length.
type Edge struct {
	Row    int      `json:"row"`
	From   *Ref     `json:"from,omitempty"`
	Via    Ref      `json:"via"`
	To     *Ref     `json:"to,omitempty"`
	Color  string   `json:"color,omitempty"`
	Hexes  []string `json:"hexes,omitempty"`
	Gauge  string   `json:"gauge,omitempty"`
	Length string   `json:"length,omitempty"`
}
