// Package graph describes harness diagrams independently of any renderer.
//
// [Emit] projects a resolved harness onto a [Graph]: one [Node] per
// connector and cable, one [Edge] per link. Nodes carry their attribute
// lines and ports (pins, wires, shield); cable ports also list the
// endpoints attached on either side. Edges carry the wire colors as hex
// values.
//
// The graph is plain data. Package render/dot turns it into Graphviz DOT,
// and [Marshal] into JSON:
//
//	{
//	  "name": "demo",
//	  "nodes": [{"id": "X1", "kind": "connector", "ports": [...]}],
//	  "edges": [{"row": 0, "from": {"node": "X1", "port": 5}, "via": {"node": "W1", "port": 1}}]
//	}
//
// Emit is a pure function of the harness: the same harness always yields
// the same graph.
package graph
