// Package document loads harness definitions from YAML.
//
// A document has the sections metadata, options, connectors, cables,
// connections and additional_bom_items. Connectors and cables keep their
// declaration order. Each entry of a connection set is one of
//
//   - W1              # implicit: natural order of pins or wires
//   - X1: 5           # scalar: broadcast to every position of the set
//   - X1: [5, 2, 3]   # explicit list
//   - X1: 1-4         # range, expanded to [1, 2, 3, 4]
//
// A YAML stream with several documents yields one [Document] per document.
// Decoding never looks at references between sections; that is done when
// the harness is built.
package document
