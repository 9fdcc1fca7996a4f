// Package resolve turns connection rows into pin-level links.
//
// A row lists connectors and cables in alternating order, each with its
// designators in one of three forms (see package document): implicit,
// scalar or an explicit list. Resolution runs in four steps:
//
//  1. Span. When any entry carries designators, the span is the length of
//     the longest explicit list; every other list longer than one must
//     match it. When no entry does, every entity must have the same number
//     of natural positions (pins or wires) and that number is the span.
//  2. Materialize. Each entry becomes a list of exactly span positions.
//     Scalars and one-element lists are broadcast; implicit entries take
//     their first span pins or wires in order. A component list names one
//     single-pin connector per position instead of pins on one connector.
//  3. Validate. Every designator must exist on its entity, and within one
//     entry a position may appear only once unless it is broadcast.
//  4. Chain. For every position and every cable in the row one link is
//     produced, running from the pin of the connector to the cable's left
//     (if any) through the wire to the pin of the connector to its right
//     (if any). Identical links collapse, so a fully broadcast row yields
//     a single link.
//
// Errors are RESOLUTION_ERROR values carrying the row index and entity.
// A failing row contributes no links.
package resolve
