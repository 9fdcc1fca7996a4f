// Package harness holds the entity model of one wiring harness.
//
// A [Harness] owns its connectors, cables, connection rows, resolved links
// and finalized BOM. [New] turns a parsed document into a harness: it
// validates every connector and cable, expands color codes, normalizes
// gauges and lengths, creates template instances and checks that every
// connection row refers to a known entity. Rows are resolved into links by
// package resolve and attached with [Harness.Connect].
//
// # Designators
//
// Connector pins resolve by pin ID first, then by pin label. Cable wires
// resolve by 1-based index, then by wire label; "s" addresses the shield.
//
// # Templates
//
// A row ref "T.X5" creates an instance X5 of the declared component T, and
// "T." creates an instance with a generated name (__T_1, __T_2, …). The
// separator is configurable. A declared component that is only referenced
// through such refs acts purely as a template and is not itself part of the
// harness.
package harness
