// Package bom aggregates harness parts into a bill of materials.
//
// Sources (connectors, cables, bundles) contribute [Part] values to an
// [Aggregator]. Parts that agree on every purchasable attribute collapse
// into one [Entry] whose quantity counts them. Notes are merged but never
// split an entry.
//
// In [Bucket] mode the cable length is part of the key, so two 0.2 m cables
// are one entry with qty 2 and a 0.5 m cable is another. In [Sum] mode the
// length leaves the key and qty becomes the total length.
//
// Finalize is one-shot. It orders entries by category (CONN, CABLE, WIRE,
// ITEM) and first appearance, numbers them per category (CONN1, CONN2, …)
// and derives a UUIDv5 from each key, so IDs are stable across runs.
//
// [Merge] combines the finalized BOMs of several harnesses.
package bom
