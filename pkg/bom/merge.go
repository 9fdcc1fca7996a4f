package bom

import "slices"

// Named is the finalized BOM of one harness.
type Named struct {
	Name    string
	Entries []Entry
}

// SharedEntry is an entry of the BOM shared by several harnesses.
type SharedEntry struct {
	Entry
	Harnesses []string `json:"harnesses"`
}

// Merge combines finalized BOMs into a shared BOM. Entries with the same
// key are summed; designators are prefixed with "<harness>/". The result is
// ordered by category, then by first appearance in harness order.
func Merge(boms ...Named) []SharedEntry {
	groups := make(map[string]*Entry)
	owners := make(map[string][]string)
	var order []*Entry

	for _, b := range boms {
		for _, e := range b.Entries {
			g, ok := groups[e.key]
			if !ok {
				c := e
				c.Qty = 0
				c.Designators = nil
				c.Notes = nil
				g = &c
				groups[e.key] = g
				order = append(order, g)
			}
			g.Qty += e.Qty
			for _, d := range e.Designators {
				g.Designators = append(g.Designators, b.Name+"/"+d)
			}
			for _, n := range e.Notes {
				if !slices.Contains(g.Notes, n) {
					g.Notes = append(g.Notes, n)
				}
			}
			if !slices.Contains(owners[e.key], b.Name) {
				owners[e.key] = append(owners[e.key], b.Name)
			}
		}
	}

	entries := finish(order)
	out := make([]SharedEntry, len(entries))
	for i, e := range entries {
		out[i] = SharedEntry{Entry: e, Harnesses: owners[e.key]}
	}
	return out
}

// Entries returns the plain entries of a shared BOM.
func Entries(shared []SharedEntry) []Entry {
	out := make([]Entry, len(shared))
	for i, s := range shared {
		out[i] = s.Entry
	}
	return out
}
