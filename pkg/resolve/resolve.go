package resolve

import (
	"strconv"

	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/harness"
)

// column is one row entry materialized to the row's span. refs holds the
// entity of each position for a component list.
type column struct {
	ref       string
	refs      []string
	entity    harness.Entity
	positions []harness.Position
}

// Row resolves one connection row into links. index is the row's 0-based
// position in the harness and is carried by every link and error. On error
// no links are returned.
func Row(h *harness.Harness, index int, row harness.Row) ([]harness.Link, error) {
	if len(row) == 0 {
		return nil, nil
	}
	entities, err := lookup(h, index, row)
	if err != nil {
		return nil, err
	}
	n, err := span(index, row, entities)
	if err != nil {
		return nil, err
	}
	cols := make([]column, len(row))
	for i, e := range row {
		if len(e.Components) > 0 {
			cols[i], err = materializeComponents(h, index, e, entities[i], n)
		} else {
			cols[i], err = materialize(index, e, entities[i], n)
		}
		if err != nil {
			return nil, err
		}
	}
	return chain(index, cols, n), nil
}

// All resolves every row of h in order and stops at the first failure.
func All(h *harness.Harness) ([]harness.Link, error) {
	var links []harness.Link
	for i, row := range h.Rows {
		ls, err := Row(h, i, row)
		if err != nil {
			return nil, err
		}
		links = append(links, ls...)
	}
	return links, nil
}

// Apply resolves every row of h and attaches the links to it.
func Apply(h *harness.Harness) error {
	links, err := All(h)
	if err != nil {
		return err
	}
	return h.Connect(links...)
}

// lookup finds each referenced entity and checks that connectors and
// cables alternate.
// A component list stands for its first component, and all of its
// components must be single-pin connectors.
func lookup(h *harness.Harness, index int, row harness.Row) ([]harness.Entity, error) {
	out := make([]harness.Entity, len(row))
	for i, e := range row {
		ent, err := lookupEntry(h, index, e)
		if err != nil {
			return nil, err
		}
		if i > 0 && ent.Kind() == out[i-1].Kind() {
			return nil, errors.Resolution(index, name(e), "expected a %s after %s, got a %s",
				other(ent.Kind()), name(row[i-1]), ent.Kind())
		}
		out[i] = ent
	}
	return out, nil
}

func lookupEntry(h *harness.Harness, index int, e harness.RowEntry) (harness.Entity, error) {
	if len(e.Components) == 0 {
		ent, ok := h.Entity(e.Ref)
		if !ok {
			return nil, errors.Resolution(index, e.Ref, "unknown connector or cable")
		}
		return ent, nil
	}
	var first harness.Entity
	for _, ref := range e.Components {
		ent, ok := h.Entity(ref)
		if !ok {
			return nil, errors.Resolution(index, ref, "unknown connector")
		}
		if ent.Kind() != harness.KindConnector || ent.Size() != 1 {
			return nil, errors.Resolution(index, ref, "component lists take single-pin connectors only")
		}
		if first == nil {
			first = ent
		}
	}
	return first, nil
}

// name identifies an entry in errors.
func name(e harness.RowEntry) string {
	if len(e.Components) > 0 {
		return e.Components[0]
	}
	return e.Ref
}

func other(k harness.Kind) harness.Kind {
	if k == harness.KindCable {
		return harness.KindConnector
	}
	return harness.KindCable
}

// span returns the number of parallel connections in the row.
func span(index int, row harness.Row, entities []harness.Entity) (int, error) {
	n, sized := 1, false
	for _, e := range row {
		l := length(e)
		if l == 0 {
			continue
		}
		sized = true
		if l > n {
			n = l
		}
	}
	if sized {
		for _, e := range row {
			if e.Designators.Kind == document.Explicit || len(e.Components) > 0 {
				if l := length(e); l > 1 && l != n {
					return 0, errors.Resolution(index, name(e), "%d %s given, row spans %d", l, given(e), n)
				}
			}
		}
		return n, nil
	}

	n = entities[0].Size()
	for i, ent := range entities[1:] {
		if ent.Size() != n {
			return 0, errors.Resolution(index, row[i+1].Ref,
				"cannot auto-route: %s has %d positions, %s has %d", row[0].Ref, n, row[i+1].Ref, ent.Size())
		}
	}
	return n, nil
}

// length is the number of positions an entry spells out, 0 for implicit.
func length(e harness.RowEntry) int {
	if len(e.Components) > 0 {
		return len(e.Components)
	}
	return e.Designators.Len()
}

func given(e harness.RowEntry) string {
	if len(e.Components) > 0 {
		return "components"
	}
	return "designators"
}

// materializeComponents places one component on each position, using its
// only pin. A single component is broadcast.
func materializeComponents(h *harness.Harness, index int, e harness.RowEntry, ent harness.Entity, n int) (column, error) {
	col := column{entity: ent, refs: make([]string, n), positions: make([]harness.Position, n)}
	seen := make(map[string]bool, n)
	for i := range n {
		ref := e.Components[0]
		if len(e.Components) > 1 {
			ref = e.Components[i]
			if seen[ref] {
				return col, errors.Resolution(index, ref, "component used twice in one row")
			}
			seen[ref] = true
		}
		c, _ := h.Connector(ref)
		col.refs[i] = ref
		col.positions[i] = harness.Position{Index: c.Pins[0].Index, ID: c.Pins[0].ID}
	}
	return col, nil
}

// materialize expands an entry to exactly n resolved positions.
func materialize(index int, e harness.RowEntry, ent harness.Entity, n int) (column, error) {
	col := column{ref: e.Ref, entity: ent, positions: make([]harness.Position, n)}

	var designators []string
	broadcast := false
	switch d := e.Designators; {
	case d.Kind == document.Implicit:
		if ent.Size() < n {
			return col, errors.Resolution(index, e.Ref, "%d positions needed, %s has %d", n, ent.Kind(), ent.Size())
		}
		designators = natural(ent, n)
	case d.Len() == 1:
		broadcast = true
		designators = make([]string, n)
		for i := range designators {
			designators[i] = d.Values[0]
		}
	default:
		designators = d.Values
	}

	seen := make(map[int]string, n)
	for i, d := range designators {
		if err := errors.ValidateDesignator(e.Ref, d); err != nil {
			return col, errors.Resolution(index, e.Ref, "%s", errors.UserMessage(err))
		}
		pos, ok := ent.Position(d)
		if !ok {
			return col, errors.Resolution(index, e.Ref, "unknown %s %q", positionNoun(ent), d)
		}
		if !broadcast {
			if prev, dup := seen[pos.Index]; dup {
				return col, errors.Resolution(index, e.Ref, "%s %q used twice in one row (as %q and %q)", positionNoun(ent), pos.ID, prev, d)
			}
			seen[pos.Index] = d
		}
		col.positions[i] = pos
	}
	return col, nil
}

// natural lists the first n designators of ent in their natural order.
func natural(ent harness.Entity, n int) []string {
	out := make([]string, n)
	if c, ok := ent.(*harness.Connector); ok {
		for i := range out {
			out[i] = c.Pins[i].ID
		}
		return out
	}
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func positionNoun(ent harness.Entity) string {
	if ent.Kind() == harness.KindCable {
		return "wire"
	}
	return "pin"
}

// chain builds one link per cable and position, joining the pins of the
// neighbouring connectors. Identical links are kept once.
func chain(index int, cols []column, n int) []harness.Link {
	var links []harness.Link
	for i := range n {
		for j, col := range cols {
			if col.entity.Kind() != harness.KindCable {
				continue
			}
			l := harness.Link{Row: index, Via: endpoint(col, i)}
			if j > 0 {
				ep := endpoint(cols[j-1], i)
				l.From = &ep
			}
			if j+1 < len(cols) {
				ep := endpoint(cols[j+1], i)
				l.To = &ep
			}
			if !contains(links, l) {
				links = append(links, l)
			}
		}
	}
	return links
}

func endpoint(col column, i int) harness.Endpoint {
	p := col.positions[i]
	ref := col.ref
	if col.refs != nil {
		ref = col.refs[i]
	}
	return harness.Endpoint{Entity: ref, Designator: p.ID, Index: p.Index}
}

func contains(links []harness.Link, l harness.Link) bool {
	for _, o := range links {
		if o.Equal(l) {
			return true
		}
	}
	return false
}
