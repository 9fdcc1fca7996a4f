package harness

import (
	"fmt"

	"github.com/matzehuels/harnessviz/pkg/document"
)

// Endpoint addresses one pin of a connector or one wire of a cable.
type Endpoint struct {
	Entity     string `json:"entity"`
	Designator string `json:"designator"`
	Index      int    `json:"index"` // 1-based; 0 for a shield
}

func (e Endpoint) String() string { return e.Entity + ":" + e.Designator }

// Link is one resolved conductor path: a wire with the pins at either end.
// From and To are nil where the row starts or ends with the cable.
type Link struct {
	Row  int       `json:"row"`
	From *Endpoint `json:"from,omitempty"`
	Via  Endpoint  `json:"via"`
	To   *Endpoint `json:"to,omitempty"`
}

func (l Link) String() string {
	end := func(e *Endpoint) string {
		if e == nil {
			return "-"
		}
		return e.String()
	}
	return fmt.Sprintf("%s -> %s -> %s", end(l.From), l.Via, end(l.To))
}

// Equal reports whether two links join the same endpoints.
func (l Link) Equal(o Link) bool {
	return endpointEqual(l.From, o.From) && l.Via == o.Via && endpointEqual(l.To, o.To)
}

func endpointEqual(a, b *Endpoint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// RowEntry is a connection-row entry whose ref names an entity of the harness.
// A component-list entry names one entity per position in Components
// instead and leaves Ref empty.
type RowEntry struct {
	Ref         string
	Designators document.Designators
	Components  []string
}

// Row is a connection set after template instancing.
type Row []RowEntry
