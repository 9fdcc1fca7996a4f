package graph

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/matzehuels/harnessviz/pkg/colors"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/harness"
	"github.com/matzehuels/harnessviz/pkg/resolve"
)

const demo = `
metadata:
  title: demo
connectors:
  X1:
    type: D-Sub
    pincount: 9
    hide_disconnected_pins: true
  X2:
    pincount: 3
    pinlabels: [GND, RX, TX]
cables:
  W1:
    wirecount: 3
    gauge: 0.25 mm2
    length: 0.2
    color_code: DIN
    shield: true
connections:
  -
    - X1: [5, 2, 3]
    - W1: [1, 2, 3]
    - X2: [1, 3, 2]
  -
    - X1: 5
    - W1: s
`

func buildHarness(t *testing.T, src string) *harness.Harness {
	t.Helper()
	docs, err := document.Parse([]byte(src), "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	h, err := harness.New(docs[0], harness.Options{})
	if err != nil {
		t.Fatalf("harness.New() error = %v", err)
	}
	if err := resolve.Apply(h); err != nil {
		t.Fatalf("resolve.Apply() error = %v", err)
	}
	return h
}

func TestEmit(t *testing.T) {
	g := Emit(buildHarness(t, demo), Options{})

	if g.Name != "demo" {
		t.Errorf("Name = %q", g.Name)
	}
	var ids []string
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	if want := []string{"X1", "X2", "W1"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("nodes = %v, want %v", ids, want)
	}
	if len(g.Edges) != 4 {
		t.Fatalf("got %d edges, want 4", len(g.Edges))
	}

	first := g.Edges[0]
	if first.From == nil || *first.From != (Ref{Node: "X1", Port: 5, Designator: "5"}) ||
		first.Via != (Ref{Node: "W1", Port: 1, Designator: "1"}) ||
		*first.To != (Ref{Node: "X2", Port: 1, Designator: "1"}) {
		t.Errorf("edge 0 = %+v", first)
	}
	if want := []string{"#ffffff"}; !reflect.DeepEqual(first.Hexes, want) {
		t.Errorf("edge 0 hexes = %v, want %v", first.Hexes, want)
	}
	if shield := g.Edges[3]; shield.Via.Port != ShieldPort || shield.To != nil {
		t.Errorf("shield edge = %+v", shield)
	}
}

func TestEmitEdgeLabels(t *testing.T) {
	g := Emit(buildHarness(t, demo), Options{ColorMode: colors.ModeFull})

	tests := []struct {
		edge   int
		color  string
		fromID string
		wireID string
		toID   string
	}{
		{0, "white", "5", "1", "1"},
		{1, "brown", "2", "2", "3"},
		{2, "green", "3", "3", "2"},
	}
	for _, tt := range tests {
		e := g.Edges[tt.edge]
		if e.Color != tt.color {
			t.Errorf("edge %d color = %q, want %q", tt.edge, e.Color, tt.color)
		}
		if e.Gauge != "0.25 mm²" || e.Length != "0.2 m" {
			t.Errorf("edge %d gauge/length = %q / %q", tt.edge, e.Gauge, e.Length)
		}
		if e.From.Designator != tt.fromID || e.Via.Designator != tt.wireID || e.To.Designator != tt.toID {
			t.Errorf("edge %d designators = %s/%s/%s", tt.edge, e.From.Designator, e.Via.Designator, e.To.Designator)
		}
	}

	shield := g.Edges[3]
	if shield.Via.Designator != "s" || shield.Color != "" {
		t.Errorf("shield edge = %+v", shield)
	}
}

func TestEmitEdgeDesignators(t *testing.T) {
	h := buildHarness(t, `
connectors:
  X1:
    pins: [A, B]
  X2:
    pincount: 2
    pinlabels: [GND, VCC]
cables:
  W1:
    colors: [RD, BK]
    wirelabels: [plus, minus]
connections:
  -
    - X1: [B, A]
    - W1: [minus, plus]
    - X2: [VCC, GND]
`)
	g := Emit(h, Options{})
	e := g.Edges[0]
	if e.From.Designator != "B" || e.From.Port != 2 {
		t.Errorf("from = %+v, want pin B at port 2", e.From)
	}
	if e.Via.Designator != "2" || e.Color != "BK" {
		t.Errorf("via = %+v color %q, want wire 2 in BK", e.Via, e.Color)
	}
	if e.To.Designator != "2" || e.To.Port != 2 {
		t.Errorf("to = %+v, want pin 2", e.To)
	}
}

func TestEmitHidesDisconnectedPins(t *testing.T) {
	g := Emit(buildHarness(t, demo), Options{})
	x1, _ := g.Node("X1")

	var pins []int
	for _, p := range x1.Ports {
		pins = append(pins, p.Index)
	}
	if want := []int{2, 3, 5}; !reflect.DeepEqual(pins, want) {
		t.Errorf("X1 ports = %v, want %v", pins, want)
	}

	x2, _ := g.Node("X2")
	if len(x2.Ports) != 3 {
		t.Errorf("X2 ports = %d, want all 3", len(x2.Ports))
	}
}

func TestEmitCablePorts(t *testing.T) {
	g := Emit(buildHarness(t, demo), Options{ColorMode: colors.ModeFull})
	w1, ok := g.Node("W1")
	if !ok || !w1.IsCable() {
		t.Fatal("W1 missing")
	}
	if want := []string{"3x + S", "0.25 mm²", "0.2 m", "DIN"}; !reflect.DeepEqual(w1.Attributes, want) {
		t.Errorf("attributes = %v, want %v", w1.Attributes, want)
	}
	if len(w1.Ports) != 4 {
		t.Fatalf("got %d ports, want 3 wires + shield", len(w1.Ports))
	}
	wire2, _ := w1.Port(2)
	if wire2.Color != "brown" {
		t.Errorf("wire 2 color = %q, want brown", wire2.Color)
	}
	if !reflect.DeepEqual(wire2.Left, []string{"X1:2"}) || !reflect.DeepEqual(wire2.Right, []string{"X2:3"}) {
		t.Errorf("wire 2 ends = %v / %v", wire2.Left, wire2.Right)
	}
	shield, _ := w1.Port(ShieldPort)
	if !shield.Shield || !reflect.DeepEqual(shield.Left, []string{"X1:5"}) || shield.Right != nil {
		t.Errorf("shield = %+v", shield)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := Marshal(Emit(buildHarness(t, demo), Options{}))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Marshal(Emit(buildHarness(t, demo), Options{}))
	if !bytes.Equal(a, b) {
		t.Error("Marshal() output differs between identical builds")
	}

	g, err := Unmarshal(a)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 4 {
		t.Errorf("Unmarshal() = %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
}
