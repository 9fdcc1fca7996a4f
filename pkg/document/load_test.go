package document

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

const sample = `
metadata:
  title: demo
options:
  gauge_matching: nearest
connectors:
  X2:
    pincount: 3
  X1:
    type: D-Sub
    subtype: female
    pins: [1, 2, 3, 4, 5, 6, 7, 8, 9]
    pinlabels: [DCD, RX, TX, DTR, GND, DSR, RTS, CTS, RI]
cables:
  W1:
    wirecount: 3
    gauge: 0.25 mm2
    length: 0.2
    color_code: DIN
    shield: true
connections:
  - - X1: [5, 2, 3]
    - W1: [1, 2, 3]
    - X2: [1, 3, 2]
  - - X1: 5
    - W1: s
  - - X2
    - W1: 1-3
additional_bom_items:
  - description: Label, pinout information
    qty: 2
    designators: [X1, X2]
`

func TestParse(t *testing.T) {
	docs, err := Parse([]byte(sample), "file")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	d := docs[0]

	if d.Name != "demo" {
		t.Errorf("Name = %q, want demo", d.Name)
	}
	if d.Options.GaugeMatching != "nearest" {
		t.Errorf("GaugeMatching = %q", d.Options.GaugeMatching)
	}
	var ids []string
	for _, c := range d.Connectors {
		ids = append(ids, c.ID)
	}
	if want := []string{"X2", "X1"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("connector order = %v, want %v", ids, want)
	}
	x1 := d.Connectors[1]
	if x1.Type != "D-Sub" || len(x1.Pins) != 9 || x1.PinLabels[4] != "GND" {
		t.Errorf("X1 = %+v", x1)
	}
	w1 := d.Cables[0]
	if w1.Gauge != "0.25 mm2" || w1.Length != "0.2" || !w1.Shield.Present || w1.ColorCode != "DIN" {
		t.Errorf("W1 = %+v", w1)
	}

	wantRows := []Row{
		{{Ref: "X1", Designators: List("5", "2", "3")}, {Ref: "W1", Designators: List("1", "2", "3")}, {Ref: "X2", Designators: List("1", "3", "2")}},
		{{Ref: "X1", Designators: One("5")}, {Ref: "W1", Designators: One("s")}},
		{{Ref: "X2", Designators: Auto()}, {Ref: "W1", Designators: List("1", "2", "3")}},
	}
	if !reflect.DeepEqual(d.Connections, wantRows) {
		t.Errorf("Connections = %+v\nwant %+v", d.Connections, wantRows)
	}

	if len(d.AdditionalItems) != 1 || d.AdditionalItems[0].Qty != "2" {
		t.Errorf("AdditionalItems = %+v", d.AdditionalItems)
	}
}

func TestLoadMultiDocument(t *testing.T) {
	src := `
connectors: {X1: {pincount: 1}}
---
---
metadata: {title: second}
cables: {W1: {wirecount: 1}}
---
connectors: {X1: {pincount: 2}}
`
	docs, err := Load(strings.NewReader(src), "harness")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
	}
	if want := []string{"harness-1", "second", "harness-3"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"empty stream", "", errors.ErrCodeInvalidInput},
		{"bad yaml", "connectors: [", errors.ErrCodeInvalidFormat},
		{"connectors not a mapping", "connectors: [X1]", errors.ErrCodeSchema},
		{"row not a list", "connections: [X1]", errors.ErrCodeSchema},
		{"two keys in entry", "connections: [[{X1: 1, X2: 1}]]", errors.ErrCodeSchema},
		{"empty component list", "connections: [[[]]]", errors.ErrCodeSchema},
		{"nested component list", "connections: [[[[F.]]]]", errors.ErrCodeSchema},
		{"huge range", "connections: [[{X1: \"1-20000000\"}]]", errors.ErrCodeSchema},
		{"huge range in list", "connections: [[{X1: [\"1-2000000000\"]}]]", errors.ErrCodeSchema},
		{"ranges adding up", "connections: [[{X1: [\"1-4000\", \"1-4000\"]}]]", errors.ErrCodeSchema},
		{"bad identifier", "connectors: {'a:b': {pincount: 1}}", errors.ErrCodeSchema},
		{"nested designator", "connections: [[{X1: [[1]]}]]", errors.ErrCodeSchema},
		{"shield mapping", "cables: {W1: {shield: {a: 1}}}", errors.ErrCodeSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "t")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1-4", []string{"1", "2", "3", "4"}},
		{"3-1", []string{"3", "2", "1"}},
		{"2-2", []string{"2"}},
		{"GND", []string{"GND"}},
		{"A-B", []string{"A-B"}},
		{"-5", []string{"-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandRange(tt.in)
			if err != nil {
				t.Fatalf("ExpandRange(%q) error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandRangeLimit(t *testing.T) {
	got, err := ExpandRange("1-4096")
	if err != nil || len(got) != MaxDesignators {
		t.Fatalf("ExpandRange(1-4096) = %d designators, %v", len(got), err)
	}
	for _, in := range []string{"1-4097", "4097-1", "1-2000000000"} {
		if _, err := ExpandRange(in); !errors.Is(err, errors.ErrCodeSchema) {
			t.Errorf("ExpandRange(%q) error = %v, want SCHEMA_ERROR", in, err)
		}
	}
}

func TestComponentList(t *testing.T) {
	docs, err := Parse([]byte("connections:\n  - [[F., F., F.], {W1: [1, 2, 3]}, X1]\n"), "t")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	row := docs[0].Connections[0]
	if len(row) != 3 {
		t.Fatalf("row has %d entries, want 3", len(row))
	}
	if want := []string{"F.", "F.", "F."}; !reflect.DeepEqual(row[0].Components, want) || row[0].Ref != "" {
		t.Errorf("entry 0 = %+v", row[0])
	}
	if row[1].Components != nil || row[1].Ref != "W1" {
		t.Errorf("entry 1 = %+v", row[1])
	}
}

func TestShieldColor(t *testing.T) {
	docs, err := Parse([]byte("cables: {W1: {shield: SN}, W2: {shield: false}}"), "t")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s := docs[0].Cables[0].Shield; !s.Present || s.Color != "SN" {
		t.Errorf("W1 shield = %+v", s)
	}
	if s := docs[0].Cables[1].Shield; s.Present {
		t.Errorf("W2 shield = %+v", s)
	}
}
