package document

import (
	"strconv"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// Document is one parsed harness definition, in declaration order.
type Document struct {
	Name            string
	Metadata        Metadata
	Options         Options
	Connectors      []Connector
	Cables          []Cable
	Connections     []Row
	AdditionalItems []Item
}

// Metadata holds free-form document metadata (title, authors, revisions, …).
type Metadata map[string]any

// Title returns metadata["title"] when it is a string.
func (m Metadata) Title() string {
	if s, ok := m["title"].(string); ok {
		return s
	}
	return ""
}

// Options are document-level overrides of the build configuration.
// Empty strings and nil pointers leave the configured value untouched.
type Options struct {
	GaugeMatching     string `yaml:"gauge_matching" json:"gauge_matching,omitempty"`
	LengthUnit        string `yaml:"length_unit" json:"length_unit,omitempty"`
	BOMLengthMode     string `yaml:"bom_length_mode" json:"bom_length_mode,omitempty"`
	ColorMode         string `yaml:"color_mode" json:"color_mode,omitempty"`
	FontName          string `yaml:"fontname" json:"fontname,omitempty"`
	BgColor           string `yaml:"bgcolor" json:"bgcolor,omitempty"`
	ShowEquiv         *bool  `yaml:"show_equiv" json:"show_equiv,omitempty"`
	TemplateSeparator string `yaml:"template_separator" json:"template_separator,omitempty"`
}

// Connector is the raw definition of a connector (or connector template).
type Connector struct {
	ID                   string
	Type                 string `yaml:"type"`
	Subtype              string `yaml:"subtype"`
	PinCount             int    `yaml:"pincount"`
	Pins                 []Text `yaml:"pins"`
	PinLabels            []Text `yaml:"pinlabels"`
	PinColors            []Text `yaml:"pincolors"`
	Manufacturer         Text   `yaml:"manufacturer"`
	MPN                  Text   `yaml:"mpn"`
	PN                   Text   `yaml:"pn"`
	Notes                Text   `yaml:"notes"`
	HideDisconnectedPins bool   `yaml:"hide_disconnected_pins"`
}

// Cable is the raw definition of a cable, wire bundle, or template thereof.
type Cable struct {
	ID           string
	Type         string `yaml:"type"`
	Category     string `yaml:"category"`
	WireCount    int    `yaml:"wirecount"`
	Gauge        Text   `yaml:"gauge"`
	GaugeUnit    string `yaml:"gauge_unit"`
	ShowEquiv    *bool  `yaml:"show_equiv"`
	Length       Text   `yaml:"length"`
	LengthUnit   string `yaml:"length_unit"`
	Shield       Shield `yaml:"shield"`
	ColorCode    string `yaml:"color_code"`
	Colors       []Text `yaml:"colors"`
	WireLabels   []Text `yaml:"wirelabels"`
	Manufacturer Text   `yaml:"manufacturer"`
	MPN          Text   `yaml:"mpn"`
	PN           Text   `yaml:"pn"`
	Notes        Text   `yaml:"notes"`
}

// Shield is either a boolean or the color of the shield conductor.
type Shield struct {
	Present bool
	Color   string
}

// Item is an additional BOM line not derived from a connector or cable.
type Item struct {
	Description  string   `yaml:"description"`
	Qty          Text     `yaml:"qty"`
	Unit         string   `yaml:"unit"`
	Designators  []string `yaml:"designators"`
	Manufacturer Text     `yaml:"manufacturer"`
	MPN          Text     `yaml:"mpn"`
	PN           Text     `yaml:"pn"`
}

// Text is a scalar kept verbatim, so 0.25, "0.25 mm2" and 24 all decode as text.
type Text string

// String returns t as a plain string.
func (t Text) String() string { return string(t) }

// Strings converts a list of Text values.
func Strings(ts []Text) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

// Row is one connection set: an ordered list of entity references.
type Row []Entry

// Entry references one connector or cable within a row.
type Entry struct {
	Ref         string
	Designators Designators
	// Components is set for an entry written as a list of components,
	// e.g. [F., F., F.]: one single-pin component per position. Ref is
	// empty then.
	Components []string
}

// Kind tags the designator variant of an entry.
type Kind int

const (
	// Implicit means no designators were given: auto-route in natural order.
	Implicit Kind = iota
	// Scalar is a single designator broadcast across the row.
	Scalar
	// Explicit is an ordered list of designators.
	Explicit
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Explicit:
		return "explicit"
	}
	return "implicit"
}

// Designators is the closed variant {Implicit, Scalar(v), Explicit(list)}.
type Designators struct {
	Kind   Kind
	Values []string
}

// Auto returns the implicit variant.
func Auto() Designators { return Designators{Kind: Implicit} }

// One returns the scalar variant.
func One(v string) Designators { return Designators{Kind: Scalar, Values: []string{v}} }

// List returns the explicit variant.
func List(vs ...string) Designators { return Designators{Kind: Explicit, Values: vs} }

// Len returns the number of designators given, 0 for implicit.
func (d Designators) Len() int { return len(d.Values) }

// String renders d as it would appear in a document.
func (d Designators) String() string {
	switch d.Kind {
	case Scalar:
		return d.Values[0]
	case Explicit:
		return "[" + strings.Join(d.Values, ", ") + "]"
	}
	return "*"
}

// MaxDesignators bounds the number of designators one connection entry may
// list or expand to.
const MaxDesignators = 4096

// ExpandRange expands "a-b" with integer bounds into the inclusive sequence,
// counting down when a > b. Anything else is returned unchanged. A range of
// more than MaxDesignators values is a SCHEMA_ERROR.
func ExpandRange(s string) ([]string, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return []string{s}, nil
	}
	a, errA := strconv.Atoi(strings.TrimSpace(lo))
	b, errB := strconv.Atoi(strings.TrimSpace(hi))
	if errA != nil || errB != nil || a < 0 || b < 0 {
		return []string{s}, nil
	}
	if n := abs(b-a) + 1; n > MaxDesignators {
		return nil, errors.Schema("", "range %q spans %d designators (max %d)", s, n, MaxDesignators)
	}
	step := 1
	if a > b {
		step = -1
	}
	out := make([]string, 0, abs(b-a)+1)
	for i := a; ; i += step {
		out = append(out, strconv.Itoa(i))
		if i == b {
			break
		}
	}
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
