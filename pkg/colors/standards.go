package colors

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// Standard is a published color code: a pure function from conductor
// position (0-based) to color, defined for a fixed number of positions.
type Standard struct {
	Name        string
	Description string

	max int
	at  func(i int) Multicolor
}

// Max returns the number of positions the standard defines.
func (s Standard) Max() int { return s.max }

// At returns the color of conductor i (0-based).
func (s Standard) At(i int) (Multicolor, error) {
	if i < 0 || i >= s.max {
		return nil, errors.ColorCode("color code %s defines %d positions, position %d requested", s.Name, s.max, i+1)
	}
	return s.at(i), nil
}

// Expand returns the first count colors of the standard.
func (s Standard) Expand(count int) ([]Multicolor, error) {
	if count < 0 {
		return nil, errors.ColorCode("negative conductor count %d", count)
	}
	if count > s.max {
		return nil, errors.ColorCode("color code %s defines %d positions, %d requested", s.Name, s.max, count)
	}
	out := make([]Multicolor, count)
	for i := range out {
		out[i] = s.at(i)
	}
	return out, nil
}

// table builds a standard from a literal published table.
func table(name, description string, tokens ...string) Standard {
	entries := make([]Multicolor, len(tokens))
	for i, t := range tokens {
		entries[i] = mustResolve(t)
	}
	return Standard{
		Name:        name,
		Description: description,
		max:         len(entries),
		at:          func(i int) Multicolor { return entries[i] },
	}
}

var standards = map[string]Standard{
	"DIN": table("DIN", "DIN 47100",
		"WH", "BN", "GN", "YE", "GY", "PK", "BU", "RD", "BK", "VT",
		"GYPK", "RDBU", "WHGN", "BNGN", "WHYE", "YEBN", "WHGY", "GYBN", "WHPK", "PKBN",
		"WHBU", "BNBU", "WHRD", "BNRD", "WHBK", "BNBK", "GYGN", "YEGY", "PKGN", "YEPK",
		"GNBU", "YEBU", "GNRD", "YERD", "GNBK", "YEBK", "GYBU", "PKBU", "GYRD", "PKRD",
		"GYBK", "PKBK", "BUBK", "RDBK"),
	"IEC": table("IEC", "IEC 60757 / IEC 62 sequence",
		"BN", "RD", "OG", "YE", "GN", "BU", "VT", "GY", "WH", "BK"),
	"BW": table("BW", "black and white", "BK", "WH"),
	"TEL": table("TEL", "25-pair telephone code, ring then tip",
		"BUWH", "WHBU", "OGWH", "WHOG", "GNWH", "WHGN", "BNWH", "WHBN", "SLWH", "WHSL",
		"BURD", "RDBU", "OGRD", "RDOG", "GNRD", "RDGN", "BNRD", "RDBN", "SLRD", "RDSL",
		"BUBK", "BKBU", "OGBK", "BKOG", "GNBK", "BKGN", "BNBK", "BKBN", "SLBK", "BKSL",
		"BUYE", "YEBU", "OGYE", "YEOG", "GNYE", "YEGN", "BNYE", "YEBN", "SLYE", "YESL",
		"BUVT", "VTBU", "OGVT", "VTOG", "GNVT", "VTGN", "BNVT", "VTBN", "SLVT", "VTSL"),
	"TELALT": table("TELALT", "25-pair telephone code, tip then ring",
		"WHBU", "BU", "WHOG", "OG", "WHGN", "GN", "WHBN", "BN", "WHSL", "SL",
		"RDBU", "BURD", "RDOG", "OGRD", "RDGN", "GNRD", "RDBN", "BNRD", "RDSL", "SLRD",
		"BKBU", "BUBK", "BKOG", "OGBK", "BKGN", "GNBK", "BKBN", "BNBK", "BKSL", "SLBK",
		"YEBU", "BUYE", "YEOG", "OGYE", "YEGN", "GNYE", "YEBN", "BNYE", "YESL", "SLYE",
		"VTBU", "BUVT", "VTOG", "OGVT", "VTGN", "GNVT", "VTBN", "BNVT", "VTSL", "SLVT"),
	"T568A": table("T568A", "TIA/EIA-568 T568A",
		"WHGN", "GN", "WHOG", "BU", "WHBU", "OG", "WHBN", "BN"),
	"T568B": table("T568B", "TIA/EIA-568 T568B",
		"WHOG", "OG", "WHGN", "BU", "WHBU", "GN", "WHBN", "BN"),
}

// Lookup returns the named standard. Names are case-insensitive.
func Lookup(name string) (Standard, error) {
	s, ok := standards[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Standard{}, errors.ColorCode("unknown color code %q", name)
	}
	return s, nil
}

// Expand returns the colors of the first count conductors of the named standard.
// It fails with a COLOR_CODE_ERROR when the standard is unknown or defines
// fewer than count positions.
func Expand(standard string, count int) ([]Multicolor, error) {
	s, err := Lookup(standard)
	if err != nil {
		return nil, err
	}
	return s.Expand(count)
}

// Standards returns the names of all known standards in sorted order.
func Standards() []string {
	return slices.Sorted(maps.Keys(standards))
}
