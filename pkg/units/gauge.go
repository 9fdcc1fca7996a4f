package units

import (
	"math"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// Matching selects how non-tabulated gauges are converted.
type Matching string

const (
	// MatchExact rejects gauges that are not in the conversion table.
	MatchExact Matching = "exact"
	// MatchNearest picks the closest tabulated gauge.
	MatchNearest Matching = "nearest"
)

// ParseMatching validates a gauge_matching setting. Empty means exact.
func ParseMatching(s string) (Matching, error) {
	switch Matching(s) {
	case "", MatchExact:
		return MatchExact, nil
	case MatchNearest:
		return MatchNearest, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid gauge_matching %q (must be exact or nearest)", s)
}

// gaugeRow is one line of the mm²/AWG correspondence table.
type gaugeRow struct {
	mm2 float64
	awg float64
}

// gaugeTable is ordered by ascending cross-section (descending AWG number).
var gaugeTable = []gaugeRow{
	{0.09, 28},
	{0.14, 26},
	{0.25, 24},
	{0.34, 22},
	{0.5, 21},
	{0.75, 20},
	{1, 18},
	{1.5, 16},
	{2.5, 14},
	{4, 12},
	{6, 10},
	{10, 8},
	{16, 6},
	{25, 4},
	{35, 2},
	{50, 1},
}

const gaugeEpsilon = 1e-9

// Registry performs gauge conversions under a matching policy.
// The zero value uses exact matching.
type Registry struct {
	Matching Matching
}

// NewRegistry creates a registry with the given matching policy.
func NewRegistry(m Matching) *Registry {
	if m == "" {
		m = MatchExact
	}
	return &Registry{Matching: m}
}

// ConvertGauge converts a mm² gauge to AWG or an AWG gauge to mm².
// It returns a UNIT_ERROR when g is not a gauge, lies outside the tabulated
// range, or is not tabulated and the registry uses exact matching.
func (r *Registry) ConvertGauge(g Quantity) (Quantity, error) {
	row, err := r.lookup(g)
	if err != nil {
		return Quantity{}, err
	}
	if g.Unit == MM2 {
		return Quantity{Value: row.awg, Unit: AWG}, nil
	}
	return Quantity{Value: row.mm2, Unit: MM2}, nil
}

// Equivalent formats g with its equivalent in the other system appended,
// e.g. "0.25 mm² (24 AWG)". Gauges without an equivalent are formatted plainly.
func (r *Registry) Equivalent(g Quantity) string {
	other, err := r.ConvertGauge(g)
	if err != nil {
		return g.String()
	}
	return g.String() + " (" + other.String() + ")"
}

func (r *Registry) lookup(g Quantity) (gaugeRow, error) {
	var value func(gaugeRow) float64
	switch g.Unit {
	case MM2:
		value = func(row gaugeRow) float64 { return row.mm2 }
	case AWG:
		value = func(row gaugeRow) float64 { return row.awg }
	default:
		return gaugeRow{}, errors.Unit("%q is not a gauge unit", g.Unit)
	}

	first, last := value(gaugeTable[0]), value(gaugeTable[len(gaugeTable)-1])
	lo, hi := math.Min(first, last), math.Max(first, last)
	if g.Value < lo-gaugeEpsilon || g.Value > hi+gaugeEpsilon {
		return gaugeRow{}, errors.Unit("gauge %s outside convertible range %s..%s %s",
			FormatValue(g.Value), FormatValue(lo), FormatValue(hi), g.Unit.Symbol())
	}

	best, bestDist := -1, math.Inf(1)
	for i, row := range gaugeTable {
		d := math.Abs(value(row) - g.Value)
		if d < gaugeEpsilon {
			return row, nil
		}
		// Strict comparison keeps the first (smaller cross-section) row on ties.
		if d < bestDist-gaugeEpsilon {
			best, bestDist = i, d
		}
	}
	if r.matching() == MatchExact {
		return gaugeRow{}, errors.Unit("gauge %s has no tabulated equivalent", Quantity{Value: g.Value, Unit: g.Unit})
	}
	return gaugeTable[best], nil
}

func (r *Registry) matching() Matching {
	if r == nil || r.Matching == "" {
		return MatchExact
	}
	return r.Matching
}
