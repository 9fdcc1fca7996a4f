package units

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// Unit is a canonical unit symbol.
type Unit string

// Gauge units.
const (
	MM2 Unit = "mm2"
	AWG Unit = "AWG"
)

// Length units. Meter is the canonical length unit.
const (
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Meter      Unit = "m"
	Kilometer  Unit = "km"
	Inch       Unit = "in"
	Foot       Unit = "ft"
	Yard       Unit = "yd"
)

// Dimension groups units that can be converted into each other.
type Dimension int

const (
	// DimensionUnknown is returned for units outside the registry.
	DimensionUnknown Dimension = iota
	// DimensionGauge covers conductor cross-section units (mm², AWG).
	DimensionGauge
	// DimensionLength covers cable length units.
	DimensionLength
)

// unitAliases maps accepted spellings (lower-cased) to canonical units.
var unitAliases = map[string]Unit{
	"mm2":   MM2,
	"mm²":   MM2,
	"mm^2":  MM2,
	"sqmm":  MM2,
	"awg":   AWG,
	"mm":    Millimeter,
	"cm":    Centimeter,
	"m":     Meter,
	"km":    Kilometer,
	"in":    Inch,
	"inch":  Inch,
	"ft":    Foot,
	"foot":  Foot,
	"feet":  Foot,
	"yd":    Yard,
	"yard":  Yard,
	"meter": Meter,
	"metre": Meter,
}

// lengthFactors are exact ratios to one meter.
var lengthFactors = map[Unit]*big.Rat{
	Millimeter: big.NewRat(1, 1000),
	Centimeter: big.NewRat(1, 100),
	Meter:      big.NewRat(1, 1),
	Kilometer:  big.NewRat(1000, 1),
	Inch:       big.NewRat(254, 10000),
	Foot:       big.NewRat(3048, 10000),
	Yard:       big.NewRat(9144, 10000),
}

// ParseUnit returns the canonical unit for s.
// Matching is case-insensitive and ignores surrounding whitespace.
// It returns a UNIT_ERROR if s is not a recognized unit.
func ParseUnit(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u, ok := unitAliases[key]; ok {
		return u, nil
	}
	return "", errors.Unit("unrecognized unit %q", s)
}

// Dimension reports which physical dimension u measures.
func (u Unit) Dimension() Dimension {
	switch u {
	case MM2, AWG:
		return DimensionGauge
	}
	if _, ok := lengthFactors[u]; ok {
		return DimensionLength
	}
	return DimensionUnknown
}

// Symbol returns the display symbol for u (mm² instead of mm2).
func (u Unit) Symbol() string {
	if u == MM2 {
		return "mm²"
	}
	return string(u)
}

// Quantity is a value with a canonical unit.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// IsZero reports whether q is unset.
func (q Quantity) IsZero() bool { return q.Unit == "" && q.Value == 0 }

// String formats q for labels, e.g. "0.25 mm²", "24 AWG" or "0.2 m".
func (q Quantity) String() string {
	if q.IsZero() {
		return ""
	}
	return FormatValue(q.Value) + " " + q.Unit.Symbol()
}

// Key returns a stable, ASCII-only representation for grouping keys.
func (q Quantity) Key() string {
	if q.IsZero() {
		return ""
	}
	return FormatValue(q.Value) + string(q.Unit)
}

// FormatValue formats v with the shortest representation that round-trips.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Normalize validates unit and returns the value in its canonical unit.
// Gauge values keep their system (mm² or AWG); lengths are converted to meters.
func Normalize(value float64, unit string) (Quantity, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Quantity{}, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Quantity{}, errors.Unit("invalid value %v", value)
	}
	if value < 0 {
		return Quantity{}, errors.Unit("negative %s value %s", u.Symbol(), FormatValue(value))
	}
	q := Quantity{Value: value, Unit: u}
	if u.Dimension() == DimensionLength {
		return ConvertLength(q, Meter)
	}
	return q, nil
}

// ConvertLength converts a length quantity to the unit to.
// The conversion uses exact rational factors, so the only rounding step is the
// final conversion back to float64.
func ConvertLength(q Quantity, to Unit) (Quantity, error) {
	from, ok := lengthFactors[q.Unit]
	if !ok {
		return Quantity{}, errors.Unit("%q is not a length unit", q.Unit)
	}
	target, ok := lengthFactors[to]
	if !ok {
		return Quantity{}, errors.Unit("%q is not a length unit", to)
	}
	if q.Unit == to {
		return q, nil
	}
	r := new(big.Rat)
	if r.SetFloat64(q.Value) == nil {
		return Quantity{}, errors.Unit("invalid length %v", q.Value)
	}
	r.Mul(r, from)
	r.Quo(r, target)
	v, _ := r.Float64()
	return Quantity{Value: v, Unit: to}, nil
}

// ParseQuantity parses strings such as "0.25 mm2", "24 AWG", "20cm" or "1.5".
// A bare number takes defaultUnit. An empty defaultUnit makes the unit mandatory.
// The result is not normalized; call Normalize on it when needed.
func ParseQuantity(s string, defaultUnit string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, errors.Unit("empty quantity")
	}
	split := len(s)
	for i, r := range s {
		if !(unicode.IsDigit(r) || r == '.' || r == '-' || r == '+') {
			split = i
			break
		}
	}
	num, unit := strings.TrimSpace(s[:split]), strings.TrimSpace(s[split:])
	if num == "" {
		return Quantity{}, errors.Unit("quantity %q has no numeric value", s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Quantity{}, errors.Unit("invalid number in quantity %q", s)
	}
	if unit == "" {
		if defaultUnit == "" {
			return Quantity{}, errors.Unit("quantity %q has no unit", s)
		}
		unit = defaultUnit
	}
	u, err := ParseUnit(unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: v, Unit: u}, nil
}
