package colors

import (
	"strings"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// Mode selects how colors are written in labels.
type Mode string

const (
	// ModeShort writes IEC abbreviations ("WHBU").
	ModeShort Mode = "short"
	// ModeFull writes full names ("white/blue").
	ModeFull Mode = "full"
	// ModeHex writes hex values ("#ffffff:#0066ff").
	ModeHex Mode = "hex"
)

// ParseMode validates a color_mode setting. Empty means short.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeShort:
		return ModeShort, nil
	case ModeFull, ModeHex:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid color_mode %q (must be short, full or hex)", s)
}

// Multicolor is a base color followed by zero or more stripe colors.
type Multicolor []Color

// IsZero reports whether no color is set.
func (m Multicolor) IsZero() bool { return len(m) == 0 }

// String returns the short form.
func (m Multicolor) String() string { return m.Format(ModeShort) }

// Format renders m in the given mode. Hex-only colors appear as hex in every mode.
func (m Multicolor) Format(mode Mode) string {
	parts := make([]string, len(m))
	for i, c := range m {
		switch {
		case mode == ModeHex || c.Code == "":
			parts[i] = c.Hex
		case mode == ModeFull:
			parts[i] = c.Name
		default:
			parts[i] = c.Code
		}
	}
	switch mode {
	case ModeHex:
		return strings.Join(parts, ":")
	case ModeFull:
		return strings.Join(parts, "/")
	}
	if len(m) > 1 {
		for _, c := range m {
			if c.Code == "" {
				return strings.Join(parts, "/")
			}
		}
	}
	return strings.Join(parts, "")
}

// Title renders full names in title case for human-facing text such as
// BOM descriptions ("White/Blue").
func (m Multicolor) Title() string {
	return title(m.Format(ModeFull))
}

// Hexes returns the hex value of each color in order.
func (m Multicolor) Hexes() []string {
	out := make([]string, len(m))
	for i, c := range m {
		out[i] = c.Hex
	}
	return out
}

// Equal reports whether m and o denote the same color sequence.
func (m Multicolor) Equal(o Multicolor) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i].Hex != o[i].Hex {
			return false
		}
	}
	return true
}
