package colors

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

// Color is a single canonical color. Palette colors carry an IEC 60757
// two-letter Code; colors given only as hex values have an empty Code.
type Color struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// palette lists the known colors in IEC 60757 order.
var palette = []Color{
	{"BK", "black", "#000000"},
	{"WH", "white", "#ffffff"},
	{"GY", "grey", "#999999"},
	{"PK", "pink", "#ff66cc"},
	{"RD", "red", "#ff0000"},
	{"OG", "orange", "#ff8000"},
	{"YE", "yellow", "#ffff00"},
	{"OL", "olive", "#708000"},
	{"GN", "green", "#00ff00"},
	{"TQ", "turquoise", "#00ffff"},
	{"LB", "lightblue", "#a0dfff"},
	{"BU", "blue", "#0066ff"},
	{"VT", "violet", "#8000ff"},
	{"BN", "brown", "#895956"},
	{"BG", "beige", "#ceb673"},
	{"IV", "ivory", "#f5f0d0"},
	{"SL", "slate", "#708090"},
	{"CU", "copper", "#d6775e"},
	{"SN", "tin", "#aaaaaa"},
	{"SR", "silver", "#84878c"},
	{"GD", "gold", "#ffcf80"},
}

// nameAliases maps alternative spellings to palette names.
var nameAliases = map[string]string{
	"gray":   "grey",
	"purple": "violet",
}

var (
	byCode = indexPalette(func(c Color) string { return c.Code })
	byName = withAliases(indexPalette(func(c Color) string { return c.Name }))
	byHex  = indexPalette(func(c Color) string { return c.Hex })
)

func indexPalette(key func(Color) string) map[string]Color {
	m := make(map[string]Color, len(palette))
	for _, c := range palette {
		m[key(c)] = c
	}
	return m
}

func withAliases(m map[string]Color) map[string]Color {
	for alias, name := range nameAliases {
		m[alias] = m[name]
	}
	return m
}

var hexRe = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// Casers are stateful, so each call builds its own.
func fold(s string) string  { return cases.Fold().String(s) }
func title(s string) string { return cases.Title(language.English).String(s) }

// Palette returns a copy of the known colors.
func Palette() []Color {
	out := make([]Color, len(palette))
	copy(out, palette)
	return out
}

// Resolve maps a color token to its canonical multicolor.
//
// Accepted tokens:
//   - an abbreviation ("BU") or a run of abbreviations ("WHBU": white base, blue stripe)
//   - a full name ("blue", case-insensitive)
//   - a hex value ("#0066ff")
//   - any of the above joined by "/" or ":" ("white/blue", "#ffffff:#0066ff")
//
// It returns a COLOR_CODE_ERROR when the token matches no known representation.
func Resolve(token string) (Multicolor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, errors.ColorCode("empty color")
	}
	if strings.ContainsAny(t, "/:") {
		var out Multicolor
		for _, part := range strings.FieldsFunc(t, func(r rune) bool { return r == '/' || r == ':' }) {
			mc, err := Resolve(part)
			if err != nil {
				return nil, errors.ColorCode("unknown color %q in %q", part, token)
			}
			out = append(out, mc...)
		}
		if len(out) == 0 {
			return nil, errors.ColorCode("unknown color %q", token)
		}
		return out, nil
	}
	if c, ok := resolveSingle(t); ok {
		return Multicolor{c}, nil
	}
	if mc, ok := resolveAbbreviations(t); ok {
		return mc, nil
	}
	return nil, errors.ColorCode("unknown color %q", token)
}

// ResolveColor resolves a token that must denote exactly one color.
func ResolveColor(token string) (Color, error) {
	mc, err := Resolve(token)
	if err != nil {
		return Color{}, err
	}
	if len(mc) != 1 {
		return Color{}, errors.ColorCode("%q is a multicolor, expected a single color", token)
	}
	return mc[0], nil
}

func resolveSingle(t string) (Color, bool) {
	if strings.HasPrefix(t, "#") {
		hex := strings.ToLower(t)
		if !hexRe.MatchString(hex) {
			return Color{}, false
		}
		if c, ok := byHex[hex]; ok {
			return c, true
		}
		return Color{Name: hex, Hex: hex}, true
	}
	name := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(fold(t))
	if c, ok := byName[name]; ok {
		return c, true
	}
	return Color{}, false
}

func resolveAbbreviations(t string) (Multicolor, bool) {
	if len(t)%2 != 0 {
		return nil, false
	}
	upper := strings.ToUpper(t)
	out := make(Multicolor, 0, len(upper)/2)
	for i := 0; i < len(upper); i += 2 {
		c, ok := byCode[upper[i:i+2]]
		if !ok {
			return nil, false
		}
		out = append(out, c)
	}
	return out, true
}

// mustResolve is used for the built-in standard tables.
func mustResolve(token string) Multicolor {
	mc, err := Resolve(token)
	if err != nil {
		panic(err)
	}
	return mc
}
