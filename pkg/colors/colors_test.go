package colors

import (
	"testing"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"BU", "BU"},
		{"bu", "BU"},
		{"WHBU", "WHBU"},
		{"blue", "BU"},
		{"Light Blue", "LB"},
		{"gray", "GY"},
		{"#0066FF", "BU"},
		{"white/blue", "WHBU"},
		{"#ffffff:#0066ff", "WHBU"},
		{"#123456", "#123456"},
		{"RD/#123456", "RD/#123456"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Resolve(tt.token)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.token, err)
			}
			if got.String() != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.token, got.String(), tt.want)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	for _, token := range []string{"", "XX", "WHX", "#12345", "mauve", "WH/mauve"} {
		if _, err := Resolve(token); !errors.Is(err, errors.ErrCodeColorCode) {
			t.Errorf("Resolve(%q) error = %v, want COLOR_CODE_ERROR", token, err)
		}
	}
}

func TestResolveColor(t *testing.T) {
	c, err := ResolveColor("red")
	if err != nil {
		t.Fatalf("ResolveColor() error = %v", err)
	}
	if c.Code != "RD" || c.Hex != "#ff0000" {
		t.Errorf("ResolveColor(red) = %+v", c)
	}
	if _, err := ResolveColor("WHBU"); err == nil {
		t.Error("ResolveColor(WHBU) should reject multicolors")
	}
}

func TestMulticolorFormat(t *testing.T) {
	mc, _ := Resolve("WHBU")
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeShort, "WHBU"},
		{ModeFull, "white/blue"},
		{ModeHex, "#ffffff:#0066ff"},
	}
	for _, tt := range tests {
		if got := mc.Format(tt.mode); got != tt.want {
			t.Errorf("Format(%s) = %q, want %q", tt.mode, got, tt.want)
		}
	}
	if got := mc.Title(); got != "White/Blue" {
		t.Errorf("Title() = %q", got)
	}
}

func TestMulticolorEqual(t *testing.T) {
	a, _ := Resolve("WHBU")
	b, _ := Resolve("white/blue")
	c, _ := Resolve("BUWH")
	if !a.Equal(b) {
		t.Error("WHBU should equal white/blue")
	}
	if a.Equal(c) {
		t.Error("WHBU should not equal BUWH")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeShort {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseMode("rainbow"); err == nil {
		t.Error("ParseMode(rainbow) should fail")
	}
}
