package units

import (
	"testing"

	"github.com/matzehuels/harnessviz/pkg/errors"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"mm2", MM2, false},
		{"mm²", MM2, false},
		{" AWG ", AWG, false},
		{"awg", AWG, false},
		{"M", Meter, false},
		{"feet", Foot, false},
		{"furlong", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnit(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeUnit) {
				t.Errorf("ParseUnit(%q) code = %v, want UNIT_ERROR", tt.in, errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseUnit(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  string
		want  Quantity
	}{
		{"meters unchanged", 1.5, "m", Quantity{1.5, Meter}},
		{"centimeters", 20, "cm", Quantity{0.2, Meter}},
		{"millimeters", 250, "mm", Quantity{0.25, Meter}},
		{"feet", 10, "ft", Quantity{3.048, Meter}},
		{"gauge keeps system", 24, "AWG", Quantity{24, AWG}},
		{"mm2 alias", 0.5, "mm^2", Quantity{0.5, MM2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.value, tt.unit)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%v, %q) = %+v, want %+v", tt.value, tt.unit, got, tt.want)
			}
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	if _, err := Normalize(1, "parsec"); !errors.Is(err, errors.ErrCodeUnit) {
		t.Errorf("unknown unit should fail with UNIT_ERROR, got %v", err)
	}
	if _, err := Normalize(-1, "m"); !errors.Is(err, errors.ErrCodeUnit) {
		t.Errorf("negative length should fail with UNIT_ERROR, got %v", err)
	}
}

func TestConvertLengthRoundTrip(t *testing.T) {
	for _, u := range []Unit{Millimeter, Centimeter} {
		q := Quantity{Value: 0.3, Unit: Meter}
		there, err := ConvertLength(q, u)
		if err != nil {
			t.Fatalf("ConvertLength(%v) error = %v", u, err)
		}
		back, err := ConvertLength(there, Meter)
		if err != nil {
			t.Fatalf("ConvertLength back error = %v", err)
		}
		if back != q {
			t.Errorf("round trip via %s = %+v, want %+v", u, back, q)
		}
	}

	if _, err := ConvertLength(Quantity{Value: 1, Unit: AWG}, Meter); err == nil {
		t.Error("converting a gauge as length should fail")
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		def     string
		want    Quantity
		wantErr bool
	}{
		{"0.25 mm2", "", Quantity{0.25, MM2}, false},
		{"24 AWG", "", Quantity{24, AWG}, false},
		{"20cm", "m", Quantity{20, Centimeter}, false},
		{"1.5", "m", Quantity{1.5, Meter}, false},
		{"1.5", "", Quantity{}, true},
		{"mm2", "", Quantity{}, true},
		{"1.2.3 m", "", Quantity{}, true},
		{"3 cubits", "", Quantity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in, tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuantity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseQuantity(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuantityString(t *testing.T) {
	if got := (Quantity{0.25, MM2}).String(); got != "0.25 mm²" {
		t.Errorf("String() = %q", got)
	}
	if got := (Quantity{0.25, MM2}).Key(); got != "0.25mm2" {
		t.Errorf("Key() = %q", got)
	}
	if got := (Quantity{}).String(); got != "" {
		t.Errorf("zero String() = %q, want empty", got)
	}
}
