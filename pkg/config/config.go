// Package config loads harnessviz settings from TOML.
//
// Settings are layered: built-in defaults, then the config file, then the
// options section of a harness document (see [Config.WithDocument]), then
// command-line flags applied by the caller.
//
//	# ~/.config/harnessviz/config.toml
//	gauge_matching = "nearest"
//	length_unit = "m"
//	workers = 4
//
//	[bom]
//	length_mode = "sum"
//
//	[render]
//	fontname = "Helvetica"
//	color_mode = "full"
//
//	[cache]
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/harnessviz/pkg/colors"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/units"
)

const appName = "harnessviz"

// BOM length modes.
const (
	// LengthBucket keeps the length in the grouping key: qty counts cables.
	LengthBucket = "bucket"
	// LengthSum drops the length from the key: qty is the summed length.
	LengthSum = "sum"
)

// Config holds every tunable setting.
type Config struct {
	GaugeMatching     string `toml:"gauge_matching"`
	LengthUnit        string `toml:"length_unit"`
	TemplateSeparator string `toml:"template_separator"`
	Workers           int    `toml:"workers"`

	BOM    BOM    `toml:"bom"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
}

// BOM configures aggregation.
type BOM struct {
	LengthMode string `toml:"length_mode"`
}

// Render configures diagram output.
type Render struct {
	FontName  string `toml:"fontname"`
	BgColor   string `toml:"bgcolor"`
	ColorMode string `toml:"color_mode"`
	ShowEquiv bool   `toml:"show_equiv"`
}

// Cache configures the rendered-artifact cache. An empty Dir and RedisAddr
// disable caching.
type Cache struct {
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		GaugeMatching:     string(units.MatchExact),
		LengthUnit:        string(units.Meter),
		TemplateSeparator: ".",
		Workers:           4,
		BOM:               BOM{LengthMode: LengthBucket},
		Render: Render{
			FontName:  "arial",
			BgColor:   "#ffffff",
			ColorMode: string(colors.ModeShort),
		},
		Cache: Cache{TTL: 24 * time.Hour},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/harnessviz/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path
// means DefaultPath, which may be absent; an explicit path must exist.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return Default(), nil
			}
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks every enumerated setting.
func (c Config) Validate() error {
	if _, err := units.ParseMatching(c.GaugeMatching); err != nil {
		return err
	}
	if _, err := c.Length(); err != nil {
		return err
	}
	switch c.BOM.LengthMode {
	case "", LengthBucket, LengthSum:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid bom.length_mode %q (must be bucket or sum)", c.BOM.LengthMode)
	}
	if _, err := colors.ParseMode(c.Render.ColorMode); err != nil {
		return err
	}
	if c.TemplateSeparator == "" {
		return errors.New(errors.ErrCodeInvalidInput, "template_separator cannot be empty")
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers cannot be negative")
	}
	return nil
}

// WithDocument returns c overridden by a document's options section.
func (c Config) WithDocument(o document.Options) (Config, error) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.GaugeMatching, o.GaugeMatching)
	set(&c.LengthUnit, o.LengthUnit)
	set(&c.BOM.LengthMode, o.BOMLengthMode)
	set(&c.Render.ColorMode, o.ColorMode)
	set(&c.Render.FontName, o.FontName)
	set(&c.Render.BgColor, o.BgColor)
	set(&c.TemplateSeparator, o.TemplateSeparator)
	if o.ShowEquiv != nil {
		c.Render.ShowEquiv = *o.ShowEquiv
	}
	if err := c.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "document options")
	}
	return c, nil
}

// Matching returns the gauge matching policy. Call Validate first.
func (c Config) Matching() units.Matching {
	m, _ := units.ParseMatching(c.GaugeMatching)
	return m
}

// Length returns the harness length unit, which must be a length.
func (c Config) Length() (units.Unit, error) {
	if c.LengthUnit == "" {
		return units.Meter, nil
	}
	u, err := units.ParseUnit(c.LengthUnit)
	if err != nil {
		return "", err
	}
	if u.Dimension() != units.DimensionLength {
		return "", errors.Unit("length_unit %q is not a length", c.LengthUnit)
	}
	return u, nil
}

// ColorMode returns the label color mode. Call Validate first.
func (c Config) ColorMode() colors.Mode {
	m, _ := colors.ParseMode(c.Render.ColorMode)
	return m
}
