package session

import (
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the user-facing configuration of the demo window, as read from
// a YAML file and overridden by flags.
type Config struct {
	Title string  `yaml:"title"`
	AppId string  `yaml:"app_id"`
	Color string  `yaml:"color"`
	Alpha float64 `yaml:"alpha"`
	Size  int32   `yaml:"size"`
}

// DefaultConfig is a half-transparent red 640x640 window.
func DefaultConfig() Config {
	return Config{
		Title: "My test :^)",
		Color: "#ff0000",
		Alpha: 0.5,
		Size:  640,
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error
// unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Options resolves the configuration into the values the session uses.
func (cfg Config) Options() (Options, error) {
	if cfg.Size <= 0 {
		return Options{}, errors.Errorf("size must be positive, got %d", cfg.Size)
	}
	color, err := ParseColor(cfg.Color, cfg.Alpha)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Title: cfg.Title,
		AppId: cfg.AppId,
		Color: color,
		Size:  cfg.Size,
	}, nil
}

// Color holds premultiplied channels for wp_single_pixel_buffer_manager_v1,
// where math.MaxUint32 is full intensity.
type Color struct {
	R, G, B, A uint32
}

// DefaultColor is red at half opacity.
var DefaultColor = Color{R: math.MaxUint32 / 2, A: math.MaxUint32 / 2}

// ParseColor parses a hex colour ("#rgb" or "#rrggbb") and premultiplies it
// by alpha, which must be in [0, 1].
func ParseColor(hex string, alpha float64) (Color, error) {
	if alpha < 0 || alpha > 1 {
		return Color{}, errors.Errorf("alpha %v out of range [0, 1]", alpha)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, errors.Wrapf(err, "color %q", hex)
	}
	return Color{
		R: scale(c.R * alpha),
		G: scale(c.G * alpha),
		B: scale(c.B * alpha),
		A: scale(alpha),
	}, nil
}

func scale(v float64) uint32 {
	return uint32(v * math.MaxUint32)
}
