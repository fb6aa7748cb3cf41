package config

import (
	"encoding/json"
	"image/color"
	"os"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultInput             = "0"  // First camera device
	DefaultBlurKernel        = 7    // Gaussian blur kernel (pixels, odd)
	DefaultMorphKernel       = 15   // Elliptical structuring element (pixels, odd)
	DefaultDistanceThreshold = 50.0 // Max gap between trail points that still gets a segment
	DefaultExitKey           = 27   // ESC
	DefaultKeyWaitMillis     = 5
	DefaultMaxTrailLen       = 512
	DefaultLineTaper         = 64
	DefaultPerfReportSeconds = 15
)

// HSV is an OpenCV-scaled HSV triple: H in [0,180], S and V in [0,255].
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// RGBA is a JSON friendly colour.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Color converts to the opaque color.RGBA used by the drawing routines.
func (c RGBA) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Config holds every tunable of the tracker. Zero values are not meaningful;
// start from Default().
type Config struct {
	// Input is a camera index ("0") or a video file / stream URL
	Input string `json:"input"`

	// Colour range of the tracked object
	LowerHSV HSV `json:"lower_hsv"`
	UpperHSV HSV `json:"upper_hsv"`

	BlurKernel  int `json:"blur_kernel"`
	MorphKernel int `json:"morph_kernel"`

	DistanceThreshold float64 `json:"distance_threshold"`
	MaxTrailLen       int     `json:"max_trail_len"` // 0 keeps every point
	LineTaper         int     `json:"line_taper"`

	MarkerRadius     int  `json:"marker_radius"`
	MarkerColor      RGBA `json:"marker_color"`
	EllipseColor     RGBA `json:"ellipse_color"`
	EllipseThickness int  `json:"ellipse_thickness"`
	PredictionColor  RGBA `json:"prediction_color"`

	ExitKey       int  `json:"exit_key"`
	KeyWaitMillis int  `json:"key_wait_millis"`
	Mirror        bool `json:"mirror"`
	ShowMask      bool `json:"show_mask"`
	Headless      bool `json:"headless"`

	Predict         bool `json:"predict"`
	StatusOverlay   bool `json:"status_overlay"`
	TerminalOverlay bool `json:"terminal_overlay"`

	// JPEG frame saving
	JpgPath        string `json:"jpg_path"`
	PreOverlayJpg  bool   `json:"pre_overlay_jpg"`
	PostOverlayJpg bool   `json:"post_overlay_jpg"`
	JpgEvery       int    `json:"jpg_every"`

	PerfReportSeconds int `json:"perf_report_seconds"` // 0 disables the periodic PERF log
}

// PerfReportInterval is how often the loop logs pipeline statistics.
func (c Config) PerfReportInterval() time.Duration {
	return time.Duration(c.PerfReportSeconds) * time.Second
}

// Default returns the compiled-in configuration: a blue object, ESC to quit.
func Default() Config {
	return Config{
		Input:             DefaultInput,
		LowerHSV:          HSV{H: 100, S: 150, V: 0},
		UpperHSV:          HSV{H: 140, S: 255, V: 255},
		BlurKernel:        DefaultBlurKernel,
		MorphKernel:       DefaultMorphKernel,
		DistanceThreshold: DefaultDistanceThreshold,
		MaxTrailLen:       DefaultMaxTrailLen,
		LineTaper:         DefaultLineTaper,
		MarkerRadius:      5,
		MarkerColor:       RGBA{R: 255, G: 0, B: 0},
		EllipseColor:      RGBA{R: 0, G: 255, B: 255},
		EllipseThickness:  2,
		PredictionColor:   RGBA{R: 255, G: 255, B: 0},
		ExitKey:           DefaultExitKey,
		KeyWaitMillis:     DefaultKeyWaitMillis,
		Mirror:            true,
		ShowMask:          true,
		JpgEvery:          1,
		PerfReportSeconds: DefaultPerfReportSeconds,
	}
}

// Load reads a JSON config file on top of Default(). Keys missing from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "can't read config %s", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "can't parse config %s", path)
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't encode config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "can't write config %s", path)
	}
	return nil
}

// Validate reports the first setting that would make the pipeline misbehave.
func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is required")
	}
	if err := validateKernel("blur_kernel", c.BlurKernel); err != nil {
		return err
	}
	if err := validateKernel("morph_kernel", c.MorphKernel); err != nil {
		return err
	}
	if err := validateHSV(c.LowerHSV, c.UpperHSV); err != nil {
		return err
	}
	if c.DistanceThreshold <= 0 {
		return errors.Errorf("distance_threshold must be positive, got %v", c.DistanceThreshold)
	}
	if c.MaxTrailLen < 0 {
		return errors.Errorf("max_trail_len must not be negative, got %d", c.MaxTrailLen)
	}
	if c.LineTaper <= 0 {
		return errors.Errorf("line_taper must be positive, got %d", c.LineTaper)
	}
	if c.MarkerRadius <= 0 {
		return errors.Errorf("marker_radius must be positive, got %d", c.MarkerRadius)
	}
	if c.ExitKey < 0 || c.ExitKey > 255 {
		return errors.Errorf("exit_key must be a single byte key code, got %d", c.ExitKey)
	}
	if c.KeyWaitMillis <= 0 {
		return errors.Errorf("key_wait_millis must be positive, got %d", c.KeyWaitMillis)
	}

	jpegFlagsUsed := c.PreOverlayJpg || c.PostOverlayJpg
	if jpegFlagsUsed && c.JpgPath == "" {
		return errors.New("pre_overlay_jpg/post_overlay_jpg require jpg_path")
	}
	if c.JpgPath != "" && !jpegFlagsUsed {
		return errors.New("jpg_path set but neither pre_overlay_jpg nor post_overlay_jpg enabled")
	}
	if c.PerfReportSeconds < 0 {
		return errors.Errorf("perf_report_seconds must not be negative, got %d", c.PerfReportSeconds)
	}
	if c.JpgEvery <= 0 {
		return errors.Errorf("jpg_every must be positive, got %d", c.JpgEvery)
	}
	return nil
}

func validateKernel(name string, size int) error {
	if size <= 0 || size%2 == 0 {
		return errors.Errorf("%s must be a positive odd number, got %d", name, size)
	}
	return nil
}

func validateHSV(lower, upper HSV) error {
	check := func(name string, v, max float64) error {
		if v < 0 || v > max {
			return errors.Errorf("%s out of range [0,%v]: %v", name, max, v)
		}
		return nil
	}
	for _, hsv := range []HSV{lower, upper} {
		if err := check("hue", hsv.H, 180); err != nil {
			return err
		}
		if err := check("saturation", hsv.S, 255); err != nil {
			return err
		}
		if err := check("value", hsv.V, 255); err != nil {
			return err
		}
	}
	if lower.H > upper.H || lower.S > upper.S || lower.V > upper.V {
		return errors.Errorf("lower_hsv %+v exceeds upper_hsv %+v", lower, upper)
	}
	return nil
}
