package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7, cfg.BlurKernel)
	assert.Equal(t, 15, cfg.MorphKernel)
	assert.Equal(t, 50.0, cfg.DistanceThreshold)
	assert.Equal(t, 27, cfg.ExitKey)
	assert.Equal(t, 15*time.Second, cfg.PerfReportInterval())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty input", func(c *Config) { c.Input = "" }},
		{"even blur kernel", func(c *Config) { c.BlurKernel = 6 }},
		{"zero morph kernel", func(c *Config) { c.MorphKernel = 0 }},
		{"hue above 180", func(c *Config) { c.UpperHSV.H = 200 }},
		{"negative value", func(c *Config) { c.LowerHSV.V = -1 }},
		{"inverted range", func(c *Config) { c.LowerHSV.S = 200; c.UpperHSV.S = 100 }},
		{"zero distance threshold", func(c *Config) { c.DistanceThreshold = 0 }},
		{"negative trail length", func(c *Config) { c.MaxTrailLen = -1 }},
		{"exit key out of byte range", func(c *Config) { c.ExitKey = 300 }},
		{"zero key wait", func(c *Config) { c.KeyWaitMillis = 0 }},
		{"jpeg flag without path", func(c *Config) { c.PostOverlayJpg = true }},
		{"jpeg path without flag", func(c *Config) { c.JpgPath = "/tmp/frames" }},
		{"zero jpeg interval", func(c *Config) { c.JpgEvery = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("unbounded trail is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.MaxTrailLen = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trailcam.json")
	body := `{"input": "clip.mp4", "lower_hsv": {"h": 20, "s": 100, "v": 100}, "upper_hsv": {"h": 30, "s": 255, "v": 255}, "max_trail_len": 0}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "clip.mp4", cfg.Input)
	assert.Equal(t, HSV{H: 20, S: 100, V: 100}, cfg.LowerHSV)
	assert.Equal(t, 0, cfg.MaxTrailLen)
	// untouched keys keep defaults
	assert.Equal(t, DefaultMorphKernel, cfg.MorphKernel)
	assert.True(t, cfg.Mirror)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	cfg := Default()
	cfg.LowerHSV = HSV{H: 35, S: 80, V: 60}

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
