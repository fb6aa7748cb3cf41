package main

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"trailcam/config"
	"trailcam/detection"
)

func TestPositionsRoundTrip(t *testing.T) {
	cfg := config.Default()
	p := PositionsFromRange(cfg.LowerHSV, cfg.UpperHSV)
	assert.Equal(t, Positions{100, 150, 0, 140, 255, 255}, p)

	lower, upper := p.Range()
	assert.Equal(t, cfg.LowerHSV, lower)
	assert.Equal(t, cfg.UpperHSV, upper)
	assert.Equal(t, "lower [100,150,0] upper [140,255,255]", p.String())
}

func TestPositionsRangeIsAlwaysValid(t *testing.T) {
	tests := []struct {
		name  string
		pos   Positions
		lower config.HSV
		upper config.HSV
	}{
		{"crossed bars swap", Positions{150, 10, 20, 90, 5, 30}, config.HSV{H: 90, S: 5, V: 20}, config.HSV{H: 150, S: 10, V: 30}},
		{"out of range clamps", Positions{-5, 0, 0, 300, 999, 255}, config.HSV{}, config.HSV{H: 180, S: 255, V: 255}},
		{"single value", Positions{60, 60, 60, 60, 60, 60}, config.HSV{H: 60, S: 60, V: 60}, config.HSV{H: 60, S: 60, V: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := tt.pos.Range()
			assert.Equal(t, tt.lower, lower)
			assert.Equal(t, tt.upper, upper)

			cfg := config.Default()
			cfg.LowerHSV, cfg.UpperHSV = lower, upper
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestSavedRangeLoadsBack(t *testing.T) {
	out := filepath.Join(t.TempDir(), "range.json")
	cfg := config.Default()
	cfg.LowerHSV, cfg.UpperHSV = Positions{35, 80, 40, 85, 255, 255}.Range()
	require.NoError(t, cfg.Save(out))

	loaded, err := config.Load(out)
	require.NoError(t, err)
	assert.Equal(t, config.HSV{H: 35, S: 80, V: 40}, loaded.LowerHSV)
	assert.Equal(t, config.HSV{H: 85, S: 255, V: 255}, loaded.UpperHSV)
}

func TestPreviewMaskMatchesTracker(t *testing.T) {
	cfg := config.Default()
	det, err := detection.NewColorDetector(cfg)
	require.NoError(t, err)
	defer det.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC3)
	defer frame.Close()
	blue := color.RGBA{B: 255}
	gocv.Rectangle(&frame, image.Rect(20, 20, 22, 22), blue, -1) // 3x3 speck
	gocv.Circle(&frame, image.Pt(120, 120), 30, blue, -1)

	mask := gocv.NewMat()
	defer mask.Close()
	require.NoError(t, previewMask(det, PositionsFromRange(cfg.LowerHSV, cfg.UpperHSV), frame, &mask))

	speck := mask.Region(image.Rect(10, 10, 33, 33))
	defer speck.Close()
	assert.Equal(t, 0, gocv.CountNonZero(speck))
	assert.Equal(t, uint8(255), mask.GetUCharAt(120, 120))

	// a range that excludes blue clears the preview
	require.NoError(t, previewMask(det, Positions{0, 150, 0, 20, 255, 255}, frame, &mask))
	assert.Equal(t, 0, gocv.CountNonZero(mask))
}
