package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
	"trailcam/config"
	"trailcam/tracking"
)

var blue = color.RGBA{B: 255}

func blackFrame(w, h int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8UC3)
}

func newDetector(t *testing.T) *ColorDetector {
	t.Helper()
	d, err := NewColorDetector(config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNewColorDetectorRejectsBadKernels(t *testing.T) {
	cfg := config.Default()
	cfg.BlurKernel = 6
	_, err := NewColorDetector(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.MorphKernel = 0
	_, err = NewColorDetector(cfg)
	assert.Error(t, err)
}

func TestDetectSingleBlob(t *testing.T) {
	d := newDetector(t)
	frame := blackFrame(200, 200)
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(100, 100), 30, blue, -1)

	mask := gocv.NewMat()
	defer mask.Close()
	res, err := d.Detect(frame, &mask)
	require.NoError(t, err)
	require.Len(t, res.Blobs, 1)
	assert.Greater(t, res.MaskPixels, 0)

	obs := tracking.SelectLargest(res.Blobs)
	require.True(t, obs.Found)
	assert.InDelta(t, 100, obs.Centroid.X, 2)
	assert.InDelta(t, 100, obs.Centroid.Y, 2)
	// pi * 30^2 is about 2827; the blur halo passes the V >= 0 bound and grows it a little
	assert.Greater(t, obs.Area, 2500.0)
	assert.Less(t, obs.Area, 3600.0)
}

func TestDetectPicksLargerOfTwoBlobs(t *testing.T) {
	d := newDetector(t)
	frame := blackFrame(320, 240)
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(20, 20, 40, 45), blue, -1)     // 500 px²
	gocv.Rectangle(&frame, image.Rect(200, 100, 240, 150), blue, -1) // 2000 px²

	mask := gocv.NewMat()
	defer mask.Close()
	res, err := d.Detect(frame, &mask)
	require.NoError(t, err)
	require.Len(t, res.Blobs, 2)

	obs := tracking.SelectLargest(res.Blobs)
	require.True(t, obs.Found)
	assert.InDelta(t, 220, obs.Centroid.X, 2)
	assert.InDelta(t, 125, obs.Centroid.Y, 2)
}

func TestDetectEmptyScene(t *testing.T) {
	d := newDetector(t)
	frame := blackFrame(160, 120)
	defer frame.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	res, err := d.Detect(frame, &mask)
	require.NoError(t, err)
	assert.Empty(t, res.Blobs)
	assert.Equal(t, 0, res.MaskPixels)
	assert.Equal(t, 120, mask.Rows())
	assert.Equal(t, 160, mask.Cols())
}

func TestDetectIgnoresOtherColours(t *testing.T) {
	d := newDetector(t)
	frame := blackFrame(200, 200)
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(60, 60), 30, color.RGBA{R: 255}, -1)
	gocv.Circle(&frame, image.Pt(140, 140), 30, color.RGBA{G: 255}, -1)

	mask := gocv.NewMat()
	defer mask.Close()
	res, err := d.Detect(frame, &mask)
	require.NoError(t, err)
	assert.Empty(t, res.Blobs)
}

func TestOpeningRemovesSpeckles(t *testing.T) {
	d := newDetector(t)
	frame := blackFrame(200, 200)
	defer frame.Close()
	for _, p := range []image.Point{{20, 20}, {50, 170}, {180, 30}} {
		gocv.Rectangle(&frame, image.Rect(p.X, p.Y, p.X+3, p.Y+3), blue, -1)
	}

	mask := gocv.NewMat()
	defer mask.Close()
	res, err := d.Detect(frame, &mask)
	require.NoError(t, err)
	assert.Empty(t, res.Blobs)
	assert.Equal(t, 0, gocv.CountNonZero(mask))
}

func TestDetectEmptyFrame(t *testing.T) {
	d := newDetector(t)
	frame := gocv.NewMat()
	defer frame.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	res, err := d.Detect(frame, &mask)
	require.NoError(t, err)
	assert.Empty(t, res.Blobs)
}

func TestDetectRejectsGrayFrame(t *testing.T) {
	d := newDetector(t)
	frame := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8U)
	defer frame.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	_, err := d.Detect(frame, &mask)
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func measure(t *testing.T, pts []image.Point) tracking.Blob {
	t.Helper()
	pv := gocv.NewPointVectorFromPoints(pts)
	defer pv.Close()
	b, err := MeasureContour(pv)
	require.NoError(t, err)
	return b
}

func TestMeasureContour(t *testing.T) {
	t.Run("rectangle", func(t *testing.T) {
		b := measure(t, []image.Point{{10, 20}, {40, 20}, {40, 60}, {10, 60}})
		assert.InDelta(t, 1200.0, b.Area, 1e-9)
		assert.InDelta(t, b.Area, b.Moments.M00, 1e-9)
		center, ok := b.Moments.Centroid()
		require.True(t, ok)
		assert.Equal(t, image.Pt(25, 40), center)
	})

	t.Run("winding does not matter", func(t *testing.T) {
		cw := measure(t, []image.Point{{0, 0}, {10, 0}, {10, 5}, {0, 5}})
		ccw := measure(t, []image.Point{{0, 5}, {10, 5}, {10, 0}, {0, 0}})
		assert.InDelta(t, cw.Moments.M00, ccw.Moments.M00, 1e-9)
		assert.InDelta(t, cw.Moments.M10, ccw.Moments.M10, 1e-9)
		assert.InDelta(t, cw.Moments.M01, ccw.Moments.M01, 1e-9)
	})

	t.Run("degenerate line has no centroid", func(t *testing.T) {
		b := measure(t, []image.Point{{0, 0}, {10, 10}, {20, 20}})
		assert.InDelta(t, 0.0, b.Area, 1e-9)
		_, ok := b.Moments.Centroid()
		assert.False(t, ok)
		assert.False(t, tracking.SelectLargest([]tracking.Blob{b}).Found)
	})

	t.Run("too few points", func(t *testing.T) {
		b := measure(t, []image.Point{{3, 3}, {4, 4}})
		assert.Equal(t, 0.0, b.Area)
		assert.Len(t, b.Contour, 2)
	})

	t.Run("centroid lies within the bounding box", func(t *testing.T) {
		shapes := [][]image.Point{
			{{5, 5}, {6, 5}, {6, 6}, {5, 6}},
			{{0, 0}, {50, 0}, {50, 10}, {10, 10}, {10, 50}, {0, 50}}, // L shape
			{{100, 100}, {140, 90}, {180, 140}, {120, 170}},
		}
		for _, pts := range shapes {
			b := measure(t, pts)
			center, ok := b.Moments.Centroid()
			if !assert.True(t, ok) {
				continue
			}
			pv := gocv.NewPointVectorFromPoints(pts)
			bounds := gocv.BoundingRect(pv)
			pv.Close()
			assert.True(t, center.In(bounds), "centroid %v outside %v", center, bounds)
		}
	})
}
