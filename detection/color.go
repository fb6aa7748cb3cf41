package detection

import (
	"encoding/binary"
	"fmt"
	"image"
	"runtime"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"trailcam/config"
	"trailcam/tracking"
)

// ErrInvalidFrame is returned for frames that are not 8-bit BGR images.
var ErrInvalidFrame = errors.New("frame is not an 8-bit 3-channel image")

// ColorDetector segments pixels inside an HSV range.
type ColorDetector struct {
	lower    gocv.Scalar
	upper    gocv.Scalar
	blurSize image.Point
	kernel   gocv.Mat

	// scratch buffers reused across frames
	blurred gocv.Mat
	hsv     gocv.Mat
}

// NewColorDetector builds a detector from the colour and filter settings of cfg.
func NewColorDetector(cfg config.Config) (*ColorDetector, error) {
	if cfg.BlurKernel <= 0 || cfg.BlurKernel%2 == 0 {
		return nil, errors.Errorf("blur kernel must be a positive odd number, got %d", cfg.BlurKernel)
	}
	if cfg.MorphKernel <= 0 {
		return nil, errors.Errorf("morph kernel must be positive, got %d", cfg.MorphKernel)
	}

	d := &ColorDetector{
		blurSize: image.Pt(cfg.BlurKernel, cfg.BlurKernel),
		kernel:   gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(cfg.MorphKernel, cfg.MorphKernel)),
		blurred:  gocv.NewMat(),
		hsv:      gocv.NewMat(),
	}
	d.SetRange(cfg.LowerHSV, cfg.UpperHSV)
	debugMsg("DETECTION", fmt.Sprintf("HSV range [%.0f,%.0f,%.0f]-[%.0f,%.0f,%.0f], blur %dx%d, open %dx%d",
		cfg.LowerHSV.H, cfg.LowerHSV.S, cfg.LowerHSV.V,
		cfg.UpperHSV.H, cfg.UpperHSV.S, cfg.UpperHSV.V,
		cfg.BlurKernel, cfg.BlurKernel, cfg.MorphKernel, cfg.MorphKernel))
	return d, nil
}

// SetRange replaces the inclusive HSV range used by Segment.
func (d *ColorDetector) SetRange(lower, upper config.HSV) {
	d.lower = gocv.NewScalar(lower.H, lower.S, lower.V, 0)
	d.upper = gocv.NewScalar(upper.H, upper.S, upper.V, 0)
}

// Segment writes the cleaned binary mask of frame into mask. A pixel is on iff
// its H, S and V all fall inside the configured inclusive range and it
// survives the morphological opening. An empty frame clears the mask.
func (d *ColorDetector) Segment(frame gocv.Mat, mask *gocv.Mat) error {
	if frame.Empty() {
		if !mask.Empty() {
			mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
		}
		return nil
	}
	if frame.Type() != gocv.MatTypeCV8UC3 {
		return ErrInvalidFrame
	}

	gocv.GaussianBlur(frame, &d.blurred, d.blurSize, 0, 0, gocv.BorderDefault)
	gocv.CvtColor(d.blurred, &d.hsv, gocv.ColorBGRToHSV)
	gocv.InRangeWithScalar(d.hsv, d.lower, d.upper, mask)

	// Opening removes specks smaller than the kernel before contours are traced
	gocv.MorphologyEx(*mask, mask, gocv.MorphOpen, d.kernel)
	return nil
}

// Detect segments the frame and extracts the outer contour of every region.
func (d *ColorDetector) Detect(frame gocv.Mat, mask *gocv.Mat) (*DetectionResult, error) {
	if err := d.Segment(frame, mask); err != nil {
		return nil, errors.Wrap(err, "Can't segment frame")
	}
	result := &DetectionResult{}
	if mask.Empty() || frame.Empty() {
		return result, nil
	}
	result.MaskPixels = gocv.CountNonZero(*mask)
	if result.MaskPixels == 0 {
		return result, nil
	}
	result.Blobs = FindContours(*mask)
	return result, nil
}

// FindContours traces the external boundaries of the regions of a binary mask
// and measures each one.
func FindContours(mask gocv.Mat) []tracking.Blob {
	if mask.Empty() {
		return nil
	}
	pvs := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer pvs.Close()

	blobs := make([]tracking.Blob, 0, pvs.Size())
	for i := 0; i < pvs.Size(); i++ {
		b, err := MeasureContour(pvs.At(i))
		if err != nil {
			debugMsg("DETECTION_VERBOSE", fmt.Sprintf("contour %d skipped: %v", i, err))
			continue
		}
		blobs = append(blobs, b)
	}
	return blobs
}

// MeasureContour computes the enclosed area and the contour moments of pv.
func MeasureContour(pv gocv.PointVector) (tracking.Blob, error) {
	pts := pv.ToPoints()
	b := tracking.Blob{Contour: tracking.Contour(pts)}
	if len(pts) < 3 {
		return b, nil
	}
	b.Area = gocv.ContourArea(pv)

	// cv::moments takes a contour as an Nx1 matrix of int32 point pairs
	data := make([]byte, 0, len(pts)*8)
	for _, p := range pts {
		data = binary.NativeEndian.AppendUint32(data, uint32(int32(p.X)))
		data = binary.NativeEndian.AppendUint32(data, uint32(int32(p.Y)))
	}
	points, err := gocv.NewMatFromBytes(len(pts), 1, gocv.MatTypeCV32SC2, data)
	if err != nil {
		return b, errors.Wrap(err, "can't wrap contour points")
	}
	defer points.Close()

	m := gocv.Moments(points, false)
	runtime.KeepAlive(data)
	b.Moments = tracking.Moments{M00: m["m00"], M10: m["m10"], M01: m["m01"]}
	return b, nil
}

// Close releases the OpenCV buffers.
func (d *ColorDetector) Close() error {
	d.blurred.Close()
	d.hsv.Close()
	return d.kernel.Close()
}
