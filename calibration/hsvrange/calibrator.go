package main

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"gocv.io/x/gocv"
	"trailcam/config"
	"trailcam/detection"
)

// Trackbar order: lower H,S,V then upper H,S,V
const (
	barHLow = iota
	barSLow
	barVLow
	barHHigh
	barSHigh
	barVHigh
	numBars
)

var barNames = [numBars]string{"H low", "S low", "V low", "H high", "S high", "V high"}

// barMax is the top of each trackbar in OpenCV HSV units
var barMax = [numBars]int{180, 255, 255, 180, 255, 255}

// Positions is the state of the six trackbars
type Positions [numBars]int

// PositionsFromRange places the trackbars on an existing HSV range.
func PositionsFromRange(lower, upper config.HSV) Positions {
	return Positions{
		int(math.Round(lower.H)), int(math.Round(lower.S)), int(math.Round(lower.V)),
		int(math.Round(upper.H)), int(math.Round(upper.S)), int(math.Round(upper.V)),
	}
}

// Range turns trackbar positions into an HSV range. Positions are clamped to
// their trackbar and a low bar dragged past its high bar is swapped with it, so
// the result always passes config validation.
func (p Positions) Range() (lower, upper config.HSV) {
	var v Positions
	for i, pos := range p {
		v[i] = clamp(pos, 0, barMax[i])
	}
	for i := barHLow; i <= barVLow; i++ {
		if v[i] > v[i+3] {
			v[i], v[i+3] = v[i+3], v[i]
		}
	}
	lower = config.HSV{H: float64(v[barHLow]), S: float64(v[barSLow]), V: float64(v[barVLow])}
	upper = config.HSV{H: float64(v[barHHigh]), S: float64(v[barSHigh]), V: float64(v[barVHigh])}
	return lower, upper
}

func (p Positions) String() string {
	lower, upper := p.Range()
	return fmt.Sprintf("lower [%.0f,%.0f,%.0f] upper [%.0f,%.0f,%.0f]",
		lower.H, lower.S, lower.V, upper.H, upper.S, upper.V)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// previewMask segments frame with the range of p through the tracker's own
// detector, so the preview matches what the tracker will see.
func previewMask(det *detection.ColorDetector, p Positions, frame gocv.Mat, mask *gocv.Mat) error {
	lower, upper := p.Range()
	det.SetRange(lower, upper)
	return det.Segment(frame, mask)
}

// HSVCalibrator shows the live mask of the current trackbar range so the
// range can be tuned on the real object.
type HSVCalibrator struct {
	cfg      config.Config
	out      string
	detector *detection.ColorDetector
	window   *gocv.Window
	bars     [numBars]*gocv.Trackbar
}

// NewHSVCalibrator opens the calibration window with trackbars set from cfg.
func NewHSVCalibrator(cfg config.Config, out string) (*HSVCalibrator, error) {
	det, err := detection.NewColorDetector(cfg)
	if err != nil {
		return nil, err
	}
	hc := &HSVCalibrator{
		cfg:      cfg,
		out:      out,
		detector: det,
		window:   gocv.NewWindow("HSV calibration"),
	}
	start := PositionsFromRange(cfg.LowerHSV, cfg.UpperHSV)
	for i := range hc.bars {
		hc.bars[i] = hc.window.CreateTrackbar(barNames[i], barMax[i])
		hc.bars[i].SetPos(start[i])
	}
	return hc, nil
}

// Positions reads the trackbars.
func (hc *HSVCalibrator) Positions() Positions {
	var p Positions
	for i, bar := range hc.bars {
		p[i] = bar.GetPos()
	}
	return p
}

// Config is the loaded config with the chosen range applied.
func (hc *HSVCalibrator) Config() config.Config {
	cfg := hc.cfg
	cfg.LowerHSV, cfg.UpperHSV = hc.Positions().Range()
	return cfg
}

// Save writes the config with the chosen range to the output file.
func (hc *HSVCalibrator) Save() error {
	cfg := hc.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.Save(hc.out)
}

// Show displays the frame masked by the current range. It returns the key
// pressed within delay millis, -1 for none.
func (hc *HSVCalibrator) Show(frame, mask *gocv.Mat, delay int) int {
	if err := previewMask(hc.detector, hc.Positions(), *frame, mask); err != nil {
		glog.Warningf("Can't segment frame: %v", err)
		return hc.window.WaitKey(delay)
	}

	view := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), frame.Rows(), frame.Cols(), frame.Type())
	defer view.Close()
	frame.CopyToWithMask(&view, *mask)
	hc.window.IMShow(view)
	return hc.window.WaitKey(delay)
}

// Close destroys the window and releases the detector.
func (hc *HSVCalibrator) Close() error {
	hc.detector.Close()
	return hc.window.Close()
}
