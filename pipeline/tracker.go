package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"trailcam/config"
	"trailcam/detection"
	"trailcam/overlay"
	"trailcam/tracking"
)

// Global debug function for pipeline package
var debugMsgFunc func(string, string)

// SetDebugFunction allows main package to provide debug function
func SetDebugFunction(fn func(string, string)) {
	debugMsgFunc = fn
}

// debugMsg is a wrapper that handles nil checks
func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// predictorMaxMisses is how many frames without a detection the prediction
// marker survives
const predictorMaxMisses = 10

// Tracker runs the per-frame work: mirror, segment, select, record, render.
// It owns the trail and the mask buffer shown next to the frame.
type Tracker struct {
	mirror    bool
	detector  detection.Detector
	renderer  *overlay.Renderer
	trail     *tracking.Trail
	predictor *tracking.Predictor // nil unless prediction is enabled
	mask      gocv.Mat
	last      tracking.Observation
}

// NewTracker wires a detector and a renderer into a per-frame tracker.
func NewTracker(cfg config.Config, detector detection.Detector, renderer *overlay.Renderer) *Tracker {
	t := &Tracker{
		mirror:   cfg.Mirror,
		detector: detector,
		renderer: renderer,
		trail:    tracking.NewTrail(cfg.MaxTrailLen),
		mask:     gocv.NewMat(),
	}
	if cfg.Predict {
		t.predictor = tracking.NewPredictor(1.0)
	}
	return t
}

// ProcessFrame annotates frame in place and returns what was selected on it.
// The trail only grows when a centroid was found.
func (t *Tracker) ProcessFrame(frame *gocv.Mat) (tracking.Observation, error) {
	if t.mirror && !frame.Empty() {
		gocv.Flip(*frame, frame, 1)
	}

	result, err := t.detector.Detect(*frame, &t.mask)
	if err != nil {
		return tracking.Observation{}, errors.Wrap(err, "detection failed")
	}

	obs := tracking.SelectLargest(result.Blobs)
	if obs.Found {
		t.trail.Push(obs.Centroid)
	}
	t.updatePredictor(obs)
	t.logModeChange(obs, len(result.Blobs))
	t.last = obs

	if frame.Empty() {
		return obs, nil
	}
	t.renderer.DrawObservation(frame, obs, t.trail.Points())
	if t.predictor != nil {
		if pos, ok := t.predictor.Position(); ok {
			t.renderer.DrawPrediction(frame, pos)
		}
	}
	return obs, nil
}

func (t *Tracker) updatePredictor(obs tracking.Observation) {
	if t.predictor == nil {
		return
	}
	if !obs.Found {
		t.predictor.Miss(predictorMaxMisses)
		return
	}
	if err := t.predictor.Observe(obs.Centroid); err != nil {
		debugMsg("WARN", err.Error())
	}
}

func (t *Tracker) logModeChange(obs tracking.Observation, contours int) {
	if obs.Found == t.last.Found {
		return
	}
	if obs.Found {
		debugMsg("TRACKING", fmt.Sprintf("Object acquired at (%d,%d), area %.0f px, %d contours",
			obs.Centroid.X, obs.Centroid.Y, obs.Area, contours))
		return
	}
	if head, ok := t.trail.Head(); ok {
		debugMsg("TRACKING", fmt.Sprintf("Object lost near (%d,%d), trail holds %d points", head.X, head.Y, t.trail.Len()))
		return
	}
	debugMsg("TRACKING", "Object lost")
}

// Mask is the cleaned segmentation mask of the latest frame.
func (t *Tracker) Mask() gocv.Mat {
	return t.mask
}

// Trail is the centroid history, newest first.
func (t *Tracker) Trail() *tracking.Trail {
	return t.trail
}

// Last is the observation of the latest frame.
func (t *Tracker) Last() tracking.Observation {
	return t.last
}

// Close releases the mask buffer and the detector.
func (t *Tracker) Close() error {
	t.mask.Close()
	return t.detector.Close()
}
