package detection

import (
	"gocv.io/x/gocv"
	"trailcam/tracking"
)

// DetectionResult represents the output of colour segmentation for one frame
type DetectionResult struct {
	Blobs []tracking.Blob
	// Pixels left in the mask after noise suppression
	MaskPixels int
}

// Global debug function for detection package
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

// Detector turns a frame into a binary mask and the contours of its regions.
// The mask is written into the caller owned Mat so it can be displayed.
type Detector interface {
	Detect(frame gocv.Mat, mask *gocv.Mat) (*DetectionResult, error)
	Close() error
}
