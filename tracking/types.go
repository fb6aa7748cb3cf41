package tracking

import (
	"image"
)

// TrackingMode represents what the tracker saw on the latest frame
type TrackingMode int

const (
	ModeSearching TrackingMode = iota
	ModeTracking
)

func (m TrackingMode) String() string {
	switch m {
	case ModeTracking:
		return "TRACKING"
	default:
		return "SEARCHING"
	}
}

// Observation is the result of object selection for one frame.
type Observation struct {
	Found    bool        // false when no contour with a positive area exists
	Contour  Contour     // the selected contour
	Area     float64     // enclosed area of Contour
	Centroid image.Point // area-weighted centre of Contour
}

// Mode maps the observation onto the tracking mode shown in overlays.
func (o Observation) Mode() TrackingMode {
	if o.Found {
		return ModeTracking
	}
	return ModeSearching
}
