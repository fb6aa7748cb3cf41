package tracking

import (
	"image"
	"math"

	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// Predictor smooths the centroid sequence with a constant-velocity 2D Kalman
// filter. It only feeds the optional prediction marker; the trail always
// stores raw centroids.
type Predictor struct {
	dt      float64
	tracker *kalman_filter.Kalman2D
	// frames since the last observation
	misses int
}

// NewPredictor creates a predictor for frames spaced dt apart (1.0 = one frame).
func NewPredictor(dt float64) *Predictor {
	if dt <= 0 {
		dt = 1.0
	}
	return &Predictor{dt: dt}
}

func (p *Predictor) reset(center image.Point) {
	/* Kalman filter props */
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	x, y := float64(center.X), float64(center.Y)
	p.tracker = kalman_filter.NewKalman2D(p.dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(x, y))
	p.misses = 0
}

// Observe feeds the centroid of the current frame.
func (p *Predictor) Observe(center image.Point) error {
	if p.tracker == nil {
		p.reset(center)
		return nil
	}
	p.tracker.Predict()
	err := p.tracker.Update(float64(center.X), float64(center.Y))
	if err != nil {
		return errors.Wrap(err, "Can't update centroid predictor")
	}
	p.misses = 0
	return nil
}

// Miss advances the filter over a frame without a detection. After maxMisses
// consecutive misses the filter forgets its state.
func (p *Predictor) Miss(maxMisses int) {
	if p.tracker == nil {
		return
	}
	p.misses++
	if p.misses > maxMisses {
		p.tracker = nil
		p.misses = 0
		return
	}
	p.tracker.Predict()
}

// Position returns the filtered position; ok is false until the first observation.
func (p *Predictor) Position() (image.Point, bool) {
	if p.tracker == nil {
		return image.Point{}, false
	}
	x, y := p.tracker.GetState()
	return image.Point{X: int(math.Round(x)), Y: int(math.Round(y))}, true
}
