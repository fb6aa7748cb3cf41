package tracking

import (
	"image"
	"math"
)

// Contour is the ordered boundary of one connected mask region, as returned
// by contour extraction. The polygon is implicitly closed.
type Contour []image.Point

// Moments holds the spatial moments of a contour up to first order.
type Moments struct {
	M00 float64 // enclosed area
	M10 float64
	M01 float64
}

// Centroid derives M10/M00, M01/M00 rounded to whole pixels. A zero area
// yields ok == false instead of a division by zero.
func (m Moments) Centroid() (image.Point, bool) {
	if m.M00 <= 0 {
		return image.Point{}, false
	}
	return image.Point{
		X: int(math.Round(m.M10 / m.M00)),
		Y: int(math.Round(m.M01 / m.M00)),
	}, true
}

// Blob is a contour measured by the vision toolkit.
type Blob struct {
	Contour Contour
	Area    float64
	Moments Moments
}

// Distance is the Euclidean distance between two pixels.
func Distance(p1, p2 image.Point) float64 {
	return math.Hypot(float64(p1.X-p2.X), float64(p1.Y-p2.Y))
}
