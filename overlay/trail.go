package overlay

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"trailcam/tracking"
)

// Segment is one drawable piece of the trail.
type Segment struct {
	From      image.Point
	To        image.Point
	Color     color.RGBA
	Thickness int
}

// Channel bounds of the randomly chosen trail colours (inclusive)
const (
	trailBlueMin  = 230
	trailGreenMin = 100
	trailRedMin   = 100
)

// RandomTrailColor picks a bright bluish colour, blue in [230,255] and
// green/red in [100,255].
func RandomTrailColor(rng *rand.Rand) color.RGBA {
	return color.RGBA{
		R: uint8(trailRedMin + rng.Intn(256-trailRedMin)),
		G: uint8(trailGreenMin + rng.Intn(256-trailGreenMin)),
		B: uint8(trailBlueMin + rng.Intn(256-trailBlueMin)),
		A: 255,
	}
}

// SegmentThickness is the line width of the i-th segment counted from the
// head. Older segments are drawn thinner so the trail fades out.
func SegmentThickness(i, taper int) int {
	t := int(math.Sqrt(float64(taper)/float64(i+1)) * 2.5)
	if t < 1 {
		return 1
	}
	return t
}

// TrailSegments turns a newest-first trail into the segments to draw. A pair of
// consecutive points further apart than maxGap is a jump (the object vanished
// and reappeared elsewhere) and produces no segment. points is never modified.
func TrailSegments(points []image.Point, maxGap float64, taper int, rng *rand.Rand) []Segment {
	if len(points) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if tracking.Distance(prev, cur) > maxGap {
			continue
		}
		segments = append(segments, Segment{
			From:      prev,
			To:        cur,
			Color:     RandomTrailColor(rng),
			Thickness: SegmentThickness(i, taper),
		})
	}
	return segments
}
