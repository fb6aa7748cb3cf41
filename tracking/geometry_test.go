package tracking

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMomentsCentroid(t *testing.T) {
	center, ok := Moments{M00: 1200, M10: 1200 * 25, M01: 1200 * 40}.Centroid()
	assert.True(t, ok)
	assert.Equal(t, image.Pt(25, 40), center)

	// rounds to the nearest pixel
	center, ok = Moments{M00: 4, M10: 4 * 10.6, M01: 4 * 7.4}.Centroid()
	assert.True(t, ok)
	assert.Equal(t, image.Pt(11, 7), center)

	_, ok = Moments{}.Centroid()
	assert.False(t, ok)
	_, ok = Moments{M00: -3, M10: 9, M01: 9}.Centroid()
	assert.False(t, ok)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 50.0, Distance(image.Pt(5, 5), image.Pt(35, 45)), 1e-9)
	assert.InDelta(t, 181.57367, Distance(image.Pt(341, 264), image.Pt(421, 427)), 1e-5)
}
