package tracking

import (
	"image"
)

// Trail is the centroid history of the tracked object, newest first.
//
// With a positive capacity the trail is a ring buffer and pushing onto a full
// trail drops the oldest point. A capacity of 0 keeps every point for the
// lifetime of the trail.
type Trail struct {
	buf      []image.Point
	next     int // index the next point is written to
	capacity int
}

// NewTrail creates a trail holding at most maxLen points (0 = unbounded).
func NewTrail(maxLen int) *Trail {
	if maxLen < 0 {
		maxLen = 0
	}
	t := &Trail{capacity: maxLen}
	if maxLen > 0 {
		t.buf = make([]image.Point, 0, maxLen)
	}
	return t
}

// Push records p as the newest point.
func (t *Trail) Push(p image.Point) {
	if t.capacity == 0 {
		t.buf = append(t.buf, p)
		t.next = len(t.buf)
		return
	}
	if len(t.buf) < t.capacity {
		t.buf = append(t.buf, p)
	} else {
		t.buf[t.next] = p
	}
	t.next = (t.next + 1) % t.capacity
}

// Len returns the number of stored points.
func (t *Trail) Len() int {
	return len(t.buf)
}

// Cap returns the capacity, 0 meaning unbounded.
func (t *Trail) Cap() int {
	return t.capacity
}

// At returns the i-th newest point; At(0) is the latest centroid.
func (t *Trail) At(i int) image.Point {
	n := len(t.buf)
	if i < 0 || i >= n {
		panic("tracking: trail index out of range")
	}
	idx := ((t.next-1-i)%n + n) % n
	return t.buf[idx]
}

// Head returns the newest point, ok is false on an empty trail.
func (t *Trail) Head() (image.Point, bool) {
	if len(t.buf) == 0 {
		return image.Point{}, false
	}
	return t.At(0), true
}

// Points returns a copy of the trail, newest first.
func (t *Trail) Points() []image.Point {
	out := make([]image.Point, len(t.buf))
	for i := range out {
		out[i] = t.At(i)
	}
	return out
}
