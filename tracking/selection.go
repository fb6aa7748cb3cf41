package tracking

// SelectLargest picks the blob with the largest enclosed area and computes
// its observation. On equal areas the first blob wins. Blobs without an
// enclosed area are never selected, so an all-degenerate set reports
// Found == false just like an empty one.
func SelectLargest(blobs []Blob) Observation {
	best := -1
	for i, b := range blobs {
		if b.Area <= 0 || b.Moments.M00 <= 0 {
			continue
		}
		if best < 0 || b.Area > blobs[best].Area {
			best = i
		}
	}
	if best < 0 {
		return Observation{}
	}

	center, ok := blobs[best].Moments.Centroid()
	if !ok {
		return Observation{}
	}
	return Observation{
		Found:    true,
		Contour:  blobs[best].Contour,
		Area:     blobs[best].Area,
		Centroid: center,
	}
}
