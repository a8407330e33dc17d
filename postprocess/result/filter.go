package result

// FilterByConfidence returns the detections with a score greater than or
// equal to threshold.  The input order is preserved and the input slice is
// not modified.
func FilterByConfidence(dets []Detection, threshold float32) []Detection {

	kept := make([]Detection, 0, len(dets))

	for _, det := range dets {
		if det.Score >= threshold {
			kept = append(kept, det)
		}
	}

	return kept
}
