package analysis

import "fmt"

// DetectionLabel is the overlay text drawn next to a detection box.
func DetectionLabel(d Detection) string {
	return fmt.Sprintf("ID:%d W:%d", d.TrackID, int(d.WeightProxy))
}

func FrameLabel(frameIndex int) string {
	return fmt.Sprintf("Frame: %d", frameIndex)
}

func CountLabel(count int) string {
	return fmt.Sprintf("Count: %d", count)
}
