package analysis

// EstimateWeightProxy returns the pixel area of box. A larger area in a fixed
// camera setup stands in for a heavier bird; converting to grams needs an
// external calibration factor. Degenerate boxes yield 0.
func EstimateWeightProxy(box Box) float64 {
	width := box.X2 - box.X1
	height := box.Y2 - box.Y1
	if width < 0 || height < 0 {
		return 0
	}
	return float64(width) * float64(height)
}
