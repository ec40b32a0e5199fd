package video

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"flockscope/internal/analysis"
)

var (
	boxColor   = color.RGBA{0, 255, 0, 255}
	frameColor = color.RGBA{255, 0, 0, 255}
	countColor = color.RGBA{255, 255, 0, 255}
)

// Annotator draws detections and readouts onto gocv frames in place.
type Annotator struct{}

func (a *Annotator) Annotate(f *analysis.Frame, dets []analysis.Detection, count int) error {
	m, ok := f.Canvas.(*Mat)
	if !ok {
		return fmt.Errorf("unsupported canvas %T", f.Canvas)
	}
	mat := &m.Mat

	for _, d := range dets {
		gocv.Rectangle(mat, d.Box.Rect(), boxColor, 2)
		gocv.PutText(mat, analysis.DetectionLabel(d), image.Pt(d.Box.X1, d.Box.Y1-10),
			gocv.FontHersheySimplex, 0.5, boxColor, 2)
	}

	gocv.PutText(mat, analysis.FrameLabel(f.Index), image.Pt(20, 40), gocv.FontHersheySimplex, 1, frameColor, 2)
	gocv.PutText(mat, analysis.CountLabel(count), image.Pt(20, 80), gocv.FontHersheySimplex, 1, countColor, 2)
	return nil
}
