package imageseq

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"flockscope/internal/analysis"
)

var (
	boxColor   = color.RGBA{0, 255, 0, 255}
	frameColor = color.RGBA{255, 0, 0, 255}
	countColor = color.RGBA{255, 255, 0, 255}
)

// Annotator draws detections and readouts with the 7x13 bitmap font.
type Annotator struct{}

func (a *Annotator) Annotate(f *analysis.Frame, dets []analysis.Detection, count int) error {
	img, ok := f.Canvas.(*Image)
	if !ok {
		return fmt.Errorf("unsupported canvas %T", f.Canvas)
	}

	for _, d := range dets {
		drawBox(img.RGBA, d.Box.Rect(), boxColor, 2)
		drawLabel(img.RGBA, d.Box.X1, d.Box.Y1-10, analysis.DetectionLabel(d), boxColor)
	}
	drawLabel(img.RGBA, 20, 40, analysis.FrameLabel(f.Index), frameColor)
	drawLabel(img.RGBA, 20, 80, analysis.CountLabel(count), countColor)
	return nil
}

func drawBox(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if image.Pt(x, y).In(bounds) {
			img.SetRGBA(x, y, c)
		}
	}
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			set(x, r.Min.Y+t)
			set(x, r.Max.Y-t)
		}
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			set(r.Min.X+t, y)
			set(r.Max.X-t, y)
		}
	}
}

// drawLabel puts text with its baseline at y.
func drawLabel(img *image.RGBA, x, y int, label string, c color.RGBA) {
	if y < 13 {
		y = 13
	}
	if x < 0 {
		x = 0
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
