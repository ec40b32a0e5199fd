// Package video reads and writes video files through OpenCV.
package video

import (
	"errors"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"flockscope/internal/analysis"
)

// Codec is the fourcc of the annotated output.
const Codec = "mp4v"

// Backend opens video files with gocv.
type Backend struct {
	annotator *Annotator
}

func NewBackend() *Backend {
	return &Backend{annotator: &Annotator{}}
}

func (b *Backend) OpenSource(path string) (analysis.FrameSource, error) {
	return OpenCapture(path)
}

func (b *Backend) OpenSink(path string, meta analysis.Metadata) (analysis.VideoSink, error) {
	return OpenWriter(path, meta)
}

func (b *Backend) Annotator() analysis.Annotator {
	return b.annotator
}

// Mat is a decoded frame.
type Mat struct {
	gocv.Mat
}

func (m *Mat) Size() (int, int) {
	return m.Cols(), m.Rows()
}

func (m *Mat) BGRBytes() ([]byte, error) {
	if m.Channels() != 3 {
		return nil, fmt.Errorf("expected 3 channels, got %d", m.Channels())
	}
	return m.ToBytes(), nil
}

// Capture is a FrameSource over gocv.VideoCapture.
type Capture struct {
	capture *gocv.VideoCapture
	meta    analysis.Metadata
}

func OpenCapture(path string) (*Capture, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input video: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.New("could not open video file")
	}
	return &Capture{
		capture: capture,
		meta: analysis.Metadata{
			FPS:         capture.Get(gocv.VideoCaptureFPS),
			Width:       int(capture.Get(gocv.VideoCaptureFrameWidth)),
			Height:      int(capture.Get(gocv.VideoCaptureFrameHeight)),
			TotalFrames: int(capture.Get(gocv.VideoCaptureFrameCount)),
		},
	}, nil
}

func (c *Capture) Metadata() analysis.Metadata {
	return c.meta
}

func (c *Capture) Next() (analysis.Canvas, error) {
	for {
		frame := gocv.NewMat()
		if ok := c.capture.Read(&frame); !ok {
			frame.Close()
			return nil, io.EOF
		}
		if frame.Empty() {
			frame.Close()
			continue
		}
		return &Mat{Mat: frame}, nil
	}
}

func (c *Capture) Close() error {
	return c.capture.Close()
}

// Writer is a VideoSink over gocv.VideoWriter.
type Writer struct {
	writer *gocv.VideoWriter
}

func OpenWriter(path string, meta analysis.Metadata) (*Writer, error) {
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", meta.Width, meta.Height)
	}
	writer, err := gocv.VideoWriterFile(path, Codec, meta.FPS, meta.Width, meta.Height, true)
	if err != nil {
		return nil, err
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("video writer for %s is not opened", path)
	}
	return &Writer{writer: writer}, nil
}

func (w *Writer) Write(f *analysis.Frame) error {
	m, ok := f.Canvas.(*Mat)
	if !ok {
		return fmt.Errorf("unsupported canvas %T", f.Canvas)
	}
	return w.writer.Write(m.Mat)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}
