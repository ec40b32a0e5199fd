package analysis

import (
	"context"
	"errors"
	"io"
)

type stubCanvas struct {
	closed bool
}

func (c *stubCanvas) Size() (int, int) { return 64, 48 }

func (c *stubCanvas) Close() error {
	c.closed = true
	return nil
}

type stubSource struct {
	meta     Metadata
	frames   int
	read     int
	canvases []*stubCanvas
	readErr  error
	closed   bool
}

func (s *stubSource) Metadata() Metadata { return s.meta }

func (s *stubSource) Next() (Canvas, error) {
	if s.readErr != nil && s.read == s.frames-1 {
		return nil, s.readErr
	}
	if s.read >= s.frames {
		return nil, io.EOF
	}
	s.read++
	c := &stubCanvas{}
	s.canvases = append(s.canvases, c)
	return c, nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

type stubSink struct {
	written  []int
	failAt   int
	closeErr error
	closed   bool
}

func (s *stubSink) Write(f *Frame) error {
	if s.failAt >= 0 && f.Index == s.failAt {
		return errors.New("disk full")
	}
	s.written = append(s.written, f.Index)
	return nil
}

func (s *stubSink) Close() error {
	s.closed = true
	return s.closeErr
}

type stubAnnotator struct {
	calls  []int
	counts []int
	err    error
}

func (a *stubAnnotator) Annotate(f *Frame, dets []Detection, count int) error {
	a.calls = append(a.calls, f.Index)
	a.counts = append(a.counts, count)
	return a.err
}

type stubBackend struct {
	source    *stubSource
	sink      *stubSink
	annotator *stubAnnotator
	openErr   error
	sinkErr   error
}

func newStubBackend(frames int, fps float64) *stubBackend {
	return &stubBackend{
		source:    &stubSource{meta: Metadata{FPS: fps, Width: 64, Height: 48, TotalFrames: frames}, frames: frames},
		sink:      &stubSink{failAt: -1},
		annotator: &stubAnnotator{},
	}
}

func (b *stubBackend) OpenSource(path string) (FrameSource, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.source, nil
}

func (b *stubBackend) OpenSink(path string, meta Metadata) (VideoSink, error) {
	if b.sinkErr != nil {
		return nil, b.sinkErr
	}
	return b.sink, nil
}

func (b *stubBackend) Annotator() Annotator { return b.annotator }

// scriptedTracker replays fixed detections per frame index.
type scriptedTracker struct {
	perFrame map[int][]RawDetection
	failAt   int
}

func (t *scriptedTracker) Track(ctx context.Context, f *Frame, confThresh float32, targetClass int) ([]RawDetection, error) {
	if t.failAt >= 0 && f.Index == t.failAt {
		return nil, errors.New("inference failed")
	}
	return t.perFrame[f.Index], nil
}

type scriptedFactory struct {
	perFrame map[int][]RawDetection
	failAt   int
	sessions int
}

func (f *scriptedFactory) NewSession() Tracker {
	f.sessions++
	return &scriptedTracker{perFrame: f.perFrame, failAt: f.failAt}
}

func testParams() Params {
	return Params{
		Input:         "in.mp4",
		Output:        "out.mp4",
		FPSSample:     30,
		ConfThreshold: 0.3,
		TargetClass:   BirdClass,
	}
}

type panickingTracker struct{}

func (panickingTracker) Track(context.Context, *Frame, float32, int) ([]RawDetection, error) {
	panic("malformed detector output")
}

type panickingFactory struct{}

func (panickingFactory) NewSession() Tracker { return panickingTracker{} }
