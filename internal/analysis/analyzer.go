package analysis

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"flockscope/pkg/log"
)

const progressInterval = 5 * time.Second

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateOpened
	StateProcessing
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpened:
		return "opened"
	case StateProcessing:
		return "processing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Analyzer runs analysis sessions. It is safe for concurrent use as long as
// the backend and tracker factory are.
type Analyzer struct {
	backend  Backend
	trackers TrackerFactory
}

func NewAnalyzer(backend Backend, trackers TrackerFactory) *Analyzer {
	return &Analyzer{
		backend:  backend,
		trackers: trackers,
	}
}

// Analyze runs one session to completion.
func (a *Analyzer) Analyze(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return a.NewSession(ctx, p).Run(ctx)
}

// NewSession prepares a session with a tracker of its own.
func (a *Analyzer) NewSession(ctx context.Context, p Params) *Session {
	return &Session{
		params:    p,
		backend:   a.backend,
		tracker:   a.trackers.NewSession(),
		annotator: a.backend.Annotator(),
		registrar: NewTrackRegistrar(),
		series:    NewTimeSeries(),
		state:     StateIdle,
		logger:    log.GetLogger(ctx).WithField("input", p.Input),
	}
}

// Session is one sequential pass over an input video.
type Session struct {
	params    Params
	backend   Backend
	tracker   Tracker
	annotator Annotator
	source    FrameSource
	sink      VideoSink
	meta      Metadata
	registrar *TrackRegistrar
	series    *TimeSeries
	frameIdx  int
	state     State
	err       error
	logger    *logrus.Entry
}

func (s *Session) State() State {
	return s.state
}

// Err returns the failure that moved the session to StateFailed.
func (s *Session) Err() error {
	return s.err
}

func (s *Session) Metadata() Metadata {
	return s.meta
}

// Run drives the frame loop. No partial result is returned on failure.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if s.state != StateIdle {
		return nil, errors.New("session already started")
	}
	if err := s.open(); err != nil {
		return nil, s.fail(err)
	}
	// release is idempotent; this covers panics from collaborators.
	defer s.release()

	s.state = StateProcessing
	if err := s.process(ctx); err != nil {
		s.release()
		return nil, s.fail(err)
	}

	s.state = StateFinalizing
	if err := s.release(); err != nil {
		return nil, s.fail(err)
	}
	result := s.assemble()
	s.state = StateDone

	s.logger.WithFields(logrus.Fields{
		"frames": result.TotalFramesProcessed,
		"tracks": result.UniqueBirdsTracked,
	}).Info("analysis finished")
	return result, nil
}

func (s *Session) open() error {
	source, err := s.backend.OpenSource(s.params.Input)
	if err != nil {
		return &SourceOpenError{Path: s.params.Input, Err: err}
	}
	s.meta = source.Metadata()
	s.logger.Infof("video properties: %dx%d @ %.2f FPS, %d frames",
		s.meta.Width, s.meta.Height, s.meta.FPS, s.meta.TotalFrames)

	sink, err := s.backend.OpenSink(s.params.Output, s.meta)
	if err != nil {
		source.Close()
		return &SinkOpenError{Path: s.params.Output, Err: err}
	}
	s.source = source
	s.sink = sink
	s.state = StateOpened
	return nil
}

func (s *Session) process(ctx context.Context) error {
	frameCount := 0
	totalTrackTime := time.Duration(0)
	lastLogTime := time.Now()

	for {
		canvas, err := s.source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return &SourceReadError{Frame: s.frameIdx, Err: err}
		}

		start := time.Now()
		err = s.processFrame(ctx, &Frame{Index: s.frameIdx, Canvas: canvas})
		canvas.Close()
		if err != nil {
			return err
		}
		totalTrackTime += time.Since(start)
		frameCount++
		s.frameIdx++

		if time.Since(lastLogTime) > progressInterval {
			s.logger.Infof("processed %d/%d frames, avg frame time: %v",
				s.frameIdx, s.meta.TotalFrames, totalTrackTime/time.Duration(frameCount))
			lastLogTime = time.Now()
			frameCount = 0
			totalTrackTime = 0
		}
	}
}

// processFrame aggregates before annotating so overlay failures never touch
// the numbers already recorded for the frame.
func (s *Session) processFrame(ctx context.Context, frame *Frame) error {
	raw, err := s.tracker.Track(ctx, frame, s.params.ConfThreshold, s.params.TargetClass)
	if err != nil {
		return &DetectionError{Frame: frame.Index, Err: err}
	}

	dets := make([]Detection, len(raw))
	for i, r := range raw {
		dets[i] = Detection{
			TrackID:     r.TrackID,
			Box:         r.Box,
			Confidence:  r.Confidence,
			WeightProxy: EstimateWeightProxy(r.Box),
		}
		if s.registrar.Observe(r.TrackID, frame.Index, r.Confidence, r.Box) {
			s.logger.Debugf("track %d first seen at frame %d", r.TrackID, frame.Index)
		}
	}
	stat := s.series.Summarize(frame.Index, dets, s.meta.FPS)

	if err := s.annotator.Annotate(frame, dets, stat.Count); err != nil {
		s.logger.WithError(err).Warnf("annotate frame %d", frame.Index)
	}

	if err := s.sink.Write(frame); err != nil {
		return &SinkWriteError{Frame: frame.Index, Err: err}
	}
	return nil
}

// release closes both handles. A sink close failure means the artifact was
// not flushed and is reported as a write error.
func (s *Session) release() error {
	var sinkErr error
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			sinkErr = &SinkWriteError{Frame: s.frameIdx, Err: err}
		}
		s.sink = nil
	}
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			s.logger.WithError(err).Warn("close source")
		}
		s.source = nil
	}
	return sinkErr
}

func (s *Session) fail(err error) error {
	s.state = StateFailed
	s.err = err
	s.logger.WithError(err).WithField("frame", s.frameIdx).Error("analysis failed")
	return err
}

func (s *Session) assemble() *Result {
	return &Result{
		TotalFramesProcessed: s.frameIdx,
		CountsTimeseries:     s.series.Stats(),
		UniqueBirdsTracked:   s.registrar.Len(),
		TracksSample:         s.registrar.Records(),
		WeightSummary:        WeightSummary,
	}
}
