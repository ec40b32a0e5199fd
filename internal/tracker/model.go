package tracker

import (
	"context"

	"flockscope/internal/analysis"
)

const (
	DefaultIoUThreshold = 0.3
	DefaultMaxLost      = 30
)

// Detection is one raw object found by a Detector, before tracking.
type Detection struct {
	Box        analysis.Box
	Confidence float32
	ClassID    int
}

// Detector runs the object detection model on a frame. Implementations must
// hold no per-session state so one Detector can serve many sessions.
type Detector interface {
	Detect(ctx context.Context, canvas analysis.Canvas) ([]Detection, error)
}

type Config struct {
	IoUThreshold float64 `yaml:"iouThreshold"`
	MaxLost      int     `yaml:"maxLost"`
}

func DefaultConfig() Config {
	return Config{
		IoUThreshold: DefaultIoUThreshold,
		MaxLost:      DefaultMaxLost,
	}
}

// Model is the shared, read-only part of tracking. Identity state lives in
// the Sessions it creates.
type Model struct {
	detector Detector
	conf     Config
}

func NewModel(detector Detector, conf Config) *Model {
	if conf.IoUThreshold <= 0 {
		conf.IoUThreshold = DefaultIoUThreshold
	}
	if conf.MaxLost < 0 {
		conf.MaxLost = DefaultMaxLost
	}
	return &Model{
		detector: detector,
		conf:     conf,
	}
}

// NewSession returns a tracker with empty identity memory.
func (m *Model) NewSession() analysis.Tracker {
	return newSession(m)
}
