package analysis

import (
	"fmt"
	"math"
)

const (
	DefaultFPSSample     = 30
	DefaultConfThreshold = 0.3
)

// Params are the inputs of one analysis session.
type Params struct {
	Input  string
	Output string
	// FPSSample is the requested analysis rate. It is validated and recorded
	// but every frame is still processed and written.
	FPSSample     int
	ConfThreshold float32
	TargetClass   int
}

func (p Params) Validate() error {
	if p.Input == "" {
		return fmt.Errorf("%w: input is empty", ErrInvalidParams)
	}
	if p.Output == "" {
		return fmt.Errorf("%w: output is empty", ErrInvalidParams)
	}
	if p.FPSSample <= 0 {
		return fmt.Errorf("%w: fps_sample must be positive, got %d", ErrInvalidParams, p.FPSSample)
	}
	c := float64(p.ConfThreshold)
	if math.IsNaN(c) || c <= 0 || c > 1 {
		return fmt.Errorf("%w: conf_thresh must be in (0,1], got %v", ErrInvalidParams, p.ConfThreshold)
	}
	if p.TargetClass < 0 {
		return fmt.Errorf("%w: target class must not be negative", ErrInvalidParams)
	}
	return nil
}
