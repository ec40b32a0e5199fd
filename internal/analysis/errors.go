package analysis

import (
	"errors"
	"fmt"
)

var ErrInvalidParams = errors.New("invalid analysis params")

// SourceOpenError reports that the input could not be opened.
type SourceOpenError struct {
	Path string
	Err  error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("open source %s: %v", e.Path, e.Err)
}

func (e *SourceOpenError) Unwrap() error { return e.Err }

// SourceReadError reports a frame that could not be decoded mid-stream.
type SourceReadError struct {
	Frame int
	Err   error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read frame %d: %v", e.Frame, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// SinkOpenError reports that the output artifact could not be created.
type SinkOpenError struct {
	Path string
	Err  error
}

func (e *SinkOpenError) Error() string {
	return fmt.Sprintf("open sink %s: %v", e.Path, e.Err)
}

func (e *SinkOpenError) Unwrap() error { return e.Err }

// DetectionError reports a tracker fault.
type DetectionError struct {
	Frame int
	Err   error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detect frame %d: %v", e.Frame, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// SinkWriteError reports that a frame could not be written to the output.
type SinkWriteError struct {
	Frame int
	Err   error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("write frame %d: %v", e.Frame, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }
