package analysis

import (
	"context"
	"image"
)

// WeightSummary is the fixed caveat attached to every Result.
const WeightSummary = "Values are pixel area (Width * Height). Calibration required for grams."

// BirdClass is the COCO class id of "bird".
const BirdClass = 14

// Box is an axis aligned bounding box in pixel coordinates.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b Box) Array() [4]int {
	return [4]int{b.X1, b.Y1, b.X2, b.Y2}
}

func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// RawDetection is one tracked object as reported by a Tracker.
type RawDetection struct {
	TrackID    int
	Box        Box
	Confidence float32
}

// Detection is a RawDetection with its derived weight proxy.
type Detection struct {
	TrackID     int
	Box         Box
	Confidence  float32
	WeightProxy float64
}

// Canvas is the pixel buffer of one decoded frame. Backends type-assert it
// to their concrete representation.
type Canvas interface {
	Size() (width, height int)
	Close() error
}

// Frame is one decoded picture at a position in the stream.
type Frame struct {
	Index  int
	Canvas Canvas
}

// Metadata describes the source stream.
type Metadata struct {
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TotalFrames int     `json:"totalFrames"`
}

// FrameSource supplies decoded frames in order. Next returns io.EOF once the
// stream is exhausted.
type FrameSource interface {
	Metadata() Metadata
	Next() (Canvas, error)
	Close() error
}

// VideoSink persists annotated frames into the output artifact.
type VideoSink interface {
	Write(f *Frame) error
	Close() error
}

// Tracker detects target objects in a frame and assigns track ids that stay
// stable for the lifetime of the Tracker.
type Tracker interface {
	Track(ctx context.Context, f *Frame, confThresh float32, targetClass int) ([]RawDetection, error)
}

// TrackerFactory hands out one isolated Tracker per analysis session.
type TrackerFactory interface {
	NewSession() Tracker
}

// Annotator draws overlays on a frame in place.
type Annotator interface {
	Annotate(f *Frame, dets []Detection, count int) error
}

// Backend opens the sources and sinks of one media kind.
type Backend interface {
	OpenSource(path string) (FrameSource, error)
	OpenSink(path string, meta Metadata) (VideoSink, error)
	Annotator() Annotator
}

// TrackRecord is the first observed state of one track id.
type TrackRecord struct {
	FirstSeenFrame int     `json:"first_seen_frame" jsonschema:"description=Frame index where the track was first observed"`
	Confidence     float32 `json:"confidence" jsonschema:"description=Detection confidence at first sighting"`
	SampleBox      [4]int  `json:"sample_box" jsonschema:"description=x1 y1 x2 y2 of the first sighting"`
}

// FrameStat summarizes one processed frame.
type FrameStat struct {
	TimeSec        float64 `json:"time_sec" jsonschema:"description=Frame timestamp in seconds rounded to 2 decimals"`
	Count          int     `json:"count" jsonschema:"description=Birds detected in the frame"`
	AvgWeightProxy float64 `json:"avg_weight_proxy" jsonschema:"description=Mean box area in square pixels or 0"`
}

// Result is the analysis record of one completed session.
type Result struct {
	TotalFramesProcessed int                 `json:"total_frames_processed"`
	CountsTimeseries     []FrameStat         `json:"counts_timeseries"`
	UniqueBirdsTracked   int                 `json:"unique_birds_tracked"`
	TracksSample         map[int]TrackRecord `json:"tracks_sample" jsonschema:"description=First sighting of every track keyed by track id"`
	WeightSummary        string              `json:"weight_summary"`
}
