package analysis

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// TimeSeries is the append-only list of per-frame statistics of a session.
type TimeSeries struct {
	stats []FrameStat
}

func NewTimeSeries() *TimeSeries {
	return &TimeSeries{
		stats: make([]FrameStat, 0, 256),
	}
}

// Summarize appends and returns the FrameStat of one frame.
func (t *TimeSeries) Summarize(frameIndex int, dets []Detection, sourceFPS float64) FrameStat {
	fs := FrameStat{
		TimeSec:        FrameTime(frameIndex, sourceFPS),
		Count:          len(dets),
		AvgWeightProxy: meanWeightProxy(dets),
	}
	t.stats = append(t.stats, fs)
	return fs
}

func (t *TimeSeries) Len() int {
	return len(t.stats)
}

// Stats returns a copy of the series.
func (t *TimeSeries) Stats() []FrameStat {
	out := make([]FrameStat, len(t.stats))
	copy(out, t.stats)
	return out
}

// FrameTime returns frameIndex/fps rounded to two decimals, exact ties to
// even (0.125 -> 0.12). Unusable frame rates map every frame to 0.
func FrameTime(frameIndex int, fps float64) float64 {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0
	}
	t, _ := strconv.ParseFloat(strconv.FormatFloat(float64(frameIndex)/fps, 'f', 2, 64), 64)
	return t
}

func meanWeightProxy(dets []Detection) float64 {
	if len(dets) == 0 {
		return 0
	}
	weights := make([]float64, len(dets))
	for i, d := range dets {
		weights[i] = d.WeightProxy
	}
	return stat.Mean(weights, nil)
}
