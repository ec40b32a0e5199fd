package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateWeightProxy(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want float64
	}{
		{"regular box", Box{10, 10, 50, 60}, 2000},
		{"degenerate width", Box{20, 10, 10, 10}, 0},
		{"degenerate height", Box{0, 30, 10, 10}, 0},
		{"zero area", Box{5, 5, 5, 9}, 0},
		{"negative coordinates", Box{-10, -10, 0, 0}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateWeightProxy(tt.box)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestDetectionLabel(t *testing.T) {
	d := Detection{TrackID: 7, WeightProxy: 1234.9}
	assert.Equal(t, "ID:7 W:1234", DetectionLabel(d))
	assert.Equal(t, "Frame: 3", FrameLabel(3))
	assert.Equal(t, "Count: 0", CountLabel(0))
}
