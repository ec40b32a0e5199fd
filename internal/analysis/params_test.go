package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsValidate(t *testing.T) {
	valid := Params{Input: "in.mp4", Output: "out.mp4", FPSSample: 30, ConfThreshold: 0.3, TargetClass: BirdClass}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(p *Params)
	}{
		{"no input", func(p *Params) { p.Input = "" }},
		{"no output", func(p *Params) { p.Output = "" }},
		{"zero fps sample", func(p *Params) { p.FPSSample = 0 }},
		{"zero confidence", func(p *Params) { p.ConfThreshold = 0 }},
		{"confidence above one", func(p *Params) { p.ConfThreshold = 1.5 }},
		{"negative class", func(p *Params) { p.TargetClass = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}

	one := valid
	one.ConfThreshold = 1
	assert.NoError(t, one.Validate())
}
