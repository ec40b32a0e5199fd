package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "flockscope.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
addr: 0.0.0.0:9000
workDir: /var/lib/flockscope
triton:
  serverAddr: triton:8001
  modelName: bird-yolo
analysis:
  confThreshold: 0.5
  backend: imageseq
tracker:
  maxLost: 5
`)

	conf, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", conf.Addr)
	assert.Equal(t, "triton:8001", conf.Triton.ServerAddr)
	assert.Equal(t, "bird-yolo", conf.Triton.ModelName)
	assert.Equal(t, "1", conf.Triton.ModelVersion)
	assert.Equal(t, float32(0.5), conf.Analysis.ConfThreshold)
	assert.Equal(t, 14, conf.Analysis.TargetClass)
	assert.Equal(t, BackendImageSeq, conf.Analysis.Backend)
	assert.Equal(t, 5, conf.Tracker.MaxLost)
	assert.Equal(t, 0.3, conf.Tracker.IoUThreshold)
	assert.Equal(t, "/var/lib/flockscope/artifacts", conf.ArtifactDir())
	assert.Equal(t, "/var/lib/flockscope/data", conf.DataDir())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"confidence": "analysis:\n  confThreshold: 1.5\n",
		"backend":    "analysis:\n  backend: ffmpeg\n",
		"store":      "store:\n  driver: sqlite\n",
		"s3 bucket":  "s3:\n  enabled: true\n  bucket: \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}
