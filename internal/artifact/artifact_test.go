package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flockscope/internal/config"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "artifacts"), config.S3Config{})
	require.NoError(t, err)
	return s
}

func TestResolve(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path("a_output.mp4"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(s.Path("sub"), 0755))

	p, err := s.Resolve("a_output.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "a_output.mp4"), p)

	_, err = s.Resolve("missing.mp4")
	assert.True(t, errors.Is(err, os.ErrNotExist))

	for _, name := range []string{"", ".", "..", "../etc/passwd", "sub/x", `..\x`, "sub"} {
		_, err := s.Resolve(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path("a.mp4"), []byte("x"), 0644))

	require.NoError(t, s.Remove("a.mp4"))
	_, err := os.Stat(s.Path("a.mp4"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove("a.mp4"))
}

func TestUploadDisabled(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.UploadEnabled())
	p, err := s.Upload(context.Background(), "a.mp4", "/x/a.mp4")
	assert.NoError(t, err)
	assert.Empty(t, p)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/mp4", ContentType("/tmp/a_output.MP4"))
	assert.Equal(t, "image/jpeg", ContentType("frame_000001.jpg"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
