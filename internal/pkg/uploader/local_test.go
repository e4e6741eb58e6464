package uploader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLocal_Upload(t *testing.T) {
	baseDir := t.TempDir()
	local := NewLocal(baseDir, "/static/uploads")

	staged := stageTempFile(t, "avatar.png", "fake image bytes")
	artifact, err := local.Upload(context.Background(), staged)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.URL, "/static/uploads/"))
	assert.True(t, strings.HasSuffix(artifact.URL, ".png"))
	assert.Equal(t, int64(len("fake image bytes")), artifact.Size)

	// stored under the base dir with the staged copy consumed
	data, err := os.ReadFile(filepath.Join(baseDir, artifact.Path))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_Upload_UniqueNames(t *testing.T) {
	local := NewLocal(t.TempDir(), "/static/uploads")

	a, err := local.Upload(context.Background(), stageTempFile(t, "same.png", "one"))
	require.NoError(t, err)
	b, err := local.Upload(context.Background(), stageTempFile(t, "same.png", "two"))
	require.NoError(t, err)

	assert.NotEqual(t, a.URL, b.URL)
}

func TestLocal_Upload_MissingFile(t *testing.T) {
	local := NewLocal(t.TempDir(), "/static/uploads")

	artifact, err := local.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
	assert.Nil(t, artifact)

	artifact, err = local.Upload(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, artifact)
}
