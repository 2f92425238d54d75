package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadPredictedBytesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")

	ok := savePredictedBytes(path, 123456)
	require.True(t, ok)

	got, ok := loadPredictedBytes(path)
	require.True(t, ok)
	assert.Equal(t, uint64(123456), got)
}

func TestLoadPredictedBytesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.bin")

	_, ok := loadPredictedBytes(path)
	assert.False(t, ok)
}

func TestLoadPredictedBytesTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, []byte("AAV1"), 0o644))

	_, ok := loadPredictedBytes(path)
	assert.False(t, ok)
}

func TestLoadPredictedBytesForeignMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.bin")
	buf := make([]byte, persistRecordSize)
	copy(buf, []byte("XXXX"))
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, ok := loadPredictedBytes(path)
	assert.False(t, ok)
}

func TestSavePredictedBytesUnwritablePath(t *testing.T) {
	ok := savePredictedBytes(filepath.Join(t.TempDir(), "nonexistent-dir", "session.bin"), 1)
	assert.False(t, ok)
}
