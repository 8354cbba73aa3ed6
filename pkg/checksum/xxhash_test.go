package checksum

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	content := []byte(`{"__PatientClass__":true}`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	sum, err := GetFileChecksum(path)

	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%016x", xxhash.Sum64(content)), sum)
	assert.Len(t, sum, 16)

	_, err = GetFileChecksum(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopyWithChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	content := []byte("line one\nline two")
	require.NoError(t, os.WriteFile(path, content, 0644))

	var buf bytes.Buffer
	sum, err := CopyWithChecksum(&buf, path)

	require.NoError(t, err)
	assert.Equal(t, content, buf.Bytes())
	assert.Equal(t, fmt.Sprintf("%016x", xxhash.Sum64(content)), sum)
}
