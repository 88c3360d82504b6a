package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hxt/internal/adapters/manifest"
	"go.trai.ch/hxt/internal/core/domain"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".manifest.resources")
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func TestRead(t *testing.T) {
	path := writeManifest(t, `[
  {"file": "resources.tf", "hash": "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
  {"file": "outputs.tf", "hash": "a9993e364706816aba3e25717850c26c9cd0d89d"}
]
`)

	entries, err := manifest.NewReader().Read(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ManifestEntry{
		{File: "resources.tf", Hash: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{File: "outputs.tf", Hash: "a9993e364706816aba3e25717850c26c9cd0d89d"},
	}, entries)
}

func TestRead_Missing(t *testing.T) {
	entries, err := manifest.NewReader().Read(filepath.Join(t.TempDir(), ".manifest.adhoc"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRead_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":     `[{"file": `,
		"not an array": `{"file": "a.tf"}`,
		"no file name": `[{"hash": "abc"}]`,
		"numeric name": `[{"file": 3}]`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.NewReader().Read(writeManifest(t, content))
			require.ErrorIs(t, err, domain.ErrManifestInvalid)
		})
	}
}
