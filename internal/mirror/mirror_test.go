package mirror

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ThiagoRGoveia/treatment-records/internal/clock"
	"github.com/ThiagoRGoveia/treatment-records/internal/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func newMirror(remote, local string, clk clock.Clock) *Mirror {
	worker := ingestion.NewAsyncWorker(ingestion.AsyncWorkerConfig{NumWorkers: 3}, nil)
	return New(Config{RemoteRoot: remote, LocalRoot: local}, worker, clk, nil)
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	contents := make(map[string]string)
	for _, name := range listDir(t, dir) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		contents[name] = string(data)
	}
	return contents
}

func TestMirror_Sync(t *testing.T) {
	const (
		a = "A_2024.1.1.0.0.json"
		b = "B_2024.1.1.0.0.json"
		c = "C_2023.1.1.0.0.json"
		d = "D_2024.1.1.0.0.json"
	)
	remote := t.TempDir()
	local := t.TempDir()
	writeFile(t, filepath.Join(remote, "DB1", a), "remote A")
	writeFile(t, filepath.Join(remote, "DB1", b), "remote B")
	writeFile(t, filepath.Join(remote, "DB1", "notes.txt"), "not copied")
	writeFile(t, filepath.Join(remote, "DB2", d), "remote D")
	writeFile(t, filepath.Join(local, "DB1", c), "local C")
	writeFile(t, filepath.Join(local, "DB1", "keep.txt"), "left alone")
	writeFile(t, filepath.Join(local, "DB2", d), "local D")

	m := newMirror(remote, local, clock.Fake(start))
	report, err := m.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"DB1", "DB2"}, report.Databases)
	assert.Equal(t, []string{"DB1/" + a, "DB1/" + b}, report.Copied)
	assert.Equal(t, []string{"DB1/" + c}, report.Deleted)
	assert.Empty(t, report.Failures)
	assert.False(t, report.Skipped)

	assert.Equal(t, map[string]string{
		a:          "remote A",
		b:          "remote B",
		"keep.txt": "left alone",
	}, readDir(t, filepath.Join(local, "DB1")))

	t.Run("same-name files are not recopied", func(t *testing.T) {
		assert.Equal(t, map[string]string{d: "local D"}, readDir(t, filepath.Join(local, "DB2")))
	})

	t.Run("writes the marker", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(local, MarkerName))
		require.NoError(t, err)
		assert.Equal(t, "2024.3.5.14", string(data))
	})
}

func TestMirror_SyncConverges(t *testing.T) {
	remote := t.TempDir()
	local := t.TempDir()
	writeFile(t, filepath.Join(remote, "DB1", "A_2024.1.1.0.0.json"), "remote A")
	writeFile(t, filepath.Join(remote, "DB1", "B_2024.1.1.0.0.json"), "remote B")
	writeFile(t, filepath.Join(local, "DB1", "C_2023.1.1.0.0.json"), "local C")

	clk := clock.Fake(start)
	m := newMirror(remote, local, clk)
	_, err := m.Sync(context.Background())
	require.NoError(t, err)
	before := readDir(t, filepath.Join(local, "DB1"))
	assert.Equal(t, readDir(t, filepath.Join(remote, "DB1")), before)

	clk.Advance(2 * time.Hour)
	report, err := m.Sync(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Copied)
	assert.Empty(t, report.Deleted)
	assert.Equal(t, before, readDir(t, filepath.Join(local, "DB1")))

	data, err := os.ReadFile(filepath.Join(local, MarkerName))
	require.NoError(t, err)
	assert.Equal(t, "2024.3.5.16", string(data))
}

func TestMirror_SyncIfStale(t *testing.T) {
	tests := []struct {
		name      string
		marker    *string
		wantStale bool
	}{
		{"missing marker", nil, true},
		{"unparsable marker", ptr("yesterday"), true},
		{"written this hour", ptr("2024.3.5.14"), false},
		{"under a day old", ptr("2024.3.4.15"), false},
		{"exactly a day old", ptr("2024.3.4.14"), true},
		{"older than a day", ptr("2023.12.31.9"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := t.TempDir()
			local := t.TempDir()
			writeFile(t, filepath.Join(remote, "DB1", "A_2024.1.1.0.0.json"), "remote A")
			if tt.marker != nil {
				writeFile(t, filepath.Join(local, MarkerName), *tt.marker)
			}

			m := newMirror(remote, local, clock.Fake(start))
			assert.Equal(t, tt.wantStale, m.IsStale())

			report, err := m.SyncIfStale(context.Background())

			require.NoError(t, err)
			assert.Equal(t, !tt.wantStale, report.Skipped)
			_, statErr := os.Stat(filepath.Join(local, "DB1", "A_2024.1.1.0.0.json"))
			assert.Equal(t, tt.wantStale, statErr == nil)
		})
	}
}

func TestMirror_SyncErrors(t *testing.T) {
	t.Run("missing remote root", func(t *testing.T) {
		local := t.TempDir()
		m := newMirror(filepath.Join(t.TempDir(), "missing"), local, clock.Fake(start))

		_, err := m.Sync(context.Background())

		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(local, MarkerName))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("cancelled context", func(t *testing.T) {
		remote := t.TempDir()
		writeFile(t, filepath.Join(remote, "DB1", "A_2024.1.1.0.0.json"), "remote A")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newMirror(remote, t.TempDir(), clock.Fake(start)).Sync(ctx)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMarker(t *testing.T) {
	assert.Equal(t, "2024.3.5.9", formatMarker(time.Date(2024, 3, 5, 9, 59, 0, 0, time.UTC)))

	got, err := parseMarker("2024.3.5.9", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2024.3.5", "2024.3.5.x", "2024.3.5.9.0"} {
		_, err := parseMarker(bad, time.UTC)
		assert.Error(t, err, bad)
	}
}

func ptr(s string) *string { return &s }
