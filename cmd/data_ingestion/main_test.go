package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Run("repeatable mrn and switches", func(t *testing.T) {
		f, err := parseFlags([]string{
			"--config", "records.yaml", "--local", "/cache",
			"--mrn", "100", "--mrn", "0200", "--approved-only", "--force-sync",
			"--export", "/out", "--export-full",
		})

		require.NoError(t, err)
		assert.Equal(t, "records.yaml", f.configPath)
		assert.Equal(t, "/cache", f.local)
		assert.Equal(t, []string{"100", "0200"}, f.opts.MRNs)
		assert.True(t, f.opts.ApprovedOnly)
		assert.True(t, f.opts.ForceSync)
		assert.False(t, f.opts.SkipSync)
		assert.Equal(t, "/out", f.export)
		assert.True(t, f.exportFull)
	})

	t.Run("defaults", func(t *testing.T) {
		f, err := parseFlags(nil)

		require.NoError(t, err)
		assert.Empty(t, f.opts.MRNs)
		assert.False(t, f.opts.ApprovedOnly)
		assert.Empty(t, f.export)
	})

	t.Run("positional arguments are rejected", func(t *testing.T) {
		_, err := parseFlags([]string{"some/path"})
		assert.ErrorContains(t, err, "unexpected argument")
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := parseFlags([]string{"--nope"})
		assert.Error(t, err)
	})

	t.Run("help", func(t *testing.T) {
		_, err := parseFlags([]string{"--help"})
		assert.ErrorIs(t, err, pflag.ErrHelp)
	})
}
