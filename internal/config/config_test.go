package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirmap/internal/exclude"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `
excludes:
  - kind: glob
    value: "*.iso"
  - kind: token
    value: node_modules
case_sensitive: true
canvas:
  width: 800
progress_interval: 250ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []exclude.Rule{
		{Kind: exclude.Glob, Value: "*.iso"},
		{Kind: exclude.Token, Value: "node_modules"},
	}, cfg.Excludes)
	assert.True(t, cfg.CaseSensitive)
	assert.InDelta(t, 800.0, cfg.Canvas.Width, 0)
	assert.InDelta(t, 600.0, cfg.Canvas.Height, 0, "unset fields keep their defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, 10, cfg.Top)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "excludes: [unterminated"},
		{name: "unknown kind", content: "excludes:\n  - kind: regex\n    value: x\n"},
		{name: "relative path rule", content: "excludes:\n  - kind: path\n    value: relative/dir\n"},
		{name: "negative canvas", content: "canvas:\n  width: -1\n"},
		{name: "negative top", content: "top: -3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Excludes = []exclude.Rule{{Kind: exclude.AbsolutePath, Value: "/var/cache"}}
	cfg.Canvas.Padding = 2

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: path")

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := Default()
	cfg.Excludes = []exclude.Rule{{Kind: exclude.Token, Value: "a/b"}}

	require.ErrorIs(t, Save(path, cfg), exclude.ErrInvalidPattern)
	assert.NoFileExists(t, path)
}

func TestAddRemoveRules(t *testing.T) {
	cfg := Default()
	iso := exclude.Rule{Kind: exclude.Glob, Value: "*.iso"}
	nm := exclude.Rule{Kind: exclude.Token, Value: "node_modules"}

	assert.Equal(t, 2, cfg.AddRules(iso, nm, iso))
	assert.Equal(t, 0, cfg.AddRules(nm))
	assert.Equal(t, []exclude.Rule{iso, nm}, cfg.Excludes)

	assert.Equal(t, 1, cfg.RemoveRules(iso, exclude.Rule{Kind: exclude.Token, Value: "other"}))
	assert.Equal(t, []exclude.Rule{nm}, cfg.Excludes)
}

func TestUpdateSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := Update(path, func(c *Config) error {
				c.AddRules(exclude.Rule{Kind: exclude.Token, Value: string(rune('a' + i))})

				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Excludes, 8)
}

func TestMatcherHonorsCasePolicy(t *testing.T) {
	cfg := Default()
	cfg.AddRules(exclude.Rule{Kind: exclude.Glob, Value: "*.iso"})

	m, err := cfg.Matcher(exclude.Rule{Kind: exclude.Token, Value: "build"})
	require.NoError(t, err)
	assert.True(t, m.IsExcluded("DISK.ISO", "/x/DISK.ISO"))
	assert.True(t, m.IsExcluded("build", "/x/build"))

	cfg.CaseSensitive = true
	m, err = cfg.Matcher()
	require.NoError(t, err)
	assert.False(t, m.IsExcluded("DISK.ISO", "/x/DISK.ISO"))
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("dirmap", FileName), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}
