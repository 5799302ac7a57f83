package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirmap/internal/config"
	"github.com/idelchi/dirmap/internal/exclude"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644))
}

// fixture creates:
//
//	docs/a.txt (10), docs/b.txt (20), movie.iso (50), node_modules/x.js (100), link -> docs
func fixture(t *testing.T) (root, cfgPath string) {
	t.Helper()

	root = t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.txt"), 10)
	writeFile(t, filepath.Join(root, "docs", "b.txt"), 20)
	writeFile(t, filepath.Join(root, "movie.iso"), 50)
	writeFile(t, filepath.Join(root, "node_modules", "x.js"), 100)
	require.NoError(t, os.Symlink(filepath.Join(root, "docs"), filepath.Join(root, "link")))

	return root, filepath.Join(t.TempDir(), "config.yaml")
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	color.NoColor = true

	var out, errOut bytes.Buffer

	cmd := New("test").Command()
	cmd.SetArgs(append(args, "--config", cfgPath))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.Execute()

	return out.String(), err
}

func TestRootCommandListsSubcommands(t *testing.T) {
	_, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"scan", "layout", "top", "exclude", "init"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersion(t *testing.T) {
	_, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestScanTable(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "scan", root, "--exclude", "node_modules", "--depth", "0", "--order", "listing")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.ToSlash(root)+"/")
	assert.Contains(t, out, "docs/")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "[symlink]")
	assert.NotContains(t, out, "node_modules")
	assert.Contains(t, out, "3 files, 2 directories, 1 symlinks, 80 B")
	assert.NotContains(t, out, "(partial)")
}

func TestScanDepthLimitsOutput(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "scan", root, "--depth", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "docs/")
	assert.NotContains(t, out, "a.txt")
	assert.Contains(t, out, "180 B")
}

func TestScanWithTop(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "scan", root, "--top", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Top files:")
	assert.Contains(t, out, "'node_modules/x.js'")
}

func TestScanJSON(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "scan", root, "--output", "json", "-e", "*.iso")
	require.NoError(t, err)

	var result struct {
		ID       string `json:"id"`
		Complete bool   `json:"complete"`
		Root     struct {
			Size     int64 `json:"size"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"root"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.NotEmpty(t, result.ID)
	assert.True(t, result.Complete)
	assert.Equal(t, int64(130), result.Root.Size)
	assert.Len(t, result.Root.Children, 3)
}

func TestScanRejectsBadInput(t *testing.T) {
	root, cfgPath := fixture(t)

	_, err := run(t, cfgPath, "scan", filepath.Join(root, "movie.iso"))
	require.Error(t, err)

	_, err = run(t, cfgPath, "scan", root, "--output", "xml")
	require.ErrorContains(t, err, "invalid output format")

	_, err = run(t, cfgPath, "scan", root, "--depth", "-1")
	require.ErrorIs(t, err, errNegativeDepth)

	_, err = run(t, cfgPath, "scan", root, "--exclude", "a/b")
	require.ErrorIs(t, err, exclude.ErrInvalidPattern)
}

func decodeLayout(t *testing.T, out string) layoutView {
	t.Helper()

	var view layoutView
	require.NoError(t, json.Unmarshal([]byte(out), &view))

	return view
}

func TestLayoutJSON(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "layout", root, "-e", "node_modules",
		"--width", "100", "--height", "100", "--padding", "0", "--output", "json")
	require.NoError(t, err)

	view := decodeLayout(t, out)
	assert.Equal(t, []string{filepath.ToSlash(root)}, view.Breadcrumb)
	require.Len(t, view.Tiles, 3)

	var area float64
	for _, tile := range view.Tiles {
		area += tile.Rect.W * tile.Rect.H
	}

	assert.InDelta(t, 10000, area, 1e-6)
}

func TestLayoutZoom(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "layout", root, "--zoom", "docs", "--output", "json")
	require.NoError(t, err)

	view := decodeLayout(t, out)
	assert.Equal(t, []string{filepath.ToSlash(root), "docs"}, view.Breadcrumb)
	require.Len(t, view.Tiles, 2)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, []string{view.Tiles[0].Name, view.Tiles[1].Name})

	_, err = run(t, cfgPath, "layout", root, "--zoom", "movie.iso")
	require.ErrorContains(t, err, "not a directory")

	_, err = run(t, cfgPath, "layout", root, "--zoom", "missing")
	require.ErrorContains(t, err, "not a child")
}

func TestLayoutNestedTable(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "layout", root, "--levels", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "docs/")
	assert.Contains(t, out, "  a.txt")
}

func TestLayoutHitTest(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "layout", root, "-e", "node_modules",
		"--width", "100", "--height", "100", "--padding", "0", "--at", "1,1")
	require.NoError(t, err)
	assert.Contains(t, out, "File: movie.iso\n50 B\n")

	_, err = run(t, cfgPath, "layout", root, "--at", "nope")
	require.ErrorContains(t, err, "invalid point")
}

func TestTopPaths(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "top", root, "-e", "node_modules", "--output", "paths")
	require.NoError(t, err)

	base := filepath.ToSlash(root)
	assert.Equal(t, []string{base + "/movie.iso", base + "/docs/b.txt", base + "/docs/a.txt"},
		strings.Split(strings.TrimSpace(out), "\n"))
}

func TestTopTableAndFilters(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "top", root, "--ext", ".txt", "--min-size", "15B")
	require.NoError(t, err)

	assert.Contains(t, out, "'docs/b.txt'")
	assert.NotContains(t, out, "'docs/a.txt'")
	assert.Contains(t, out, "Total files:")

	_, err = run(t, cfgPath, "top", root, "--min-size", "lots")
	require.ErrorContains(t, err, "invalid min-size")
}

func TestExcludeLifecycle(t *testing.T) {
	root, cfgPath := fixture(t)

	out, err := run(t, cfgPath, "exclude", "add", "node_modules", "*.ISO")
	require.NoError(t, err)
	assert.Equal(t, "Added 2 of 2 rules.\n", out)

	out, err = run(t, cfgPath, "exclude", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "token")
	assert.Contains(t, out, "*.ISO")

	out, err = run(t, cfgPath, "scan", root, "--depth", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "movie.iso", "stored rules apply and match case-insensitively")

	out, err = run(t, cfgPath, "scan", root, "--depth", "0", "--case-sensitive")
	require.NoError(t, err)
	assert.Contains(t, out, "movie.iso")

	out, err = run(t, cfgPath, "exclude", "remove", "*.ISO")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 rules.\n", out)

	_, err = run(t, cfgPath, "exclude", "rm", "*.ISO")
	require.Error(t, err)

	out, err = run(t, cfgPath, "exclude", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 rules.\n", out)

	out, err = run(t, cfgPath, "exclude", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No exclusion rules configured.")
}

func TestExcludeQuick(t *testing.T) {
	root, cfgPath := fixture(t)

	_, err := run(t, cfgPath, "exclude", "quick", filepath.Join(root, "docs", "a.txt"))
	require.NoError(t, err)

	_, err = run(t, cfgPath, "exclude", "quick", filepath.Join(root, "node_modules"))
	require.NoError(t, err)

	_, err = run(t, cfgPath, "exclude", "quick", "--exact", filepath.Join(root, "movie.iso"))
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []exclude.Rule{
		{Kind: exclude.Glob, Value: "*.txt"},
		{Kind: exclude.Token, Value: "node_modules"},
		{Kind: exclude.AbsolutePath, Value: filepath.ToSlash(filepath.Join(root, "movie.iso"))},
	}, cfg.Excludes)

	_, err = run(t, cfgPath, "exclude", "quick", filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 3.5 , 7")
	require.NoError(t, err)
	assert.Equal(t, point{x: 3.5, y: 7, set: true}, p)

	_, err = parsePoint("3")
	require.Error(t, err)

	_, err = parsePoint("a,b")
	require.Error(t, err)
}
