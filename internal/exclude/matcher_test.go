package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherGlob(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: Glob, Value: "*.iso"}})
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		excluded bool
	}{
		{"movie.iso", "/data/movie.iso", true},
		{"archive.ISO", "/data/archive.ISO", true},
		{"isolation.txt", "/data/isolation.txt", false},
		{"iso", "/data/iso", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.excluded, m.IsExcluded(tt.name, tt.path))
		})
	}
}

func TestMatcherGlobFullPath(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: Glob, Value: "*/cache/*"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("blob", "/home/u/.app/cache/blob"))
	assert.True(t, m.IsExcluded("x", "/home/u/cache/deep/nested/x"), "star crosses separators")
	assert.False(t, m.IsExcluded("cache", "/home/u/cache"))
	assert.False(t, m.IsExcluded("caches", "/home/u/caches/x2"))
}

func TestMatcherGlobQuestionAndClass(t *testing.T) {
	m, err := NewMatcher([]Rule{
		{Kind: Glob, Value: "log?.txt"},
		{Kind: Glob, Value: "core.[0-9]*"},
		{Kind: Glob, Value: "tmp[!a]"},
	})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("log1.txt", "/v/log1.txt"))
	assert.False(t, m.IsExcluded("log12.txt", "/v/log12.txt"))
	assert.True(t, m.IsExcluded("core.1234", "/v/core.1234"))
	assert.False(t, m.IsExcluded("core.x", "/v/core.x"))
	assert.True(t, m.IsExcluded("tmpb", "/v/tmpb"))
	assert.False(t, m.IsExcluded("tmpa", "/v/tmpa"))
}

func TestMatcherUnterminatedClassIsLiteral(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: Glob, Value: "a[b"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("a[b", "/v/a[b"))
	assert.False(t, m.IsExcluded("ab", "/v/ab"))
}

func TestMatcherToken(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: Token, Value: "node_modules"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("node_modules", "/src/app/node_modules"))
	assert.True(t, m.IsExcluded("Node_Modules", "/src/app/Node_Modules"))
	assert.False(t, m.IsExcluded("my_node_modules_backup", "/src/my_node_modules_backup"))
}

func TestMatcherAbsolutePath(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: AbsolutePath, Value: "/srv/data/"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("data", "/srv/data"))
	assert.True(t, m.IsExcluded("file", "/srv/data/sub/file"))
	assert.True(t, m.IsExcluded("FILE", "/SRV/Data/FILE"))
	assert.False(t, m.IsExcluded("database", "/srv/database"), "prefix must end on a segment boundary")
	assert.False(t, m.IsExcluded("srv", "/srv"))
}

func TestMatcherFilesystemRootRule(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: AbsolutePath, Value: "/"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("etc", "/etc"))
}

func TestMatcherCaseSensitive(t *testing.T) {
	m, err := NewMatcher([]Rule{
		{Kind: Glob, Value: "*.iso"},
		{Kind: Token, Value: "Build"},
		{Kind: AbsolutePath, Value: "/Data"},
	}, WithCaseSensitive(true))
	require.NoError(t, err)
	assert.True(t, m.CaseSensitive())

	assert.True(t, m.IsExcluded("movie.iso", "/x/movie.iso"))
	assert.False(t, m.IsExcluded("movie.ISO", "/x/movie.ISO"))
	assert.True(t, m.IsExcluded("Build", "/x/Build"))
	assert.False(t, m.IsExcluded("build", "/x/build"))
	assert.True(t, m.IsExcluded("f", "/Data/f"))
	assert.False(t, m.IsExcluded("f", "/data/f"))
}

func TestMatcherUnicodeFolding(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: Token, Value: "ÄRGER"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("ärger", "/x/ärger"))
}

func TestMatcherBackslashPath(t *testing.T) {
	m, err := NewMatcher([]Rule{{Kind: Glob, Value: "*/tmp/*"}})
	require.NoError(t, err)

	assert.True(t, m.IsExcluded("x", `C:\work\tmp\x`))
}

func TestMatcherInvalidRulesReported(t *testing.T) {
	m, err := NewMatcher([]Rule{
		{Kind: Token, Value: ""},
		{Kind: AbsolutePath, Value: "relative/dir"},
		{Kind: Token, Value: ".git"},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmptyRule)
	require.ErrorIs(t, err, ErrInvalidPattern)

	assert.Len(t, m.Rules(), 1)
	assert.True(t, m.IsExcluded(".git", "/r/.git"))
}

func TestNilMatcherExcludesNothing(t *testing.T) {
	var m *Matcher

	assert.True(t, m.Empty())
	assert.False(t, m.IsExcluded("anything", "/anything"))
	assert.Nil(t, m.Rules())
}

func TestIsExcludedHelper(t *testing.T) {
	rules := []Rule{
		{Kind: Glob, Value: "*.iso"},
		{Kind: Token, Value: ""},
	}

	assert.True(t, IsExcluded(rules, "a.ISO", "/a.ISO"))
	assert.False(t, IsExcluded(rules, "a.txt", "/a.txt"))
}
