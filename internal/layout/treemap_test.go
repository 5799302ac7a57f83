package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirmap/internal/tree"
)

func sampleTree() *tree.Entry {
	return &tree.Entry{
		Name: "r", Path: "/r", Kind: tree.Directory, Size: 100,
		Children: []*tree.Entry{
			{Name: "small.txt", Path: "/r/small.txt", Kind: tree.File, Size: 10},
			{
				Name: "big", Path: "/r/big", Kind: tree.Directory, Size: 90,
				Children: []*tree.Entry{
					{Name: "x", Path: "/r/big/x", Kind: tree.File, Size: 60},
					{Name: "y", Path: "/r/big/y", Kind: tree.File, Size: 30},
				},
			},
			{Name: "link", Path: "/r/link", Kind: tree.Symlink},
		},
	}
}

func TestChildren(t *testing.T) {
	root := sampleTree()
	r := Rect{W: 100, H: 10}

	tiles := Children(root, r)
	require.Len(t, tiles, 3)

	for i, tile := range tiles {
		assert.Same(t, root.Children[i], tile.Entry)
		assert.Zero(t, tile.Depth)
	}

	assert.InDelta(t, 100.0, tiles[0].Rect.Area(), 1e-9)
	assert.InDelta(t, 900.0, tiles[1].Rect.Area(), 1e-9)
	assert.Zero(t, tiles[2].Rect.Area())
}

func TestChildrenOfLeaf(t *testing.T) {
	assert.Nil(t, Children(sampleTree().Children[0], Rect{W: 1, H: 1}))
	assert.Nil(t, Children(nil, Rect{W: 1, H: 1}))
}

func TestNestedDescendsIntoDirectories(t *testing.T) {
	root := sampleTree()
	r := Rect{W: 100, H: 100}

	tiles := Nested(root, r, Options{MaxDepth: 2, Padding: 2})
	require.Len(t, tiles, 5)

	big := tiles[1]
	assert.Equal(t, "big", big.Entry.Name)

	inner := big.Rect.Inset(2)

	var nested []Tile

	for _, tile := range tiles {
		if tile.Depth == 1 {
			nested = append(nested, tile)
		}
	}

	require.Len(t, nested, 2)

	var sum float64

	for _, tile := range nested {
		sum += tile.Rect.Area()
		assert.GreaterOrEqual(t, tile.Rect.X, inner.X-tolerance)
		assert.LessOrEqual(t, tile.Rect.X+tile.Rect.W, inner.X+inner.W+tolerance)
	}

	assert.InDelta(t, inner.Area(), sum, 1e-6)
	assert.InDelta(t, 2.0, nested[0].Rect.Area()/nested[1].Rect.Area(), 1e-9)
}

func TestNestedRespectsDepthAndMinArea(t *testing.T) {
	root := sampleTree()
	r := Rect{W: 100, H: 100}

	assert.Len(t, Nested(root, r, Options{}), 3)
	assert.Len(t, Nested(root, r, Options{MaxDepth: 3, MinArea: 1e6}), 3)
}

func TestHitTestPrefersDeepest(t *testing.T) {
	root := sampleTree()
	tiles := Nested(root, Rect{W: 100, H: 100}, Options{MaxDepth: 2})

	var big *Tile

	for i := range tiles {
		if tiles[i].Entry.Name == "big" {
			big = &tiles[i]
		}
	}

	require.NotNil(t, big)

	hit := HitTest(tiles, big.Rect.X+0.5, big.Rect.Y+0.5)
	require.NotNil(t, hit)
	assert.Equal(t, 1, hit.Depth)
	assert.Contains(t, []string{"x", "y"}, hit.Entry.Name)

	assert.Nil(t, HitTest(tiles, -1, -1))
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 4}

	assert.Equal(t, Rect{X: 1, Y: 1, W: 8, H: 2}, r.Inset(1))
	assert.Equal(t, Rect{X: 5, Y: 2, W: 0, H: 0}, r.Inset(10))
	assert.True(t, r.Contains(0, 0))
	assert.False(t, r.Contains(10, 2))
	assert.InDelta(t, 4.0, r.Overlap(Rect{X: 8, Y: 2, W: 5, H: 5}), 1e-12)
	assert.Zero(t, r.Overlap(Rect{X: 10, Y: 0, W: 1, H: 1}))
	assert.Equal(t, "(0.0,0.0 10.0×4.0)", r.String())
}
