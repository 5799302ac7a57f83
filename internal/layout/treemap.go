package layout

import "github.com/idelchi/dirmap/internal/tree"

// Tile pairs an entry with the rectangle it occupies.
type Tile struct {
	Entry *tree.Entry `json:"-"`
	Rect  Rect        `json:"rect"`
	// Depth is 0 for children of the laid-out node, 1 for grandchildren, and so on.
	Depth int `json:"depth"`
}

// Options controls Nested.
type Options struct {
	// MaxDepth limits how many levels are laid out. Values below 1 mean one level.
	MaxDepth int
	// Padding insets each directory tile before its children are laid out.
	Padding float64
	// MinArea stops descending into tiles smaller than this.
	MinArea float64
}

// Children lays out the direct children of e inside r. Tile i belongs to
// e.Children[i]; zero-size children keep a zero-area tile.
func Children(e *tree.Entry, r Rect) []Tile {
	if e == nil || len(e.Children) == 0 {
		return nil
	}

	items := make([]Item, len(e.Children))
	for i, child := range e.Children {
		items[i] = Item{ID: child.Path, Size: child.Size}
	}

	placements := Squarify(items, r)

	tiles := make([]Tile, len(placements))
	for i, p := range placements {
		tiles[i] = Tile{Entry: e.Children[i], Rect: p.Rect}
	}

	return tiles
}

// Nested lays out e level by level: every directory tile that is large enough
// is inset by the padding and its own children are laid out inside it. Parents
// precede their descendants in the result.
func Nested(e *tree.Entry, r Rect, opts Options) []Tile {
	maxDepth := max(opts.MaxDepth, 1)

	var tiles []Tile

	var descend func(node *tree.Entry, area Rect, depth int)

	descend = func(node *tree.Entry, area Rect, depth int) {
		level := Children(node, area)

		for _, tile := range level {
			tile.Depth = depth
			tiles = append(tiles, tile)

			if depth+1 >= maxDepth || !tile.Entry.Zoomable() {
				continue
			}

			inner := tile.Rect.Inset(opts.Padding)
			if inner.Empty() || inner.Area() < opts.MinArea {
				continue
			}

			descend(tile.Entry, inner, depth+1)
		}
	}

	descend(e, r, 0)

	return tiles
}

// HitTest returns the deepest tile containing the point, or nil.
func HitTest(tiles []Tile, x, y float64) *Tile {
	var hit *Tile

	for i := range tiles {
		t := &tiles[i]
		if t.Rect.Empty() || !t.Rect.Contains(x, y) {
			continue
		}

		if hit == nil || t.Depth >= hit.Depth {
			hit = t
		}
	}

	return hit
}
