package layout

import "fmt"

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns W*H.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Inset shrinks the rectangle by p on every side, collapsing to its center
// when it is too small.
func (r Rect) Inset(p float64) Rect {
	w, h := r.W-2*p, r.H-2*p

	if w < 0 {
		w = 0
	}

	if h < 0 {
		h = 0
	}

	return Rect{X: r.X + (r.W-w)/2, Y: r.Y + (r.H-h)/2, W: w, H: h}
}

// Contains reports whether the point lies inside the half-open rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Overlap returns the area shared by r and o.
func (r Rect) Overlap(o Rect) float64 {
	w := min(r.X+r.W, o.X+o.W) - max(r.X, o.X)
	h := min(r.Y+r.H, o.Y+o.H) - max(r.Y, o.Y)

	if w <= 0 || h <= 0 {
		return 0
	}

	return w * h
}

// String formats the rectangle as "(x,y w×h)".
func (r Rect) String() string {
	return fmt.Sprintf("(%.1f,%.1f %.1f×%.1f)", r.X, r.Y, r.W, r.H)
}

// shorter returns the length of the shorter side.
func (r Rect) shorter() float64 {
	return min(r.W, r.H)
}
