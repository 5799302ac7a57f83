package layout

import (
	"math"
	"sort"
)

// Item is one weighted input to Squarify.
type Item struct {
	ID   string
	Size int64
}

// Placement is the rectangle assigned to an Item.
type Placement struct {
	ID   string `json:"id"`
	Rect Rect   `json:"rect"`
}

// Squarify places items inside r with the squarified treemap algorithm of
// Bruls, Huizing and van Wijk. Placement i belongs to items[i]. Rectangles do
// not overlap, cover r, and have areas proportional to item sizes.
//
// Items are laid out largest first (ties keep input order). Zero-size items get
// a zero-area rectangle at the far corner of r. When every size is zero, r is
// split evenly along its longer side. The output depends only on the input.
func Squarify(items []Item, r Rect) []Placement {
	out := make([]Placement, len(items))
	for i, item := range items {
		out[i].ID = item.ID
	}

	if len(items) == 0 {
		return out
	}

	if r.Empty() {
		for i := range out {
			out[i].Rect = Rect{X: r.X, Y: r.Y}
		}

		return out
	}

	var total float64

	order := make([]int, 0, len(items))

	for i, item := range items {
		if item.Size > 0 {
			total += float64(item.Size)
			order = append(order, i)
		}
	}

	if total == 0 {
		splitEvenly(out, r)

		return out
	}

	sort.SliceStable(order, func(a, b int) bool {
		return items[order[a]].Size > items[order[b]].Size
	})

	scale := r.Area() / total

	areas := make([]float64, len(items))
	for _, i := range order {
		areas[i] = float64(items[i].Size) * scale
	}

	remaining := r
	row := make([]int, 0, len(order))

	for next := 0; next < len(order); {
		short := remaining.shorter()
		// Writes into the spare capacity of row; row itself is unchanged.
		candidate := append(row, order[next])

		if len(row) == 0 || worst(candidate, areas, short) <= worst(row, areas, short) {
			row = candidate
			next++

			continue
		}

		remaining = placeRow(out, row, areas, remaining, false)
		row = row[:0]
	}

	placeRow(out, row, areas, remaining, true)

	corner := Rect{X: r.X + r.W, Y: r.Y + r.H}
	for i, item := range items {
		if item.Size <= 0 {
			out[i].Rect = corner
		}
	}

	return out
}

// worst returns the largest aspect ratio of a row laid along a side of length
// short: max(short²·max/s², s²/(short²·min)) for row area sum s.
func worst(row []int, areas []float64, short float64) float64 {
	if len(row) == 0 || short <= 0 {
		return math.Inf(1)
	}

	sum, largest, smallest := 0.0, 0.0, math.Inf(1)

	for _, i := range row {
		a := areas[i]
		sum += a
		largest = max(largest, a)
		smallest = min(smallest, a)
	}

	if sum <= 0 || smallest <= 0 {
		return math.Inf(1)
	}

	side2 := short * short
	sum2 := sum * sum

	return max(side2*largest/sum2, sum2/(side2*smallest))
}

// placeRow lays row along the shorter side of remaining as a strip whose
// thickness is the row area over that side, and returns what is left. The last
// row takes the whole remaining rectangle so rounding never leaves a gap.
func placeRow(out []Placement, row []int, areas []float64, remaining Rect, last bool) Rect {
	if len(row) == 0 {
		return remaining
	}

	var sum float64
	for _, i := range row {
		sum += areas[i]
	}

	if remaining.W >= remaining.H {
		// Vertical strip on the left; items stacked top to bottom.
		thickness := min(sum/remaining.H, remaining.W)
		if last {
			thickness = remaining.W
		}

		y := remaining.Y
		end := remaining.Y + remaining.H

		for k, i := range row {
			h := areas[i] / sum * remaining.H
			if k == len(row)-1 {
				h = end - y
			}

			out[i].Rect = Rect{X: remaining.X, Y: y, W: thickness, H: h}
			y += h
		}

		return Rect{X: remaining.X + thickness, Y: remaining.Y, W: remaining.W - thickness, H: remaining.H}
	}

	// Horizontal strip on top; items placed left to right.
	thickness := min(sum/remaining.W, remaining.H)
	if last {
		thickness = remaining.H
	}

	x := remaining.X
	end := remaining.X + remaining.W

	for k, i := range row {
		w := areas[i] / sum * remaining.W
		if k == len(row)-1 {
			w = end - x
		}

		out[i].Rect = Rect{X: x, Y: remaining.Y, W: w, H: thickness}
		x += w
	}

	return Rect{X: remaining.X, Y: remaining.Y + thickness, W: remaining.W, H: remaining.H - thickness}
}

// splitEvenly gives every placement an equal slice of r along its longer side.
func splitEvenly(out []Placement, r Rect) {
	n := float64(len(out))

	if r.W >= r.H {
		step := r.W / n
		for i := range out {
			x := r.X + float64(i)*step

			w := step
			if i == len(out)-1 {
				w = r.X + r.W - x
			}

			out[i].Rect = Rect{X: x, Y: r.Y, W: w, H: r.H}
		}

		return
	}

	step := r.H / n
	for i := range out {
		y := r.Y + float64(i)*step

		h := step
		if i == len(out)-1 {
			h = r.Y + r.H - y
		}

		out[i].Rect = Rect{X: r.X, Y: y, W: r.W, H: h}
	}
}
