// Package layout turns weighted siblings into treemap rectangles.
//
// Squarify handles one flat list of items. Children and Nested apply it to a
// scanned tree, one directory level at a time, inside a canvas rectangle.
package layout
