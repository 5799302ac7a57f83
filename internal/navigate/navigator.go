// Package navigate keeps the zoom stack over a scanned tree.
//
// The top of the stack is the node whose children are laid out. The stack
// bottom is always the scan root. A Navigator is not safe for concurrent use;
// it belongs to whoever drives the display.
package navigate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/idelchi/dirmap/internal/tree"
)

var (
	// ErrNotChild is returned when zooming into an entry that is not a child of the current node.
	ErrNotChild = errors.New("entry is not a child of the current node")
	// ErrNotDirectory is returned when zooming into a file, symlink or empty directory.
	ErrNotDirectory = errors.New("entry is not a directory with children")
	// ErrAtRoot is returned when popping the last stack element.
	ErrAtRoot = errors.New("already at the root")
	// ErrOutOfRange is returned for breadcrumb indices outside the stack.
	ErrOutOfRange = errors.New("breadcrumb index out of range")
)

// Navigator is a zoom stack over one tree.
type Navigator struct {
	stack []*tree.Entry
}

// New creates a navigator positioned at root.
func New(root *tree.Entry) *Navigator {
	return &Navigator{stack: []*tree.Entry{root}}
}

// Reset discards the stack and starts over at root, as after a rescan.
func (n *Navigator) Reset(root *tree.Entry) {
	n.stack = []*tree.Entry{root}
}

// Root returns the bottom of the stack.
func (n *Navigator) Root() *tree.Entry {
	return n.stack[0]
}

// Current returns the node to lay out.
func (n *Navigator) Current() *tree.Entry {
	return n.stack[len(n.stack)-1]
}

// Depth returns the number of zoom steps taken from the root.
func (n *Navigator) Depth() int {
	return len(n.stack) - 1
}

// Stack returns a copy of the stack, root first.
func (n *Navigator) Stack() []*tree.Entry {
	return append([]*tree.Entry(nil), n.stack...)
}

// Push zooms into child, which must be a non-empty directory directly below
// the current node.
func (n *Navigator) Push(child *tree.Entry) error {
	if child == nil {
		return ErrNotChild
	}

	found := false

	for _, c := range n.Current().Children {
		if c == child {
			found = true

			break
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrNotChild, child.Path)
	}

	if !child.Zoomable() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, child.Path)
	}

	n.stack = append(n.stack, child)

	return nil
}

// Pop zooms out one level.
func (n *Navigator) Pop() error {
	if len(n.stack) == 1 {
		return ErrAtRoot
	}

	n.stack[len(n.stack)-1] = nil
	n.stack = n.stack[:len(n.stack)-1]

	return nil
}

// Truncate returns to the breadcrumb at index i, dropping everything above it.
func (n *Navigator) Truncate(i int) error {
	if i < 0 || i >= len(n.stack) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(n.stack))
	}

	clear(n.stack[i+1:])
	n.stack = n.stack[:i+1]

	return nil
}

// Breadcrumb returns the labels of the stack: the root's full path followed by
// the names of the nodes zoomed into.
func (n *Navigator) Breadcrumb() []string {
	crumbs := make([]string, len(n.stack))
	for i, e := range n.stack {
		if i == 0 {
			crumbs[i] = e.Path
		} else {
			crumbs[i] = e.Name
		}
	}

	return crumbs
}

// ZoomTo rebuilds the stack so that the entry at path is current. Every step
// from the root must be zoomable.
func (n *Navigator) ZoomTo(path string) error {
	root := n.Root()
	path = strings.TrimSuffix(path, "/")

	if path == "" || path == strings.TrimSuffix(root.Path, "/") {
		n.Reset(root)

		return nil
	}

	prefix := strings.TrimSuffix(root.Path, "/") + "/"
	if !strings.HasPrefix(path, prefix) {
		return fmt.Errorf("%w: %s is outside %s", ErrNotChild, path, root.Path)
	}

	stack := []*tree.Entry{root}
	node := root

	for _, name := range strings.Split(strings.TrimPrefix(path, prefix), "/") {
		if name == "" {
			continue
		}

		child := node.Child(name)
		if child == nil {
			return fmt.Errorf("%w: %s has no entry %q", ErrNotChild, node.Path, name)
		}

		if !child.Zoomable() {
			return fmt.Errorf("%w: %s", ErrNotDirectory, child.Path)
		}

		stack = append(stack, child)
		node = child
	}

	n.stack = stack

	return nil
}
