// Package tree holds the annotated filesystem tree produced by a scan.
//
// A published tree is read-only. Consumers may share it between goroutines
// without locking; a rescan builds a new tree instead of editing the old one.
package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Kind classifies an entry.
type Kind int

const (
	// File is a regular file or any other non-directory, non-symlink entry.
	File Kind = iota
	// Directory is a directory.
	Directory
	// Symlink is a symbolic link. It is never followed.
	Symlink
)

// String returns the short name of the kind.
func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "dir"
	case Symlink:
		return "symlink"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{File, Directory, Symlink} {
		if candidate.String() == string(text) {
			*k = candidate

			return nil
		}
	}

	return fmt.Errorf("unknown entry kind %q", text)
}

// Status records whether an entry could be read.
type Status int

const (
	// OK means the entry was read successfully.
	OK Status = iota
	// Denied means reading the entry failed with a permission error.
	Denied
	// Error means reading the entry failed for any other reason.
	Error
)

// String returns the short name of the status.
func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Denied:
		return "denied"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{OK, Denied, Error} {
		if candidate.String() == string(text) {
			*s = candidate

			return nil
		}
	}

	return fmt.Errorf("unknown entry status %q", text)
}

// Entry is one node of a scanned tree.
type Entry struct {
	// Name is the basename.
	Name string `json:"name"`
	// Path is the normalized absolute path.
	Path string `json:"path"`
	// Kind classifies the entry.
	Kind Kind `json:"kind"`
	// Size is the logical size in bytes. Directories hold the sum over their children.
	Size int64 `json:"size"`
	// Status tells whether the entry could be read.
	Status Status `json:"status"`
	// Reason is the failure message for Denied and Error entries.
	Reason string `json:"reason,omitempty"`
	// Children are in directory-listing order.
	Children []*Entry `json:"children,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Kind == Directory
}

// Zoomable reports whether the entry can become the displayed subtree root.
func (e *Entry) Zoomable() bool {
	return e.Kind == Directory && len(e.Children) > 0
}

// Walk visits e and its descendants depth-first in listing order. Returning
// false from fn skips the children of the visited entry.
func (e *Entry) Walk(fn func(entry *Entry, depth int) bool) {
	e.walk(fn, 0)
}

func (e *Entry) walk(fn func(*Entry, int) bool, depth int) {
	if !fn(e, depth) {
		return
	}

	for _, child := range e.Children {
		child.walk(fn, depth+1)
	}
}

// Find returns the entry with the given path, or nil.
func (e *Entry) Find(path string) *Entry {
	if e.Path == path {
		return e
	}

	if !strings.HasPrefix(path, strings.TrimSuffix(e.Path, "/")+"/") {
		return nil
	}

	for _, child := range e.Children {
		if found := child.Find(path); found != nil {
			return found
		}
	}

	return nil
}

// Child returns the direct child with the given name, or nil.
func (e *Entry) Child(name string) *Entry {
	for _, child := range e.Children {
		if child.Name == name {
			return child
		}
	}

	return nil
}

// Counts tallies the entries of a tree.
type Counts struct {
	Files       int64 `json:"files"`
	Directories int64 `json:"directories"`
	Symlinks    int64 `json:"symlinks"`
	Denied      int64 `json:"denied"`
	Errors      int64 `json:"errors"`
}

// Total returns the number of entries counted.
func (c Counts) Total() int64 {
	return c.Files + c.Directories + c.Symlinks
}

// Count tallies e and all of its descendants.
func (e *Entry) Count() Counts {
	var c Counts

	e.Walk(func(entry *Entry, _ int) bool {
		switch entry.Kind {
		case File:
			c.Files++
		case Directory:
			c.Directories++
		case Symlink:
			c.Symlinks++
		}

		switch entry.Status {
		case Denied:
			c.Denied++
		case Error:
			c.Errors++
		case OK:
		}

		return true
	})

	return c
}

// Verify checks the structural invariants of a tree: directory sizes equal the sum
// of their children, symlinks and unreadable entries are empty zero-size leaves,
// and every child path lies directly below its parent.
func (e *Entry) Verify() error {
	var errs []error

	e.Walk(func(entry *Entry, _ int) bool {
		if entry.Size < 0 {
			errs = append(errs, fmt.Errorf("%s: negative size %d", entry.Path, entry.Size))
		}

		if entry.Kind == Symlink && (entry.Size != 0 || len(entry.Children) > 0) {
			errs = append(errs, fmt.Errorf("%s: symlink is not an empty zero-size leaf", entry.Path))
		}

		if entry.Status != OK && (entry.Size != 0 || len(entry.Children) > 0) {
			errs = append(errs, fmt.Errorf("%s: %s entry is not an empty zero-size leaf", entry.Path, entry.Status))
		}

		if entry.Kind != Directory && len(entry.Children) > 0 {
			errs = append(errs, fmt.Errorf("%s: %s has children", entry.Path, entry.Kind))
		}

		if entry.Kind == Directory {
			var sum int64

			prefix := strings.TrimSuffix(entry.Path, "/") + "/"

			for _, child := range entry.Children {
				sum += child.Size

				if child.Path != prefix+child.Name {
					errs = append(errs, fmt.Errorf("%s: child path %q is not below its parent", entry.Path, child.Path))
				}
			}

			if sum != entry.Size {
				errs = append(errs, fmt.Errorf("%s: size %d differs from children sum %d", entry.Path, entry.Size, sum))
			}
		}

		return true
	})

	return errors.Join(errs...)
}

// Label returns the display kind used in tooltips.
func (e *Entry) Label() string {
	switch e.Kind {
	case Directory:
		return "Folder"
	case Symlink:
		return "Symlink"
	default:
		return "File"
	}
}

// Tooltip returns the hover text for an entry: kind and name, size, path.
func (e *Entry) Tooltip() string {
	name := e.Name
	if e.Status != OK {
		name += " [" + e.Status.String() + "]"
	}

	return fmt.Sprintf("%s: %s\n%s\n%s", e.Label(), name, humanize.IBytes(uint64(e.Size)), e.Path) //nolint:gosec // Size is never negative
}
