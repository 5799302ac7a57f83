package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/idelchi/dirmap/internal/exclude"
	"github.com/idelchi/dirmap/internal/logger"
	"github.com/idelchi/dirmap/internal/tree"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// ProgressHook receives the number of entries visited and bytes counted so far.
type ProgressHook func(entries, bytes int64)

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used for debug output.
func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// WithProgress installs a hook called every interval while a scan runs.
func WithProgress(hook ProgressHook, interval time.Duration) Option {
	return func(s *Scanner) {
		s.hook = hook
		s.interval = interval
	}
}

// Scanner builds annotated trees from the filesystem. It keeps no state between
// scans and may run several scans concurrently.
type Scanner struct {
	log      *logger.Logger
	hook     ProgressHook
	interval time.Duration

	// onEntry runs before each entry is classified.
	onEntry func(path string)
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{interval: DefaultProgressInterval}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// walk is the state of one Scan call.
type walk struct {
	ctx     context.Context //nolint:containedctx // Scoped to a single scan
	matcher *exclude.Matcher
	token   Token
	log     *logger.Logger
	onEntry func(string)

	entries atomic.Int64
	bytes   atomic.Int64
}

// Scan walks root depth-first and returns its tree. Entries matched by m are left
// out together with their subtrees; the root itself is never excluded. Symlinks
// become leaves and are never resolved.
//
// The walk checks tok before every entry and stops as soon as a newer generation
// has started or ctx is done. It then returns the partial tree built so far with
// complete set to false. Unreadable entries never stop the walk.
func (s *Scanner) Scan(ctx context.Context, root string, m *exclude.Matcher, tok Token) (*tree.Entry, bool) {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}

	w := &walk{ctx: ctx, matcher: m, token: tok, log: s.log, onEntry: s.onEntry}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, w, s.hook, s.interval)

	start := time.Now()

	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		name = filepath.ToSlash(abs)
	}

	if !w.alive() {
		return &tree.Entry{Name: name, Path: filepath.ToSlash(abs), Kind: tree.Directory}, false
	}

	var rootEntry *tree.Entry

	aborted := false

	info, err := os.Lstat(abs)
	if err != nil {
		rootEntry = &tree.Entry{Name: name, Path: filepath.ToSlash(abs), Kind: tree.Directory}
		w.fail(rootEntry, err)
	} else {
		rootEntry, aborted = w.visit(abs, name, fs.FileInfoToDirEntry(info))
	}

	w.log.Debugf("scan of %s finished after %v: %d entries, %d bytes, complete=%t",
		abs, time.Since(start), w.entries.Load(), w.bytes.Load(), !aborted)

	return rootEntry, !aborted
}

// alive reports whether the walk may continue.
func (w *walk) alive() bool {
	return w.ctx.Err() == nil && w.token.Valid()
}

// visit classifies one entry and descends into directories.
func (w *walk) visit(path, name string, d fs.DirEntry) (*tree.Entry, bool) {
	if w.onEntry != nil {
		w.onEntry(path)
	}

	w.entries.Add(1)

	entry := &tree.Entry{Name: name, Path: filepath.ToSlash(path)}

	switch {
	case d.Type()&fs.ModeSymlink != 0:
		entry.Kind = tree.Symlink

		return entry, false
	case d.IsDir():
		entry.Kind = tree.Directory

		return entry, w.scanDir(path, entry)
	default:
		entry.Kind = tree.File

		info, err := d.Info()
		if err != nil {
			w.fail(entry, err)

			return entry, false
		}

		entry.Size = info.Size()
		w.bytes.Add(entry.Size)

		return entry, false
	}
}

// scanDir lists dir in on-disk order and fills entry. It reports whether the walk
// was aborted; the children gathered until then are kept.
func (w *walk) scanDir(dir string, entry *tree.Entry) bool {
	f, err := os.Open(dir)
	if err != nil {
		w.fail(entry, err)

		return false
	}

	// os.ReadDir would sort by name; the file handle keeps listing order.
	dirents, err := f.ReadDir(-1)
	f.Close()

	if err != nil {
		w.fail(entry, err)

		return false
	}

	aborted := false

	for _, d := range dirents {
		if !w.alive() {
			w.log.Debugf("scan superseded inside %s", entry.Path)

			aborted = true

			break
		}

		path := filepath.Join(dir, d.Name())

		if w.matcher.IsExcluded(d.Name(), filepath.ToSlash(path)) {
			if d.IsDir() {
				w.log.Debugf("excluding directory: %s", filepath.ToSlash(path))
			} else {
				w.log.Debugf("excluding file: %s", filepath.ToSlash(path))
			}

			continue
		}

		child, childAborted := w.visit(path, d.Name(), d)
		entry.Children = append(entry.Children, child)

		if childAborted {
			aborted = true

			break
		}
	}

	for _, child := range entry.Children {
		entry.Size += child.Size
	}

	return aborted
}

// fail turns entry into an annotated zero-size leaf.
func (w *walk) fail(entry *tree.Entry, err error) {
	entry.Size = 0
	entry.Children = nil
	entry.Reason = err.Error()

	if errors.Is(err, fs.ErrPermission) {
		entry.Status = tree.Denied
		w.log.Debugf("permission denied: %s", entry.Path)

		return
	}

	entry.Status = tree.Error
	w.log.Debugf("error reading %s: %v", entry.Path, err)
}

// startProgressReporter invokes hook(entries, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, w *walk, hook ProgressHook, interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(w.entries.Load(), w.bytes.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}
