package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/idelchi/dirmap/internal/exclude"
	"github.com/idelchi/dirmap/internal/logger"
	"github.com/idelchi/dirmap/internal/tree"
)

// ErrNotDirectory is returned when a scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Result is one published scan.
type Result struct {
	// ID uniquely names the scan run in logs and output.
	ID string `json:"id"`
	// Generation is the generation the scan ran under.
	Generation uint64 `json:"generation"`
	// Root is the scanned tree.
	Root *tree.Entry `json:"root"`
	// Complete is false for a partial tree kept after an explicit stop.
	Complete bool `json:"complete"`
	// Elapsed is the wall time of the scan.
	Elapsed time.Duration `json:"elapsed"`
	// Counts tallies the entries of Root.
	Counts tree.Counts `json:"counts"`
}

// Session owns the active generation and the single published result. Starting
// a scan supersedes the one in flight without waiting for it; the superseded
// worker notices at its next entry and its tree is dropped. Only the result of
// the highest generation is ever published.
type Session struct {
	scanner   *Scanner
	log       *logger.Logger
	gen       Generation
	current   atomic.Pointer[Result]
	partialOf atomic.Uint64
	onPublish func(*Result)
	wg        sync.WaitGroup
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// OnPublish registers a callback invoked from the worker after a result is published.
func OnPublish(fn func(*Result)) SessionOption {
	return func(s *Session) {
		s.onPublish = fn
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(log *logger.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates a Session that runs scans with scanner.
func NewSession(scanner *Scanner, opts ...SessionOption) *Session {
	s := &Session{scanner: scanner}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start begins scanning root in the background and returns the new generation.
// Any scan still running is superseded.
func (s *Session) Start(ctx context.Context, root string, m *exclude.Matcher) (uint64, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return 0, fmt.Errorf("accessing path %q: %w", root, err)
	}

	if !info.IsDir() {
		return 0, fmt.Errorf("path %q: %w", root, ErrNotDirectory)
	}

	tok := s.gen.Next()
	id := uuid.NewString()

	s.log.Debugf("starting scan %s (generation %d) of %s", id, tok.ID(), abs)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		start := time.Now()
		root, complete := s.scanner.Scan(ctx, abs, m, tok)

		s.publish(&Result{
			ID:         id,
			Generation: tok.ID(),
			Root:       root,
			Complete:   complete,
			Elapsed:    time.Since(start),
			Counts:     root.Count(),
		})
	}()

	return tok.ID(), nil
}

// Stop supersedes the running scan. With keepPartial set, the tree it built so
// far is published, marked incomplete, unless a newer result exists.
func (s *Session) Stop(keepPartial bool) {
	if keepPartial {
		s.partialOf.Store(s.gen.Current())
	}

	s.gen.Supersede()
}

// Wait blocks until every started worker has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Generation returns the active generation number.
func (s *Session) Generation() uint64 {
	return s.gen.Current()
}

// Current returns the published result, or nil before the first publish.
func (s *Session) Current() *Result {
	return s.current.Load()
}

// publish swaps r in as the current result when it is allowed to be shown.
func (s *Session) publish(r *Result) {
	requested := r.Generation == s.partialOf.Load()

	if !r.Complete && !requested {
		s.log.Debugf("dropping scan %s (generation %d): cancelled", r.ID, r.Generation)

		return
	}

	if !requested && r.Generation != s.gen.Current() {
		s.log.Debugf("dropping scan %s (generation %d): generation %d is active", r.ID, r.Generation, s.gen.Current())

		return
	}

	for {
		old := s.current.Load()
		if old != nil && old.Generation >= r.Generation {
			s.log.Debugf("dropping scan %s (generation %d): generation %d already published",
				r.ID, r.Generation, old.Generation)

			return
		}

		if s.current.CompareAndSwap(old, r) {
			break
		}
	}

	s.log.Debugf("published scan %s (generation %d, complete=%t)", r.ID, r.Generation, r.Complete)

	if s.onPublish != nil {
		s.onPublish(r)
	}
}
