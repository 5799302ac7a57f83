package summary

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/idelchi/dirmap/internal/exclude"
	"github.com/idelchi/dirmap/internal/logger"
)

const (
	// DefaultProgressInterval is the default interval for progress updates.
	DefaultProgressInterval = 500 * time.Millisecond
	// DefaultTopN is used when Options.TopN is not positive.
	DefaultTopN = 20
)

// Options configures a summary walk.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Extensions to include (empty = all). A '!' prefix excludes the suffix instead.
	Extensions []string
	// Matcher holds the exclusion rules shared with the treemap scan.
	Matcher *exclude.Matcher
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// TopN is the number of top results to track.
	TopN int
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// DirsMode ranks directories by the bytes of the files directly inside them.
	DirsMode bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Log receives debug output.
	Log *logger.Logger
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// extensionFilter splits suffix arguments into include and exclude sets.
func extensionFilter(extensions []string) (include, exclude map[string]struct{}) {
	include = make(map[string]struct{}, len(extensions))
	exclude = make(map[string]struct{}, len(extensions))

	for _, e := range extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.Trim(e, "'\"")

		if after, ok := strings.CutPrefix(e, "!"); ok {
			exclude[after] = struct{}{}
		} else if e != "" {
			include[e] = struct{}{}
		}
	}

	return include, exclude
}

// shouldIncludeByExtension checks if file should be included based on extension filters.
func shouldIncludeByExtension(path string, include, exclude map[string]struct{}) bool {
	for ext := range exclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for ext := range include {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
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
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run walks opt.Path in parallel and returns extension totals and the largest
// files or directories. It applies the same exclusion rules as a treemap scan
// and never follows symlinks. Unreadable entries are counted, not fatal.
//
// The walk can be cancelled via ctx. Progress updates are sent to progressHook
// if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Stats, error) {
	log := opt.Log

	if opt.Path == "" {
		opt.Path = "."
	}

	root, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", opt.Path)
	}

	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}

	extInclude, extExclude := extensionFilter(opt.Extensions)

	for ext := range extInclude {
		log.Debugf("include extension: %s", ext)
	}

	for ext := range extExclude {
		log.Debugf("exclude extension: %s", ext)
	}

	for _, rule := range opt.Matcher.Rules() {
		log.Debugf("exclusion rule: %s", rule)
	}

	collector := newCollector(opt.TopN, opt.DirsMode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("error accessing path %s: %v", path, err)
			collector.addError()

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == root {
			return nil
		}

		if opt.Depth > 0 && calculateDepth(path, root) > opt.Depth {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		slashPath := filepath.ToSlash(path)

		if opt.Matcher.IsExcluded(d.Name(), slashPath) {
			if d.IsDir() {
				log.Debugf("excluding directory: %s", slashPath)

				return filepath.SkipDir
			}

			log.Debugf("excluding file: %s", slashPath)

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			collector.addError()

			return nil //nolint:nilerr // Unreadable files are counted, not fatal
		}

		if info.Size() < opt.MinSize {
			return nil
		}

		if !shouldIncludeByExtension(path, extInclude, extExclude) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		collector.add(filepath.ToSlash(rel), info.Size())

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	stats := collector.finalize(filepath.ToSlash(root))
	stats.Elapsed = time.Since(start)

	return stats, nil
}
