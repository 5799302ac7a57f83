package summary

import (
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/idelchi/dirmap/internal/tree"
)

// ExtStat represents statistics for a file extension.
type ExtStat struct {
	// Count is the number of files with this extension.
	Count int `json:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
}

// FileStat represents a single file or directory path and size.
type FileStat struct {
	// Path is relative to the summarized root, with forward slashes.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Stats holds aggregate statistics for a directory walk.
type Stats struct {
	// Root is the summarized directory.
	Root string `json:"root"`
	// FileCount is the number of files, or directories in directory mode.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all counted files.
	TotalBytes int64 `json:"total_bytes"`
	// ExtStats maps lowercase file extensions to their statistics.
	ExtStats map[string]ExtStat `json:"ext_stats"`
	// TopFiles contains the N largest files or directories, largest first.
	TopFiles []FileStat `json:"top_files"`
	// ErrorCount is the number of entries that could not be read.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration `json:"elapsed"`
	// DirectoryMode indicates whether directories were ranked instead of files.
	DirectoryMode bool `json:"directory_mode"`
	// TopN is the number of top results tracked.
	TopN int `json:"top_n"`
}

// collector aggregates statistics from concurrent walk callbacks.
type collector struct {
	mu            sync.Mutex
	topN          int
	directoryMode bool
	extStats      map[string]ExtStat
	dirSizes      map[string]int64
	files         []FileStat
	fileCount     int64
	totalBytes    int64
	errorCount    int64
}

func newCollector(topN int, directoryMode bool) *collector {
	return &collector{
		topN:          topN,
		directoryMode: directoryMode,
		extStats:      make(map[string]ExtStat),
		dirSizes:      make(map[string]int64),
	}
}

func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errorCount++
}

// add records one file given by its root-relative slash path. In directory mode
// the size is credited to the directory holding the file.
func (c *collector) add(rel string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalBytes += size

	ext := strings.ToLower(path.Ext(rel))
	if ext == path.Base(rel) {
		ext = ""
	}

	stat := c.extStats[ext]
	stat.Count++
	stat.Size += size
	c.extStats[ext] = stat

	if c.directoryMode {
		c.dirSizes[path.Dir(rel)] += size

		return
	}

	c.fileCount++
	c.files = append(c.files, FileStat{Path: rel, Size: size})
}

// progress returns the running totals.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.directoryMode {
		return int64(len(c.dirSizes)), c.totalBytes
	}

	return c.fileCount, c.totalBytes
}

// finalize ranks the collected entries and trims them to the top N.
func (c *collector) finalize(root string) *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	ranked := c.files
	fileCount := c.fileCount

	if c.directoryMode {
		ranked = make([]FileStat, 0, len(c.dirSizes))
		for dir, size := range c.dirSizes {
			ranked = append(ranked, FileStat{Path: dir, Size: size})
		}

		fileCount = int64(len(c.dirSizes))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Size != ranked[j].Size {
			return ranked[i].Size > ranked[j].Size
		}

		return ranked[i].Path < ranked[j].Path
	})

	if len(ranked) > c.topN {
		ranked = ranked[:c.topN]
	}

	return &Stats{
		Root:          root,
		FileCount:     fileCount,
		TotalBytes:    c.totalBytes,
		ExtStats:      c.extStats,
		TopFiles:      append([]FileStat(nil), ranked...),
		ErrorCount:    c.errorCount,
		DirectoryMode: c.directoryMode,
		TopN:          c.topN,
	}
}

// FromTree summarizes an already scanned tree the same way Run summarizes the
// filesystem. Symlinks are skipped and unreadable entries are counted as errors.
func FromTree(root *tree.Entry, topN int, dirsMode bool) *Stats {
	if topN <= 0 {
		topN = DefaultTopN
	}

	start := time.Now()
	c := newCollector(topN, dirsMode)
	prefix := strings.TrimSuffix(root.Path, "/") + "/"

	root.Walk(func(e *tree.Entry, _ int) bool {
		if e.Status != tree.OK {
			c.addError()

			return false
		}

		if e.Kind == tree.File {
			c.add(strings.TrimPrefix(e.Path, prefix), e.Size)
		}

		return true
	})

	stats := c.finalize(root.Path)
	stats.Elapsed = time.Since(start)

	return stats
}
