package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/idelchi/dirmap/internal/exclude"
	"github.com/idelchi/dirmap/internal/layout"
	"github.com/idelchi/dirmap/internal/summary"
	"github.com/idelchi/dirmap/internal/tree"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// NameWidth is the number of terminal cells reserved for names in tree output.
	NameWidth = 48
)

//nolint:gochecknoglobals // Shared palette for status annotations
var (
	deniedColor  = color.New(color.FgRed)
	errorColor   = color.New(color.FgYellow)
	symlinkColor = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

func humanBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return 100.0 * float64(part) / float64(total)
}

// PrintJSON outputs v as indented JSON.
func PrintJSON(v any, writer io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs summary statistics in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(stats *summary.Stats, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	if !stats.DirectoryMode {
		fmt.Fprintln(w, "\nTop extensions:\t\t")

		extList := make([]string, 0, len(stats.ExtStats))
		for ext := range stats.ExtStats {
			extList = append(extList, ext)
		}

		sort.Slice(extList, func(i, j int) bool {
			a, b := stats.ExtStats[extList[i]], stats.ExtStats[extList[j]]
			if a.Size != b.Size {
				return a.Size > b.Size
			}

			return extList[i] < extList[j]
		})

		if len(extList) > stats.TopN {
			extList = extList[:stats.TopN]
		}

		for i, ext := range extList {
			extStat := stats.ExtStats[ext]
			if ext == "" {
				ext = "\"\""
			}

			fmt.Fprintf(w, "  %d) %s:\t%d files, %s (%.1f%%)\n",
				i+1, ext, extStat.Count, humanBytes(extStat.Size), percent(extStat.Size, stats.TotalBytes))
		}
	}

	if stats.DirectoryMode {
		fmt.Fprintln(w, "\nTop directories:\t\t")
	} else {
		fmt.Fprintln(w, "\nTop files:\t\t")
	}

	for i, f := range stats.TopFiles {
		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			i+1, f.Path, humanBytes(f.Size), percent(f.Size, stats.TotalBytes))
	}

	fmt.Fprintln(w, "\nStats:\t\t")

	if stats.DirectoryMode {
		fmt.Fprintf(w, "Total directories:\t%d\n", stats.FileCount)
	} else {
		fmt.Fprintf(w, "Total files:\t%d\n", stats.FileCount)
	}

	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanBytes(stats.TotalBytes), stats.TotalBytes)

	if stats.ErrorCount > 0 {
		fmt.Fprintf(w, "Unreadable:\t%d\n", stats.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}

// PrintPaths outputs the ranked paths one per line, absolute, for piping.
func PrintPaths(stats *summary.Stats, writer io.Writer) error {
	for _, f := range stats.TopFiles {
		if _, err := fmt.Fprintln(writer, path.Join(stats.Root, f.Path)); err != nil {
			return err
		}
	}

	return nil
}

// treeView controls printTree.
type treeView struct {
	// depth limits the printed levels below the root (0=unlimited).
	depth int
	// bySize orders siblings largest first instead of listing order.
	bySize bool
}

// printTree renders root as an indented tree with sizes and shares of the parent.
func printTree(root *tree.Entry, view treeView, writer io.Writer) error {
	var b strings.Builder

	b.WriteString(treeLine("", root, 0))
	b.WriteByte('\n')

	var render func(node *tree.Entry, prefix string, level int)

	render = func(node *tree.Entry, prefix string, level int) {
		if view.depth > 0 && level > view.depth {
			return
		}

		children := node.Children
		if view.bySize {
			children = slices.Clone(children)
			slices.SortStableFunc(children, func(a, b *tree.Entry) int {
				switch {
				case a.Size > b.Size:
					return -1
				case a.Size < b.Size:
					return 1
				default:
					return 0
				}
			})
		}

		for i, child := range children {
			branch, next := "├── ", "│   "
			if i == len(children)-1 {
				branch, next = "└── ", "    "
			}

			b.WriteString(treeLine(prefix+branch, child, node.Size))
			b.WriteByte('\n')

			render(child, prefix+next, level+1)
		}
	}

	render(root, "", 1)

	_, err := io.WriteString(writer, b.String())

	return err
}

// treeLine formats one entry: the name padded to NameWidth cells, its size and
// its share of parentSize. The root line shows the full path and is never truncated.
func treeLine(prefix string, e *tree.Entry, parentSize int64) string {
	name := e.Name
	if prefix == "" {
		name = e.Path
	}

	if e.IsDir() && !strings.HasSuffix(name, "/") {
		name += "/"
	}

	label := prefix + name
	if prefix != "" {
		label = runewidth.Truncate(label, NameWidth, "…")
	}

	label = runewidth.FillRight(label, NameWidth)
	line := fmt.Sprintf("%s  %10s", label, humanBytes(e.Size))

	if parentSize > 0 {
		line += dimColor.Sprintf("  %5.1f%%", percent(e.Size, parentSize))
	}

	switch {
	case e.Status == tree.Denied:
		line += "  " + deniedColor.Sprint("[denied]")
	case e.Status == tree.Error:
		line += "  " + errorColor.Sprintf("[error: %s]", e.Reason)
	case e.Kind == tree.Symlink:
		line += "  " + symlinkColor.Sprint("[symlink]")
	}

	return line
}

// tileView is the JSON form of a laid-out tile.
type tileView struct {
	Path  string      `json:"path"`
	Name  string      `json:"name"`
	Kind  tree.Kind   `json:"kind"`
	Size  int64       `json:"size"`
	Depth int         `json:"depth"`
	Rect  layout.Rect `json:"rect"`
}

// layoutView is the JSON form of a treemap layout.
type layoutView struct {
	Breadcrumb []string    `json:"breadcrumb"`
	Canvas     layout.Rect `json:"canvas"`
	Tiles      []tileView  `json:"tiles"`
}

func newLayoutView(breadcrumb []string, canvas layout.Rect, tiles []layout.Tile) layoutView {
	view := layoutView{Breadcrumb: breadcrumb, Canvas: canvas, Tiles: make([]tileView, len(tiles))}

	for i, t := range tiles {
		view.Tiles[i] = tileView{
			Path:  t.Entry.Path,
			Name:  t.Entry.Name,
			Kind:  t.Entry.Kind,
			Size:  t.Entry.Size,
			Depth: t.Depth,
			Rect:  t.Rect,
		}
	}

	return view
}

// printTiles outputs a treemap layout as a table, one tile per row.
//
//nolint:forbidigo // This function prints output to the console.
func printTiles(view layoutView, total int64, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintf(w, "%s\n", strings.Join(view.Breadcrumb, " / "))
	fmt.Fprintf(w, "Canvas:\t%s\n\n", view.Canvas)
	fmt.Fprintln(w, "NAME\tSIZE\tSHARE\tRECT")

	for _, t := range view.Tiles {
		name := strings.Repeat("  ", t.Depth) + t.Name
		if t.Kind == tree.Directory {
			name += "/"
		}

		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%s\n", name, humanBytes(t.Size), percent(t.Size, total), t.Rect)
	}

	return w.Flush()
}

// PrintRules outputs exclusion rules as a numbered table.
//
//nolint:forbidigo // This function prints output to the console.
func PrintRules(rules []exclude.Rule, writer io.Writer) error {
	if len(rules) == 0 {
		_, err := fmt.Fprintln(writer, "No exclusion rules configured.")

		return err
	}

	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "#\tKIND\tVALUE")

	for i, r := range rules {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, r.Kind, r.Value)
	}

	return w.Flush()
}
