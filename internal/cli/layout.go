package cli

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirmap/internal/exclude"
	"github.com/idelchi/dirmap/internal/layout"
	"github.com/idelchi/dirmap/internal/navigate"
	"github.com/idelchi/dirmap/internal/tree"
)

// point is an "x,y" canvas coordinate.
type point struct {
	x, y float64
	set  bool
}

func parsePoint(s string) (point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return point{}, fmt.Errorf("invalid point %q: want x,y", s)
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)

	if err := errors.Join(errX, errY); err != nil {
		return point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}

	return point{x: x, y: y, set: true}, nil
}

// zoomTarget turns a --zoom value into a path inside the scanned tree. Relative
// values are taken relative to the root.
func zoomTarget(root *tree.Entry, value string) string {
	if value == "" {
		return root.Path
	}

	if strings.HasPrefix(value, "/") || strings.Contains(value, ":") {
		return exclude.NormalizePath(value)
	}

	return path.Join(root.Path, strings.ReplaceAll(value, "\\", "/"))
}

func newLayoutCommand(g *globals) *cobra.Command {
	var (
		output             string
		width, height, pad float64
		zoom, at           string
		levels             int
		minArea            float64
		timeout            time.Duration
	)

	formats := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "layout [path]",
		Short: "Compute the squarified treemap of a directory",
		Long: heredoc.Doc(`
			Scan a directory and lay out its children as a squarified treemap on a
			canvas. Each tile's area is proportional to the entry's size.

			--zoom selects the directory whose children are laid out, as a path
			relative to the scanned root or an absolute path below it. Only
			directories with children can be zoomed into.

			--levels lays out grandchildren inside directory tiles as well, each
			level inset by the padding. --at reports the tile under a canvas point.

			Examples:
			  dirmap layout ~/projects --width 1200 --height 800
			  dirmap layout . --zoom internal/scan --levels 2 --output json
			  dirmap layout . --at 300,200
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, formats...); err != nil {
				return err
			}

			var hit point

			if at != "" {
				var err error
				if hit, err = parsePoint(at); err != nil {
					return err
				}
			}

			e, err := g.resolve(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("width") {
				width = e.cfg.Canvas.Width
			}

			if !flags.Changed("height") {
				height = e.cfg.Canvas.Height
			}

			if !flags.Changed("padding") {
				pad = e.cfg.Canvas.Padding
			}

			if width <= 0 || height <= 0 || pad < 0 {
				return fmt.Errorf("invalid canvas %gx%g with padding %g", width, height, pad)
			}

			result, err := runScan(cmd.Context(), e, cmd.ErrOrStderr(), scanOptions{
				root:     pathArg(args),
				timeout:  timeout,
				progress: output != "json",
			})
			if err != nil {
				return err
			}

			nav := navigate.New(result.Root)
			if err := nav.ZoomTo(zoomTarget(result.Root, zoom)); err != nil {
				return fmt.Errorf("zooming to %q: %w", zoom, err)
			}

			current := nav.Current()
			canvas := layout.Rect{W: width, H: height}.Inset(pad)
			tiles := layout.Nested(current, canvas, layout.Options{MaxDepth: levels, Padding: pad, MinArea: minArea})

			e.log.Debugf("laid out %d tiles for %s on %s", len(tiles), current.Path, canvas)

			out := cmd.OutOrStdout()

			if hit.set {
				tile := layout.HitTest(tiles, hit.x, hit.y)
				if tile == nil {
					return fmt.Errorf("no tile at %g,%g", hit.x, hit.y)
				}

				_, err := fmt.Fprintln(out, tile.Entry.Tooltip())

				return err
			}

			view := newLayoutView(nav.Breadcrumb(), canvas, tiles)

			if output == "json" {
				return PrintJSON(view, out)
			}

			if len(tiles) == 0 {
				_, err := fmt.Fprintf(out, "%s has nothing to lay out.\n", current.Path)

				return err
			}

			return printTiles(view, current.Size, out)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	outputFlag(flags, &output, formats...)
	flags.Float64Var(&width, "width", 1000, "Canvas width (default from config)")
	flags.Float64Var(&height, "height", 600, "Canvas height (default from config)")
	flags.Float64Var(&pad, "padding", 6, "Canvas and tile padding (default from config)")
	flags.StringVarP(&zoom, "zoom", "z", "", "Directory to lay out instead of the root")
	flags.IntVarP(&levels, "levels", "l", 1, "Number of nested levels to lay out")
	flags.Float64Var(&minArea, "min-area", 0, "Do not descend into tiles smaller than this area")
	flags.StringVar(&at, "at", "", "Print the tooltip of the tile under the point x,y")
	flags.DurationVar(&timeout, "timeout", 0, "Stop the scan after this long and lay out the partial tree")

	return cmd
}
