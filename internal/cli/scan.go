package cli

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirmap/internal/summary"
)

func newScanCommand(g *globals) *cobra.Command {
	var (
		output  string
		depth   int
		order   string
		top     int
		timeout time.Duration
	)

	formats := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory and print its size tree",
		Long: heredoc.Doc(`
			Scan a directory depth-first and print the tree of sizes.

			Symlinks are listed but never followed. Directories that cannot be read
			are marked and count as empty. Press Ctrl-C or pass --timeout to stop the
			scan early and print what was collected so far.

			Examples:
			  dirmap scan ~/projects --depth 2
			  dirmap scan / --exclude /proc --exclude '*.iso' --timeout 30s
			  dirmap scan . --output json
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, formats...); err != nil {
				return err
			}

			if depth < 0 {
				return errNegativeDepth
			}

			if order != "size" && order != "listing" {
				return fmt.Errorf("invalid order %q: must be one of [size listing]", order)
			}

			e, err := g.resolve(cmd)
			if err != nil {
				return err
			}

			result, err := runScan(cmd.Context(), e, cmd.ErrOrStderr(), scanOptions{
				root:     pathArg(args),
				timeout:  timeout,
				progress: output != "json",
			})
			if err != nil {
				return err
			}

			e.log.Debugf("scan %s: %d entries in %v", result.ID, result.Counts.Total(), result.Elapsed)

			out := cmd.OutOrStdout()

			if output == "json" {
				return PrintJSON(result, out)
			}

			if err := printTree(result.Root, treeView{depth: depth, bySize: order == "size"}, out); err != nil {
				return err
			}

			c := result.Counts
			fmt.Fprintf(out, "\n%d files, %d directories, %d symlinks, %s",
				c.Files, c.Directories, c.Symlinks, humanBytes(result.Root.Size))

			if c.Denied+c.Errors > 0 {
				fmt.Fprintf(out, ", %d unreadable", c.Denied+c.Errors)
			}

			if !result.Complete {
				fmt.Fprint(out, " (partial)")
			}

			fmt.Fprintln(out)

			if top > 0 {
				return PrintTable(summary.FromTree(result.Root, top, false), out)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	outputFlag(flags, &output, formats...)
	flags.IntVarP(&depth, "depth", "d", 1, "Levels to print below the root (0=unlimited)")
	flags.StringVar(&order, "order", "size", "Sibling order: size or listing")
	flags.IntVarP(&top, "top", "t", 0, "Also print the N largest files and extensions of the tree")
	flags.DurationVar(&timeout, "timeout", 0, "Stop the scan after this long and keep the partial tree")

	return cmd
}
