package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirmap/internal/logger"
	"github.com/idelchi/dirmap/internal/summary"
)

func newTopCommand(g *globals) *cobra.Command {
	var (
		options    summary.Options
		minSizeStr string
		output     string
	)

	formats := []string{"table", "json", "paths"}

	cmd := &cobra.Command{
		Use:   "top [path]",
		Short: "Report the largest files and extensions of a directory",
		Long: heredoc.Doc(`
			Walk a directory in parallel and report statistics by file extension
			together with the largest files. The configured exclusion rules apply.

			Use --dirs to rank directories by the bytes of the files directly inside
			them instead of individual files. The 'paths' output prints one absolute
			path per line, which is what the shell integration pipes to fzf.

			Examples:
			  dirmap top ~/Downloads --top 20 --min-size 10MB
			  dirmap top . --ext .go,!_test.go
			  dirmap top . --dirs --output paths
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, formats...); err != nil {
				return err
			}

			if options.Depth < 0 {
				return errNegativeDepth
			}

			if minSizeStr != "" {
				size, err := humanize.ParseBytes(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid min-size: %w", err)
				}

				options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
			}

			e, err := g.resolve(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("top") {
				options.TopN = e.cfg.Top
			}

			options.Path = pathArg(args)
			options.Matcher = e.matcher
			options.Log = e.log
			options.ProgressInterval = e.cfg.ProgressInterval

			errOut := cmd.ErrOrStderr()
			noun := "files"

			if options.DirsMode {
				noun = "directories"
			}

			hook, done := progressLine(errOut, output == "table" && isTerminal(errOut) && !e.log.Enabled(logger.LevelDebug), noun)

			stats, err := summary.Run(cmd.Context(), options, hook)

			done()

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch output {
			case "json":
				return PrintJSON(stats, out)
			case "paths":
				return PrintPaths(stats, out)
			default:
				return PrintTable(stats, out)
			}
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringSliceVarP(
		&options.Extensions,
		"ext",
		"x",
		[]string{},
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	flags.StringVar(&minSizeStr, "min-size", "0KB", "Minimum file size (e.g., 1KB)")
	flags.IntVarP(&options.TopN, "top", "t", 10, "Number of top entries to display (default from config)")
	outputFlag(flags, &output, formats...)
	flags.IntVarP(&options.Depth, "depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	flags.BoolVar(&options.DirsMode, "dirs", false, "Analyze directories instead of individual files")

	return cmd
}
