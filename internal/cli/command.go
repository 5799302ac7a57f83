package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dirmap/internal/config"
	"github.com/idelchi/dirmap/internal/exclude"
	"github.com/idelchi/dirmap/internal/logger"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// globals holds the flags shared by every command.
type globals struct {
	configPath    string
	logLevel      string
	debug         bool
	excludes      []string
	caseSensitive bool
}

// env is what a command needs once flags and the config file are resolved.
type env struct {
	cfg     *config.Config
	cfgPath string
	log     *logger.Logger
	matcher *exclude.Matcher
}

// resolve loads the config file and applies the global flags on top of it.
func (g *globals) resolve(cmd *cobra.Command) (*env, error) {
	path := g.configPath
	if path == "" {
		var err error

		path, err = config.Path()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("case-sensitive") {
		cfg.CaseSensitive = g.caseSensitive
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if cmd.Flags().Changed("log-level") {
		level = logger.ParseLevel(g.logLevel)
	}

	if g.debug {
		level = logger.LevelDebug
	}

	extra, err := exclude.ParseRules(g.excludes)
	if err != nil {
		return nil, err
	}

	matcher, err := cfg.Matcher(extra...)
	if err != nil {
		return nil, fmt.Errorf("compiling exclusion rules: %w", err)
	}

	return &env{
		cfg:     cfg,
		cfgPath: path,
		log:     logger.New(cmd.ErrOrStderr(), level),
		matcher: matcher,
	}, nil
}

// Command builds the dirmap command tree.
func (c CLI) Command() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "dirmap",
		Short: "Disk usage treemaps with exclusion rules",
		Long: heredoc.Doc(`
			dirmap scans a directory tree, sums the sizes of everything below it and
			lays the result out as a squarified treemap.

			Exclusion rules leave entries out of every scan. A rule is one of:
			  /absolute/path     the path itself and everything below it
			  *.iso, */cache/*   a glob matched against the name or the full path
			  node_modules       a token matched against the entry name

			Rules given with --exclude apply to one invocation; rules added with
			'dirmap exclude add' are stored in the configuration file.
		`),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.SortFlags = false
	flags.StringVar(&g.configPath, "config", "", "Configuration file (default: <user config dir>/dirmap/config.yaml)")
	flags.StringArrayVarP(&g.excludes, "exclude", "e", nil, "Additional exclusion rule (repeatable)")
	flags.BoolVar(&g.caseSensitive, "case-sensitive", false, "Match globs and tokens case-sensitively")
	flags.StringVar(&g.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&g.debug, "debug", false, "Enable debug output")

	root.AddCommand(
		newScanCommand(g),
		newLayoutCommand(g),
		newTopCommand(g),
		newExcludeCommand(g),
		newInitCommand(),
	)

	return root
}

// Execute runs the CLI with the process arguments. An interrupt cancels the
// running command.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.Command().ExecuteContext(ctx)
}

// outputFlag registers --output restricted to the given formats.
func outputFlag(fs *pflag.FlagSet, target *string, formats ...string) {
	fs.StringVarP(target, "output", "o", formats[0], fmt.Sprintf("Output format: one of %v", formats))
}

// checkOutput validates a value registered with outputFlag.
func checkOutput(value string, formats ...string) error {
	if !slices.Contains(formats, value) {
		return fmt.Errorf("invalid output format %q: must be one of %v", value, formats)
	}

	return nil
}

// pathArg returns the optional positional path, defaulting to the working directory.
func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}

	return args[0]
}

var errNegativeDepth = errors.New("depth cannot be negative")
