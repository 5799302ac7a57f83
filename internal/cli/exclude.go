package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dirmap/internal/config"
	"github.com/idelchi/dirmap/internal/exclude"
)

func newExcludeCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Manage the stored exclusion rules",
		Long: heredoc.Doc(`
			Manage the exclusion rules stored in the configuration file. Stored rules
			apply to every scan, layout and top run.

			Free text is classified automatically: absolute paths become path rules,
			text containing *, ? or [ becomes a glob, anything else a token.
		`),
	}

	cmd.AddCommand(
		newExcludeListCommand(g),
		newExcludeAddCommand(g),
		newExcludeRemoveCommand(g),
		newExcludeClearCommand(g),
		newExcludeQuickCommand(g),
	)

	return cmd
}

func newExcludeListCommand(g *globals) *cobra.Command {
	var output string

	formats := []string{"table", "json"}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the stored rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output, formats...); err != nil {
				return err
			}

			e, err := g.resolve(cmd)
			if err != nil {
				return err
			}

			if output == "json" {
				return PrintJSON(e.cfg.Excludes, cmd.OutOrStdout())
			}

			return PrintRules(e.cfg.Excludes, cmd.OutOrStdout())
		},
	}

	outputFlag(cmd.Flags(), &output, formats...)

	return cmd
}

func newExcludeAddCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add RULE...",
		Short: "Store new rules",
		Example: heredoc.Doc(`
			dirmap exclude add node_modules '*.iso' /var/cache
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := exclude.ParseRules(args)
			if err != nil {
				return err
			}

			return storeRules(cmd, g, rules, true)
		},
	}
}

func newExcludeRemoveCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "remove RULE...",
		Aliases: []string{"rm"},
		Short:   "Remove stored rules",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := exclude.ParseRules(args)
			if err != nil {
				return err
			}

			return storeRules(cmd, g, rules, false)
		},
	}
}

func newExcludeClearCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.resolve(cmd)
			if err != nil {
				return err
			}

			removed := 0

			if _, err := config.Update(e.cfgPath, func(c *config.Config) error {
				removed = len(c.Excludes)
				c.Excludes = []exclude.Rule{}

				return nil
			}); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d rules.\n", removed)

			return err
		},
	}
}

func newExcludeQuickCommand(g *globals) *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "quick PATH",
		Short: "Store a rule derived from an existing entry",
		Long: heredoc.Doc(`
			Derive a rule from an existing file or directory and store it.

			A directory is excluded by its name wherever it appears, a file by its
			extension (*.ext) or by its name when it has none. With --exact only the
			entry itself is excluded, by its absolute path.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving absolute path: %w", err)
			}

			info, err := os.Lstat(abs)
			if err != nil {
				return fmt.Errorf("accessing path %q: %w", args[0], err)
			}

			rule := exclude.QuickRule(info.Name(), abs, info.IsDir(), exact)

			return storeRules(cmd, g, []exclude.Rule{rule}, true)
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "Exclude only this entry by its absolute path")

	return cmd
}

// storeRules adds or removes rules in the config file and reports the change.
func storeRules(cmd *cobra.Command, g *globals, rules []exclude.Rule, add bool) error {
	e, err := g.resolve(cmd)
	if err != nil {
		return err
	}

	changed := 0

	if _, err := config.Update(e.cfgPath, func(c *config.Config) error {
		if add {
			changed = c.AddRules(rules...)
		} else {
			changed = c.RemoveRules(rules...)
		}

		return nil
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	for _, r := range rules {
		e.log.Debugf("rule %s in %s", r, e.cfgPath)
	}

	switch {
	case add:
		_, err = fmt.Fprintf(out, "Added %d of %d rules.\n", changed, len(rules))
	case changed == 0:
		err = errors.New("no matching rules stored")
	default:
		_, err = fmt.Fprintf(out, "Removed %d rules.\n", changed)
	}

	return err
}
