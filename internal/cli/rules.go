package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smegmarip/stash-emotion-plugin/internal/emotion"
	"github.com/smegmarip/stash-emotion-plugin/internal/fuzzy"
)

func newRulesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the variables and rules of the active rule base",
		Long: `Print the active rule base. The default output is a rule set YAML
document that can be edited and passed back with --rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var system *fuzzy.System
			if cfg.RuleSetPath != "" {
				system, err = fuzzy.LoadRuleSet(cfg.RuleSetPath)
			} else {
				system, err = emotion.DefaultSystem()
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.outputText {
				printSystem(w, system)
				return nil
			}

			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(system.Spec()); err != nil {
				return fmt.Errorf("failed to encode rule set: %w", err)
			}
			return enc.Close()
		},
	}
}

// printSystem lists variables with their terms, then the numbered rules
func printSystem(w io.Writer, system *fuzzy.System) {
	printVariable := func(v *fuzzy.Variable) {
		lo, hi := v.Universe()
		fmt.Fprintf(w, "  %s [%g, %g]\n", v.Name(), lo, hi)
		for _, term := range v.Terms() {
			fmt.Fprintf(w, "    %-12s %s\n", term.Name, term.Func)
		}
	}

	fmt.Fprintln(w, "Inputs:")
	for _, v := range system.Inputs() {
		printVariable(v)
	}
	fmt.Fprintln(w, "Output:")
	printVariable(system.Output())

	fmt.Fprintln(w, "Rules:")
	for i, rule := range system.Rules() {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, rule)
	}
}
