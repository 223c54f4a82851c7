// Package cli provides the emoclass command-line interface
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smegmarip/stash-emotion-plugin/internal/config"
	"github.com/smegmarip/stash-emotion-plugin/internal/store"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	rulesPath  string
	dbPath     string
	outputText bool // --text flag for human-readable output (default is JSON)
}

// NewRootCmd builds the emoclass command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "emoclass",
		Short: "Fuzzy-logic facial expression classifier",
		Long: `emoclass - classify facial expressions from blendshape scores

Blendshape scores come from a face landmark model as JSON, either an object
of category name to score, a list of {category_name, score} entries, or a
vision service result with a "faces" list.

Quick Start:
  emoclass classify --input face.json      # Classify a face
  echo '{"jawOpen": 0.4}' | emoclass classify
  emoclass rules --text                    # Show the rule base
  emoclass history --db emotion.db         # Recent classifications`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (default $EMOTION_CONFIG)")
	flags.StringVar(&opts.rulesPath, "rules", "", "Rule set YAML file (default: built-in rules)")
	flags.StringVar(&opts.dbPath, "db", "", "Classification history database")
	flags.BoolVar(&opts.outputText, "text", false, "Human-readable text output (default is JSON)")

	root.AddCommand(
		newClassifyCmd(opts),
		newRulesCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		outputError(root.ErrOrStderr(), err)
	}
	return err
}

// loadConfig reads the config file and environment, then applies flags
func (o *options) loadConfig() (*config.PluginConfig, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.rulesPath != "" {
		cfg.RuleSetPath = o.rulesPath
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

// openStore opens the history database, or returns nil when none is configured
func openStore(cfg *config.PluginConfig) (*store.Store, error) {
	if cfg.DBPath == "" {
		return nil, nil
	}
	return store.Open(cfg.DBPath)
}

// outputJSON writes an indented JSON document
func outputJSON(w io.Writer, result interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError outputs an error in the appropriate format
func outputError(w io.Writer, err error) {
	result := map[string]interface{}{
		"status": "error",
		"error":  err.Error(),
	}
	json.NewEncoder(w).Encode(result)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "emoclass version %s\n", Version)
		},
	}
}
