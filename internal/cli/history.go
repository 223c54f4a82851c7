package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smegmarip/stash-emotion-plugin/internal/store"
)

// HistoryOutput is the result of the history command
type HistoryOutput struct {
	Records []store.Record     `json:"records"`
	Counts  []store.LabelCount `json:"counts"`
}

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent classifications and label counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			history, err := openStore(cfg)
			if err != nil {
				return err
			}
			if history == nil {
				return fmt.Errorf("no history database configured (use --db or EMOTION_DB)")
			}
			defer history.Close()

			records, err := history.Recent(limit)
			if err != nil {
				return err
			}
			counts, err := history.CountByLabel()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !opts.outputText {
				return outputJSON(w, HistoryOutput{Records: records, Counts: counts})
			}

			for _, r := range records {
				fmt.Fprintf(w, "%s  %-12s %.3f  %s\n",
					r.CreatedAt.Local().Format(time.DateTime), r.Label, r.Confidence, r.Source)
			}
			fmt.Fprintln(w, "Totals:")
			for _, c := range counts {
				fmt.Fprintf(w, "  %-12s %d\n", c.Label, c.Count)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to list")
	return cmd
}
