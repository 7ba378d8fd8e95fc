package commands

import (
	"fmt"
	"io"

	"github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/models"
	"github.com/spf13/cobra"
)

func newHistoryCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or reset the generation history",
	}
	cmd.AddCommand(newHistoryListCmd(open))
	cmd.AddCommand(newHistoryResetCmd(open))
	cmd.AddCommand(newHistoryCountCmd(open))
	return cmd
}

func newHistoryListCmd(open opener) *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			kinds := models.AllHistoryKinds()
			if kind != "" {
				kinds = []models.HistoryKind{models.HistoryKind(kind)}
			}

			w := cmd.OutOrStdout()
			for _, k := range kinds {
				records, err := a.Service.HistoryByKind(cmd.Context(), string(k), limit)
				if err != nil {
					return fmt.Errorf("list %s history: %w", k, err)
				}
				printRecords(w, k, records)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only this kind (reformulation, translation, correction, email)")
	cmd.Flags().IntVar(&limit, "limit", -1, "Records per kind (0 = all, default from HISTORY_LIMIT)")
	return cmd
}

func printRecords(w io.Writer, kind models.HistoryKind, records []*models.HistoryRecord) {
	fmt.Fprintf(w, "%s (%d)\n", kind, len(records))
	for _, r := range records {
		fmt.Fprintf(w, "  [%s] %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), logger.SanitizePreview(r.OriginalText))
		fmt.Fprintf(w, "    -> %s\n", logger.SanitizePreview(r.GeneratedText))
	}
}

func newHistoryResetCmd(open opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every history record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete history without --yes")
			}
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.Service.ResetHistory(cmd.Context()); err != nil {
				return fmt.Errorf("reset history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newHistoryCountCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of stored records per kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			counts, err := a.Service.HistoryCounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("count history: %w", err)
			}
			for _, kind := range models.AllHistoryKinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", kind, counts[kind])
			}
			return nil
		},
	}
}
