package commands

import (
	"fmt"

	"github.com/benvon/plume/internal/models"
	"github.com/spf13/cobra"
)

func newModelsCmd(open opener) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "models <provider>",
		Short: "List the models offered by a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			list, err := a.Service.ListModels(cmd.Context(), args[0], url)
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}
			w := cmd.OutOrStdout()
			for _, m := range list {
				if m.Name != "" && m.Name != m.ID {
					fmt.Fprintf(w, "%s\t%s\n", m.ID, m.Name)
					continue
				}
				fmt.Fprintln(w, m.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Ollama server URL override")
	return cmd
}

func newStatusCmd(open opener) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the active provider is usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			status, err := a.Service.CheckStatus(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("check status: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Provider: %s\n", status.Provider)
			fmt.Fprintf(w, "Status: %s\n", status.State)
			if status.Error != "" {
				fmt.Fprintf(w, "Error: %s\n", status.Error)
			}
			if status.State != models.StateConnected {
				return fmt.Errorf("provider %s is %s", status.Provider, status.State)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Ollama server URL override")
	return cmd
}
