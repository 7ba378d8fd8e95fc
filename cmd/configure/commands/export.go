package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/assistant"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Backup is the export document. Credentials are never included.
type Backup struct {
	ExportedAt time.Time                                      `json:"exported_at"`
	Settings   assistant.SettingsView                         `json:"settings"`
	History    map[models.HistoryKind][]*models.HistoryRecord `json:"history"`
}

func newExportCmd(open opener) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export settings (without credentials) and the full history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("--format must be json or yaml, got %q", format)
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			prefs, err := a.Service.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			backup := Backup{
				ExportedAt: time.Now().UTC(),
				Settings:   withoutCredentials(assistant.NewSettingsView(prefs)),
				History:    make(map[models.HistoryKind][]*models.HistoryRecord),
			}
			for _, kind := range models.AllHistoryKinds() {
				records, err := a.Service.HistoryByKind(cmd.Context(), string(kind), 0)
				if err != nil {
					return fmt.Errorf("load %s history: %w", kind, err)
				}
				backup.History[kind] = records
			}

			if output == "" {
				return encodeBackup(cmd.OutOrStdout(), backup, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			return writeBackup(f, backup, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func withoutCredentials(view assistant.SettingsView) assistant.SettingsView {
	for p, s := range view.Settings {
		s.APIKey = ""
		view.Settings[p] = s
	}
	return view
}

// writeBackup encodes b into wc and closes it. A failed close is reported
// since buffered data may not have reached the file.
func writeBackup(wc io.WriteCloser, b Backup, format string) error {
	err := encodeBackup(wc, b, format)
	if cerr := wc.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close backup: %w", cerr))
	}
	return err
}

// encodeBackup writes b as indented JSON or as YAML. YAML keys follow the
// JSON field names.
func encodeBackup(w io.Writer, b Backup, format string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("convert backup: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return enc.Close()
}
