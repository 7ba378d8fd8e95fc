package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/benvon/plume/internal/models"
	"github.com/benvon/plume/internal/services/assistant"
	"github.com/spf13/cobra"
)

func newSettingsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the stored settings",
	}
	cmd.AddCommand(newSettingsShowCmd(open))
	cmd.AddCommand(newSettingsSetCmd(open))
	return cmd
}

func newSettingsShowCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active provider and per-provider settings (keys masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			prefs, err := a.Service.Settings(cmd.Context())
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			printSettings(cmd.OutOrStdout(), assistant.NewSettingsView(prefs))
			return nil
		},
	}
}

func printSettings(w io.Writer, view assistant.SettingsView) {
	fmt.Fprintf(w, "Active provider: %s\n", view.Provider)
	fmt.Fprintf(w, "Use emojis: %v\n", view.UseEmojis)
	fmt.Fprintln(w, "Providers:")

	providers := make([]string, 0, len(view.Settings))
	for p := range view.Settings {
		providers = append(providers, string(p))
	}
	sort.Strings(providers)
	for _, p := range providers {
		s := view.Settings[models.Provider(p)]
		fmt.Fprintf(w, "  - %s\n", p)
		fmt.Fprintf(w, "    Model: %s\n", s.Model)
		if s.URL != "" {
			fmt.Fprintf(w, "    URL: %s\n", s.URL)
		}
		if s.HasAPIKey {
			fmt.Fprintf(w, "    API key: %s\n", s.APIKey)
		}
	}

	r := view.SyntaxRules
	fmt.Fprintln(w, "Syntax rules:")
	fmt.Fprintf(w, "  word_order=%v subject_verb_agreement=%v verb_tense=%v gender_number=%v relative_pronouns=%v\n",
		r.WordOrder, r.SubjectVerbAgreement, r.VerbTense, r.GenderNumber, r.RelativePronouns)
}

func newSettingsSetCmd(open opener) *cobra.Command {
	var (
		provider, model, apiKey, url string
		useEmojis                    bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update settings",
		Long: "Update settings. --provider switches the active provider and is the target of --model and --api-key. " +
			"--url always sets the Ollama endpoint.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := assistant.UpdateSettingsRequest{Provider: provider}
			flags := cmd.Flags()

			if flags.Changed("model") || flags.Changed("api-key") || flags.Changed("url") {
				req.Settings = &assistant.ProviderSettingsInput{}
				if flags.Changed("model") {
					req.Settings.Model = &model
				}
				if flags.Changed("api-key") {
					req.Settings.APIKey = &apiKey
				}
				if flags.Changed("url") {
					req.Settings.URL = &url
				}
			}
			if flags.Changed("use-emojis") {
				req.UseEmojis = &useEmojis
			}
			if req.Provider == "" && req.Settings == nil && req.UseEmojis == nil {
				return fmt.Errorf("nothing to update: pass at least one flag")
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			prefs, err := a.Service.UpdateSettings(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("update settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings updated. Active provider: %s\n", prefs.ActiveProvider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Active provider (ollama, openai, anthropic, groq, gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model for --provider")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for --provider")
	cmd.Flags().StringVar(&url, "url", "", "Ollama server URL")
	cmd.Flags().BoolVar(&useEmojis, "use-emojis", false, "Allow emojis in reformulations")
	return cmd
}
