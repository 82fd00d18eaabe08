package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/repo-pilot/internal/session"
)

var profileSettings session.Settings

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage stored profile settings",
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store credentials and the preferred model for --user",
	Long: `Store credentials and the preferred model for a profile. Secrets are
encrypted with ENCRYPTION_KEY before they are stored. Empty values leave the
stored ones unchanged.

Example:
  repo-pilot settings set --user alice --github-pat ghp_... --gemini-model gemini-2.5-pro`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		user := viper.GetString("USER")
		if user == "" {
			return fmt.Errorf("--user is required")
		}
		ctx := context.Background()
		return withServices(ctx, func(r *runner) error {
			if err := r.Sessions.SaveSettings(ctx, user, profileSettings); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}
			successColor.Printf("✅ Settings saved for %s\n", user)
			return nil
		})
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	settingsSetCmd.Flags().StringVar(&profileSettings.GitHubPAT, "github-pat", "", "GitHub personal access token")
	settingsSetCmd.Flags().StringVar(&profileSettings.GeminiAPIKey, "gemini-api-key", "", "Gemini API key")
	settingsSetCmd.Flags().StringVar(&profileSettings.GeminiModel, "gemini-model", "", "Preferred Gemini model")
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
