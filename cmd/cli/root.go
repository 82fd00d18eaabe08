package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/repo-pilot/internal/app"
	"github.com/sevigo/repo-pilot/internal/core"
	"github.com/sevigo/repo-pilot/internal/gitutil"
	"github.com/sevigo/repo-pilot/internal/session"
	"github.com/sevigo/repo-pilot/internal/wire"
)

var (
	githubToken string
	geminiKey   string
	geminiModel string
	userID      string
	verbose     bool
	outputJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "repo-pilot",
	Short: "repo-pilot is the command-line interface for Repo Pilot.",
	Long: `A CLI for running Repo Pilot analyses against a GitHub repository: issue
analysis and triage, pull request review, CI failure analysis, documentation
and publishing proposed fixes as pull requests.

Credentials are taken from flags, then from the stored profile of --user,
then from the server configuration.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&githubToken, "github-token", "t", "", "GitHub token")
	flags.StringVarP(&geminiKey, "gemini-key", "k", "", "Gemini API key")
	flags.StringVarP(&geminiModel, "model", "m", "", "Gemini model overriding the per-task default")
	flags.StringVarP(&userID, "user", "u", "", "Profile whose stored settings are used")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Write logs to stderr")
	flags.BoolVar(&outputJSON, "json", false, "Print results as JSON")

	for key, flag := range map[string]string{
		"GITHUB_TOKEN": "github-token",
		"GEMINI_KEY":   "gemini-key",
		"MODEL":        "model",
		"USER":         "user",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			slog.Error("Error binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("RP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// runner carries what every command needs once the services are up.
type runner struct {
	*app.Services
	sess core.Session
}

// withServices wires the services, resolves the caller's session and runs fn.
func withServices(ctx context.Context, fn func(r *runner) error) error {
	var logWriter io.Writer = io.Discard
	if verbose {
		logWriter = os.Stderr
	}
	services, cleanup, err := wire.InitializeServices(logWriter)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w\n\nTip: Check your .env file or RP_ environment variables", err)
	}
	defer cleanup()

	sess, err := services.Sessions.Resolve(ctx, session.Overrides{
		UserID:      viper.GetString("USER"),
		GitHubToken: viper.GetString("GITHUB_TOKEN"),
		AIAPIKey:    viper.GetString("GEMINI_KEY"),
		AIModel:     viper.GetString("MODEL"),
	})
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}
	return fn(&runner{Services: services, sess: sess})
}

// target parses the repository argument and narrows it to kind when kind is
// not KindRepo. A trailing numeric argument supplies the number.
func target(args []string, kind gitutil.Kind) (gitutil.Target, error) {
	t, err := gitutil.ParseTarget(args[0])
	if err != nil {
		return gitutil.Target{}, err
	}
	if kind == gitutil.KindRepo {
		return t, nil
	}
	var number int64
	if len(args) > 1 {
		if number, err = parseNumber(args[1]); err != nil {
			return gitutil.Target{}, err
		}
	}
	return t.Expect(kind, number)
}

func parseNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}
