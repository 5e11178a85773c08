package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizplay",
	Short: "Take quizzes in the terminal",
	Long: "quizplay fetches tests from a quiz service and walks you through them one " +
		"question at a time, scoring each answer as it is submitted.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPicker(cmd)
	},
}

// Execute runs the root command. Cancelling ctx stops the TUI or the
// fixture server.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env-file", "", "Dotenv file to read before the environment (default .env)")
	flags.String("db", "", "Path to SQLite database file (overrides QUIZPLAY_DB)")
	flags.String("api-url", "", "Base URL of the quiz service (overrides QUIZPLAY_API_URL)")
	flags.String("token", "", "Bearer token for the quiz service (overrides QUIZPLAY_TOKEN)")
	flags.String("tf-mode", "", "True/false scoring: strict or legacy (overrides QUIZPLAY_TF_MODE)")
	flags.String("sound", "", "Answer feedback: bell, command or off (overrides QUIZPLAY_SOUND)")
	flags.Bool("free-nav", false, "Allow moving past a question without submitting it")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: json or text")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
