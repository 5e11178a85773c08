package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/app"
	"github.com/abhisek/quizplay/internal/screens/picker"
)

var playCmd = &cobra.Command{
	Use:   "play <test-id>",
	Short: "Take one test",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		d.logger.Info("starting", "command", "play", "test_id", args[0], "version", version)
		return app.Run(cmd.Context(), d.playScreen(args[0]))
	},
}

// runPicker launches the TUI on the test picker.
func runPicker(cmd *cobra.Command) error {
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	var status *int
	if cmd.Flags().Changed("status") {
		s, _ := cmd.Flags().GetInt("status")
		status = &s
	}
	pageSize, _ := cmd.Flags().GetInt("page-size")
	if pageSize <= 0 {
		return fmt.Errorf("--page-size must be positive")
	}

	d.logger.Info("starting", "command", "picker", "version", version, "api", d.cfg.APIBaseURL)
	root := picker.New(picker.Options{
		Lister:   d.client,
		Open:     d.openTest,
		History:  d.historyScreen,
		PageSize: pageSize,
		Status:   status,
	})
	return app.Run(cmd.Context(), root)
}

func init() {
	rootCmd.Flags().Int("status", 0, "Only list tests with this status")
	rootCmd.Flags().Int("page-size", picker.DefaultPageSize, "Tests per page")
}
