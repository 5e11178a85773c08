package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/app"
	"github.com/abhisek/quizplay/internal/screens/history"
	"github.com/abhisek/quizplay/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past quiz sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		if !plain {
			d, err := openDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			return app.Run(cmd.Context(), d.historyScreen())
		}

		limit, _ := cmd.Flags().GetInt("limit")
		testID, _ := cmd.Flags().GetString("test")
		answers, _ := cmd.Flags().GetBool("answers")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit, TestID: testID})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}

		for _, sess := range sessions {
			fmt.Fprintln(out, history.FormatSession(sess))
			if !answers {
				continue
			}
			events, err := repo.QueryAnswers(ctx, sess.SessionID)
			if err != nil {
				return fmt.Errorf("query answers for %s: %w", sess.SessionID, err)
			}
			for _, a := range events {
				fmt.Fprintln(out, "    "+history.FormatAnswer(a))
			}
			fmt.Fprintln(out, strings.Repeat("─", 60))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Bool("plain", false, "Print to stdout instead of opening the TUI")
	historyCmd.Flags().IntP("limit", "n", history.Limit, "Number of sessions to print")
	historyCmd.Flags().String("test", "", "Only sessions for this test ID")
	historyCmd.Flags().Bool("answers", false, "Print each session's answers")
}
