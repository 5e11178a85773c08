package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/api"
	"github.com/abhisek/quizplay/internal/logging"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List tests available on the quiz service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		search, _ := cmd.Flags().GetString("search")

		q := api.SearchQuery{Page: page, PageSize: pageSize, Search: search}
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetInt("status")
			q.Status = &s
		}

		client, err := api.New(api.Config{
			BaseURL:          cfg.APIBaseURL,
			Token:            cfg.Token,
			Timeout:          cfg.RequestTimeout,
			MinServerVersion: cfg.MinServerVersion,
			Logger:           logging.New(cmd.ErrOrStderr(), logging.Options{Level: "warn", Format: "text"}),
		})
		if err != nil {
			return err
		}

		result, err := client.ListTests(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("list tests: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Tests) == 0 {
			fmt.Fprintln(out, "No tests found.")
			return nil
		}

		fmt.Fprintf(out, "%-26s  %-40s  %6s  %9s\n", "ID", "Name", "Status", "Questions")
		fmt.Fprintln(out, strings.Repeat("─", 87))
		for _, t := range result.Tests {
			fmt.Fprintf(out, "%-26s  %-40s  %6d  %9d\n", truncate(t.ID, 26), truncate(t.Name, 40), t.Status, t.QuestionCount)
		}
		fmt.Fprintln(out, strings.Repeat("─", 87))
		fmt.Fprintf(out, "%d of %d tests\n", len(result.Tests), result.Total)
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func init() {
	testsCmd.Flags().Int("page", 1, "Page number")
	testsCmd.Flags().Int("page-size", 20, "Tests per page")
	testsCmd.Flags().StringP("search", "s", "", "Only tests whose name contains this text")
	testsCmd.Flags().Int("status", 0, "Only tests with this status")
}
