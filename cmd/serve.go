package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizplay/internal/fixtures"
	"github.com/abhisek/quizplay/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve fixture tests over the quiz service API",
	Long: "serve runs a local stand-in for the quiz service. It serves the built-in " +
		"sample tests, or the tests in --fixtures, at GET /api/tests and GET /api/tests/:id.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		path, _ := cmd.Flags().GetString("fixtures")
		secret, _ := cmd.Flags().GetString("secret")
		mint, _ := cmd.Flags().GetDuration("mint-token")
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		if secret == "" {
			secret = os.Getenv("QUIZPLAY_FIXTURE_SECRET")
		}

		if mint > 0 {
			token, err := fixtures.MintToken([]byte(secret), "quizplay", mint)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		}

		catalog := fixtures.Sample()
		if path != "" {
			var err error
			if catalog, err = fixtures.LoadFile(path); err != nil {
				return err
			}
		}

		if level == "" {
			level = "info"
		}
		if format == "" {
			format = "text"
		}
		logger := logging.New(cmd.ErrOrStderr(), logging.Options{Level: level, Format: format})
		if level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           fixtures.NewRouter(catalog, fixtures.Options{Secret: []byte(secret), Version: version, Logger: logger}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("fixture server listening", "addr", addr, "tests", catalog.Len(), "auth", secret != "")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down fixture server")
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().String("fixtures", "", "JSON file of tests to serve instead of the built-in samples")
	serveCmd.Flags().String("secret", "", "HS256 secret; enables bearer auth (or QUIZPLAY_FIXTURE_SECRET)")
	serveCmd.Flags().Duration("mint-token", 0, "Print a token valid for this long, signed with --secret, and exit")
}
