package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vecino/internal/platform/config"
	"vecino/internal/platform/logging"
	"vecino/internal/platform/stubapi"
)

func newStubCmd() *cobra.Command {
	var (
		addr  string
		users []string
	)
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve an in-memory municipal backend for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(config.Log{Level: "info"}, os.Stderr).Named("stub")
			stub := stubapi.New(stubapi.WithLogger(logger))
			for _, u := range users {
				rut, password, ok := strings.Cut(u, ":")
				if !ok || rut == "" {
					return fmt.Errorf("--user must be rut:password, got %q", u)
				}
				id := stub.AddUser(rut, password, false)
				logger.Info("seeded user", "rut", rut, "id", id)
			}

			srv := &http.Server{Addr: addr, Handler: stub.Router(), ReadHeaderTimeout: 5 * time.Second}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stub backend listening, export %s=http://%s%s\n", config.EnvBaseURL, addr, stubapi.Prefix)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8089", "listen address")
	cmd.Flags().StringArrayVar(&users, "user", []string{"12345678-5:vecino"}, "seed account as rut:password, repeatable")
	return cmd
}
