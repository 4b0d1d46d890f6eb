package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/server"
)

// shutdownGrace bounds how long in-flight requests and jobs get after a
// shutdown signal.
const shutdownGrace = 15 * time.Second

func newServeCmd(st *state) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and upload page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				st.cfg.Server.Addr = addr
			}
			ln, err := net.Listen("tcp", st.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", st.cfg.Server.Addr, err)
			}
			return runServe(cmd.Context(), st, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// runServe serves on ln until ctx is canceled, then shuts down gracefully.
func runServe(ctx context.Context, st *state, ln net.Listener) error {
	a, shutdown, err := st.application(ctx)
	if err != nil {
		ln.Close()
		return err
	}
	defer shutdown()

	srv, err := server.NewServer(server.Config{
		ListenAddr:     ln.Addr().String(),
		AllowedOrigins: st.cfg.Server.AllowedOrigins,
		ReadTimeout:    st.cfg.Server.ReadTimeout,
		MaxUploadBytes: st.cfg.Server.MaxUploadBytes,
		Version:        Version,
		Logger:         st.logger,
	}, a.Orch)
	if err != nil {
		ln.Close()
		return err
	}
	httpSrv := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		st.logger.Info("listening",
			logging.Field{Key: "addr", Value: ln.Addr().String()},
			logging.Field{Key: "explanations", Value: a.Orch.ExplanationsAvailable()})
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	st.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
