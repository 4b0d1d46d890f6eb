package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/clauseguard/internal/llm"
)

func newPingCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the connection to the configured LLM provider",
		Long:  "Send a tiny completion request to the configured provider to confirm the API key and endpoint work before analyzing documents.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := llm.NewClient(ctx, st.cfg.LLM, st.logger)
			if err != nil {
				return err
			}
			if client == nil {
				return errors.New("no LLM configured: set llm.provider and the " + st.cfg.LLM.APIKeyEnv + " environment variable")
			}
			if st.cfg.LLM.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, st.cfg.LLM.Timeout)
				defer cancel()
			}

			start := time.Now()
			if err := llm.Ping(ctx, client); err != nil {
				return fmt.Errorf("llm connection failed: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "LLM connection OK: %s (%s)\n",
				client.Name(), time.Since(start).Round(time.Millisecond))
			return err
		},
	}
}
