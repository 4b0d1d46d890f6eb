// Package cli implements the clauseguard command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/raysh454/clauseguard/internal/app"
	"github.com/raysh454/clauseguard/internal/config"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
)

// Version is set at build time:
// go build -ldflags "-X github.com/raysh454/clauseguard/internal/cli.Version=1.0.0"
var Version = "dev"

// Exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitBadInput   = 2
	ExitBelowLimit = 3
)

// errBelowThreshold is returned by analyze when --fail-under is not met.
var errBelowThreshold = errors.New("score below threshold")

// state is what PersistentPreRunE resolves for the subcommands.
type state struct {
	cfgFile  string
	logLevel string

	cfg      *config.Config
	settings map[string]any
	logger   *logging.ZapLogger

	// newApp is swapped in tests.
	newApp func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app.Application, error)
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	st := &state{newApp: app.NewApplication}

	root := &cobra.Command{
		Use:           "clauseguard",
		Short:         "Find risky clauses in contracts and score them",
		Long:          "clauseguard extracts the text of a contract (PDF, TXT or HTML), flags clauses that match a catalog of known risks, explains them in plain language and scores the document from 0 (risky) to 100 (safe).",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}
	root.SetVersionTemplate("clauseguard {{.Version}}\n")
	root.PersistentFlags().StringVarP(&st.cfgFile, "config", "c", "", "config file (default ./clauseguard.yaml)")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "override logger.level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(st),
		newAnalyzeCmd(st),
		newCompareCmd(st),
		newCategoriesCmd(),
		newConfigCmd(st),
		newPingCmd(st),
		newVersionCmd(),
	)
	return root
}

func (st *state) load(cmd *cobra.Command) error {
	v, err := config.NewViper(st.cfgFile)
	if err != nil {
		return err
	}
	if st.logLevel != "" {
		v.Set("logger.level", st.logLevel)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	st.cfg = cfg
	st.settings = v.AllSettings()
	st.logger = logging.NewStderr(cfg.Logger)
	st.logger.Debug("configuration loaded",
		logging.Field{Key: "command", Value: cmd.Name()},
		logging.Field{Key: "config_file", Value: v.ConfigFileUsed()},
		logging.Field{Key: "explanations", Value: cfg.ExplanationsEnabled()})
	return nil
}

// application builds the pipeline and returns it with its shutdown func.
func (st *state) application(ctx context.Context) (*app.Application, func(), error) {
	a, err := st.newApp(ctx, st.cfg, st.logger)
	if err != nil {
		return nil, nil, err
	}
	return a, func() {
		if err := a.Shutdown(context.Background()); err != nil {
			st.logger.Warn("shutdown", logging.Field{Key: "error", Value: err})
		}
	}, nil
}

// Execute runs the command line with args and returns the process exit
// code. Errors are printed to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(stderr, "Error:", err)
	return ExitCode(err)
}

// ExitCode maps an error onto the documented exit codes.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errBelowThreshold):
		return ExitBelowLimit
	case model.IsInputError(err):
		return ExitBadInput
	}
	return ExitFailure
}
