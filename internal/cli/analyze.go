package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/clauseguard/internal/assessment"
	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
	"github.com/raysh454/clauseguard/internal/report"
)

type analyzeOptions struct {
	format    string
	out       string
	explain   string
	lang      string
	failUnder int
}

func newAnalyzeCmd(st *state) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a contract and print or save the report",
		Long: `Analyze a PDF, TXT or HTML contract. Use "-" to read from stdin.

The report goes to stdout unless --out is given. When --out names a
directory the report is written there with a timestamped file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, st, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "terminal", "report format: text, markdown, json, html, terminal, pdf")
	f.StringVarP(&opts.out, "out", "o", "", "write the report to this file or directory")
	f.StringVar(&opts.explain, "explain", "all", "explain risky clauses: all or none")
	f.StringVar(&opts.lang, "lang", "en", "explanation language: en, hi or both")
	f.IntVar(&opts.failUnder, "fail-under", 0, "exit with status 3 when the score is below this value")
	return cmd
}

func runAnalyze(cmd *cobra.Command, st *state, path string, opts analyzeOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	mode, err := assessment.ParseExplainMode(opts.explain)
	if err != nil {
		return err
	}
	name, data, err := readDocument(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	a, shutdown, err := st.application(cmd.Context())
	if err != nil {
		return err
	}
	defer shutdown()

	res, err := a.Orch.Analyze(cmd.Context(), assessment.Input{
		Name:     name,
		Data:     data,
		Language: opts.lang,
		Explain:  mode,
	})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		st.logger.Warn(w, logging.Field{Key: "document", Value: res.DocumentName})
	}

	var buf bytes.Buffer
	if err := a.Orch.RenderReport(cmd.Context(), &buf, res, format); err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.out, format, buf.Bytes()); err != nil {
		return err
	}

	if opts.failUnder > 0 && res.Score < opts.failUnder {
		return fmt.Errorf("%w: %d < %d", errBelowThreshold, res.Score, opts.failUnder)
	}
	return nil
}

// readDocument loads path, or stdin when path is "-".
func readDocument(stdin io.Reader, path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("reading stdin: %w", err)
		}
		return "stdin", data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, model.NewInputError("read", fmt.Errorf("%w: %v", model.ErrUnreadableDocument, err))
	}
	return filepath.Base(path), data, nil
}

// writeOutput writes data to stdout, a file, or a timestamped file inside a
// directory.
func writeOutput(stdout io.Writer, out string, format report.Format, data []byte) error {
	if out == "" {
		_, err := stdout.Write(data)
		return err
	}
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		out = filepath.Join(out, report.FileName(format, time.Now()))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	_, err := fmt.Fprintf(stdout, "Report written to %s\n", out)
	return err
}
