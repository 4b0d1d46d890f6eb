package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/clauseguard/internal/assessment"
)

func newCompareCmd(st *state) *cobra.Command {
	var (
		asJSON  bool
		explain string
		lang    string
	)
	cmd := &cobra.Command{
		Use:   "compare <old> <new>",
		Short: "Compare the risk of two versions of a contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := assessment.ParseExplainMode(explain)
			if err != nil {
				return err
			}
			oldName, oldData, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			newName, newData, err := readDocument(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			a, shutdown, err := st.application(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown()

			cmp, err := a.Orch.Compare(cmd.Context(),
				assessment.Input{Name: oldName, Data: oldData, Language: lang, Explain: mode},
				assessment.Input{Name: newName, Data: newData, Language: lang, Explain: mode})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cmp)
			}
			return printComparison(out, cmp)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&asJSON, "json", false, "print JSON")
	f.StringVar(&explain, "explain", "none", "explain risky clauses: all or none")
	f.StringVar(&lang, "lang", "en", "explanation language: en, hi or both")
	return cmd
}

func printComparison(w io.Writer, cmp *assessment.Comparison) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s\n", cmp.Old.DocumentName, cmp.New.DocumentName)
	fmt.Fprintf(&b, "%s\n\n", cmp.Summary())
	fmt.Fprintf(&b, "Score: %d (%s) -> %d (%s)\n", cmp.Old.Score, cmp.Old.Grade, cmp.New.Score, cmp.New.Grade)

	list := func(title string, ids []string) {
		if len(ids) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, id := range ids {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}
	list("New risks", cmp.Added)
	list("Resolved risks", cmp.Removed)
	list("Unchanged risks", cmp.Unchanged)

	if len(cmp.Changes) > 0 {
		fmt.Fprintf(&b, "\nText changes (+%d/-%d characters):\n", cmp.Insertions, cmp.Deletions)
		for _, c := range cmp.Changes {
			sign := "+"
			if c.Type == "removed" {
				sign = "-"
			}
			fmt.Fprintf(&b, "  %s %s\n", sign, strings.Join(strings.Fields(c.Content), " "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
