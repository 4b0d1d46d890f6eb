package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/raysh454/clauseguard/internal/catalog"
)

func newCategoriesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the risk catalog with severities and weights",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog.Categories())
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "LABEL", "SEVERITY", "WEIGHT")
			for _, e := range catalog.All() {
				t.Row(e.ID, e.Label, e.Severity.Title(), strconv.Itoa(e.Severity.Weight()))
			}
			_, err := fmt.Fprintln(out, t.Render())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
