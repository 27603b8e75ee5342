package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [category...]",
		Short: "Show the destination of sortation categories, or the whole table",
		Example: `  dropzonectl classify "4 - LOW VALUE TTA"
  dropzonectl classify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(borderStyle).
				Headers("CATEGORY", "DESTINATION")

			if len(args) == 0 {
				for _, mapping := range domain.ClassificationTable() {
					t.Row(mapping.Category, mapping.Destination)
				}
			} else {
				for _, category := range args {
					t.Row(category, domain.DestinationFor(category))
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}
