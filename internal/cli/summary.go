package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderSummary formats the zone counts and one row per destination,
// largest unit share first
func renderSummary(agg domain.Aggregation, mode domain.ScanMode) string {
	s := agg.Summary

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Drop zones (%s scan)", mode)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Zones: %d total, %d active, %d empty, %d error\n",
		s.TotalZones, s.ActiveZones, s.EmptyZones, s.ErrorZones)
	fmt.Fprintf(&b, "Pallets: %d  Units: %d\n", s.TotalPallets, s.TotalUnits)

	names := agg.DestinationNames()
	if len(names) == 0 {
		b.WriteString("No active zones.\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("DESTINATION", "ZONES", "PALLETS", "UNITS", "CATEGORIES").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, name := range names {
		dest := agg.PerDestination[name]
		t.Row(
			name,
			strconv.FormatFloat(dest.ZoneShare, 'f', 2, 64),
			strconv.Itoa(dest.PalletShare),
			strconv.Itoa(dest.UnitShare),
			strings.Join(dest.Categories, ", "),
		)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
