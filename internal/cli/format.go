package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/modcatalog/internal/catalog"
	"github.com/dmitrijs2005/modcatalog/internal/common"
	"github.com/dmitrijs2005/modcatalog/internal/models"
	"github.com/dmitrijs2005/modcatalog/internal/remotestore"
	"github.com/dmitrijs2005/modcatalog/internal/syncer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func priceLabel(p float64) string {
	return "$" + catalog.FormatPrice(p)
}

func imageLabel(m models.Module) string {
	switch {
	case m.ImageData == "":
		return "-"
	case m.HasInlineImage():
		return "inline"
	default:
		return "url"
	}
}

// printModules renders modules as a table, or a notice when there are none.
func printModules(w io.Writer, modules []models.Module) {
	if len(modules) == 0 {
		fmt.Fprintln(w, "No modules found.")
		return
	}

	rows := make([][]string, 0, len(modules))
	for _, m := range modules {
		rows = append(rows, []string{m.ID, m.Brand, m.Model, priceLabel(m.Price), imageLabel(m)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "BRAND", "MODEL", "PRICE", "IMAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%d module(s)\n", len(modules))
}

func printModule(w io.Writer, m models.Module) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	line("ID", m.ID)
	line("Brand", m.Brand)
	line("Model", m.Model)
	line("Price", priceLabel(m.Price))
	if m.Description != "" {
		line("Description", m.Description)
	}
	switch {
	case m.HasInlineImage():
		line("Image", fmt.Sprintf("inline (%d bytes encoded)", len(m.ImageData)))
	case m.ImageData != "":
		line("Image", m.ImageData)
	}
	line("Created", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}

// describeOutcome turns a write outcome into one line for the user.
func describeOutcome(out syncer.Outcome) string {
	disabled := errors.Is(out.Err, common.ErrRemoteDisabled)
	switch out.State {
	case syncer.StateSynced:
		return okStyle.Render("Saved and synced.")
	case syncer.StatePendingSync:
		if disabled {
			return "Saved locally (no remote store configured)."
		}
		return warnStyle.Render(fmt.Sprintf("Saved locally only; cloud sync failed: %v", out.Err))
	case syncer.StateDeletedEverywhere:
		return okStyle.Render("Deleted.")
	case syncer.StateRemoteOrphan:
		if disabled {
			return "Deleted locally (no remote store configured)."
		}
		return warnStyle.Render(fmt.Sprintf("Deleted locally; the remote copy is still there and will return on the next sync: %v", out.Err))
	default:
		return string(out.State)
	}
}

func printOutcome(w io.Writer, out syncer.Outcome) {
	fmt.Fprintln(w, describeOutcome(out))
	if hint := remotestore.Hint(out.Err); hint != "" {
		fmt.Fprintln(w, "Hint:", hint)
	}
}

func printPullReport(w io.Writer, rep syncer.PullReport) {
	switch {
	case rep.Skipped:
		fmt.Fprintln(w, "No remote store configured; working from local data.")
	case rep.RemoteErr != nil:
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Remote store unavailable, working from local data: %v", rep.RemoteErr)))
		if hint := remotestore.Hint(rep.RemoteErr); hint != "" {
			fmt.Fprintln(w, "Hint:", hint)
		}
	case rep.Fetched == 0:
		fmt.Fprintln(w, "Remote store is empty.")
	default:
		fmt.Fprintf(w, "Pulled %d module(s) from the remote store.\n", rep.Applied)
	}
}
