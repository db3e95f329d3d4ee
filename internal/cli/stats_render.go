package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/dircache/internal/cache"
)

// statsView is what the stats command renders.
type statsView struct {
	Config  cache.Config
	Reports []cache.Report
	Total   cache.Report
}

const statsBoxWidth = 64

// boxBorderColor returns the lipgloss.Color used for the stats box border.
func boxBorderColor() lipgloss.Color { return lipgloss.Color("240") }

// boxTitleColor returns the lipgloss.Color used for the stats box title.
func boxTitleColor() lipgloss.Color { return lipgloss.Color("39") }

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func formatAge(r cache.Report) string {
	if r.OldestTimestamp.IsZero() {
		return "-"
	}
	return humanize.Time(r.OldestTimestamp)
}

// statsRows renders one line per report plus the header.
func statsRows(v statsView) []string {
	p := message.NewPrinter(language.English)
	rows := []string{fmt.Sprintf("%-10s %8s %10s %16s", "NAMESPACE", "ENTRIES", "SIZE", "OLDEST")}
	for _, r := range v.Reports {
		rows = append(rows, p.Sprintf("%-10s %8d %10s %16s", r.Namespace, r.EntryCount, formatBytes(r.TotalBytes), formatAge(r)))
	}
	return rows
}

func statsSummary(v statsView) []string {
	p := message.NewPrinter(language.English)
	return []string{
		p.Sprintf("Entries: %d (%s)", v.Total.EntryCount, formatBytes(v.Total.TotalBytes)),
		p.Sprintf("Hits: %d  Misses: %d  Hit rate: %.1f%%", v.Total.Hits, v.Total.Misses, v.Total.HitRate*100),
		p.Sprintf("Evictions this run: %d", v.Total.Evictions),
		fmt.Sprintf("Limits per namespace: %s, %s entries, TTL %s",
			formatBytes(v.Config.MaxBytes),
			humanize.Comma(int64(v.Config.MaxEntries)),
			cache.FormatDuration(v.Config.DefaultTTL)),
		fmt.Sprintf("Persistence: %t", v.Config.PersistenceEnabled),
	}
}

// renderPlainStats writes the stats view without styling.
func renderPlainStats(w io.Writer, v statsView) error {
	var b strings.Builder
	for _, row := range statsRows(v) {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, line := range statsSummary(v) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// renderStyledStats writes a bordered stats box for terminal output.
func renderStyledStats(w io.Writer, v statsView) error {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(boxTitleColor())

	headerStyle := lipgloss.NewStyle().Bold(true)

	borderStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(boxBorderColor()).
		Padding(0, 1).
		Width(statsBoxWidth)

	var content strings.Builder
	content.WriteString(titleStyle.Render("CACHE STATISTICS"))
	content.WriteString("\n\n")

	for i, row := range statsRows(v) {
		if i == 0 {
			row = headerStyle.Render(row)
		}
		content.WriteString(row)
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(strings.Join(statsSummary(v), "\n"))

	_, err := fmt.Fprintln(w, borderStyle.Render(content.String()))
	return err
}
