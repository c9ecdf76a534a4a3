// package formatter renders the recent playlists list in various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/dustin/go-humanize"
)

// Output formats accepted by [Format].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// Format renders playlists in the named format.
func Format(playlists []models.PlaylistSummary, format string) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ExportToText(playlists)
	case FormatMarkdown:
		return ExportToMarkdown(playlists, "Recent Playlists")
	case FormatCSV:
		return ExportToCSV(playlists)
	case FormatJSON:
		return ExportToJSON(playlists)
	default:
		return nil, fmt.Errorf("%w: format %q (expected one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

// ExportToCSV converts playlists to CSV with columns: Position, ID, Title, Source, Location, Count, Imported, Updated, AutoRefresh
func ExportToCSV(playlists []models.PlaylistSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Source", "Location", "Count", "Imported", "Updated", "AutoRefresh"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		updated := ""
		if p.UpdateDate != nil {
			updated = p.UpdateDate.Format(time.RFC3339)
		}
		record := []string{
			strconv.Itoa(p.Position),
			p.ID,
			p.Title,
			p.Kind().String(),
			p.Location(),
			strconv.Itoa(p.Count),
			p.ImportDate.Format(time.RFC3339),
			updated,
			strconv.FormatBool(p.AutoRefresh),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts playlists to a Markdown document under the given heading
func ExportToMarkdown(playlists []models.PlaylistSummary, heading string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", heading)
	fmt.Fprintf(&buf, "**Playlists**: %d\n\n", len(playlists))

	if len(playlists) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Title | Tracks | Source | Updated |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, p := range playlists {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n",
			p.Position,
			escapeCell(p.Title),
			humanize.Comma(int64(p.Count)),
			escapeCell(p.Location()),
			lastUpdated(p),
		)
	}

	return buf.Bytes(), nil
}

// ExportToText converts playlists to plain text, one line per playlist
func ExportToText(playlists []models.PlaylistSummary) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlists: %d\n\n", len(playlists))
	for _, p := range playlists {
		fmt.Fprintf(&buf, "%d. %s (%s) [%s]\n", p.Position, p.Title, humanize.Comma(int64(p.Count)), p.ID)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts playlists to indented JSON
func ExportToJSON(playlists []models.PlaylistSummary) ([]byte, error) {
	if playlists == nil {
		playlists = []models.PlaylistSummary{}
	}
	return shared.MarshalJSON(playlists, true)
}

// Info renders every detail of one playlist, with dates relative to now.
func Info(p models.PlaylistSummary, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Title:        %s\n", p.Title)
	fmt.Fprintf(&b, "ID:           %s\n", p.ID)
	fmt.Fprintf(&b, "Position:     %d\n", p.Position)
	fmt.Fprintf(&b, "Tracks:       %s\n", humanize.Comma(int64(p.Count)))
	fmt.Fprintf(&b, "Source:       %s (%s)\n", p.Location(), p.Kind())
	fmt.Fprintf(&b, "Imported:     %s\n", relative(p.ImportDate, now))
	if p.UpdateDate != nil {
		fmt.Fprintf(&b, "Updated:      %s\n", relative(*p.UpdateDate, now))
	} else {
		b.WriteString("Updated:      never\n")
	}
	fmt.Fprintf(&b, "Auto-refresh: %s\n", onOff(p.AutoRefresh))

	return b.String()
}

// WriteExport renders playlists in format and writes them to path.
func WriteExport(playlists []models.PlaylistSummary, format, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Format(playlists, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func relative(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func lastUpdated(p models.PlaylistSummary) string {
	if p.UpdateDate == nil {
		return "never"
	}
	return p.UpdateDate.Format(time.DateOnly)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
