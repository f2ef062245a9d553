// package formatter renders the video list as a table, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/vidshelf/internal/models"
	"github.com/desertthunder/vidshelf/internal/shared"
)

// Formats lists the accepted values for [Render].
var Formats = []string{"table", "json", "csv", "markdown"}

const timeLayout = "2006-01-02 15:04"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// FormatSize renders a byte count with a binary unit (B, KB, MB, GB, TB).
// The unit is promoted once the value would print as 1024.0.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	value, exp := float64(size)/unit, 0
	for math.Round(value*10)/10 >= unit && exp < 3 {
		value /= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", value, "KMGT"[exp])
}

// Render dispatches to the exporter for format.
func Render(format string, records []*models.VideoRecord) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return []byte(ExportToTable(records) + "\n"), nil
	case "json":
		return ExportToJSON(records, true)
	case "csv":
		return ExportToCSV(records)
	case "markdown", "md":
		return ExportToMarkdown(records)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

// ExportToTable renders records as a bordered table with columns: #, ID, Name, Size, Created
func ExportToTable(records []*models.VideoRecord) string {
	if len(records) == 0 {
		return "No videos imported yet."
	}

	rows := make([][]string, 0, len(records))
	var total int64
	for i, r := range records {
		total += r.Size()
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.ID(),
			r.Name(),
			FormatSize(r.Size()),
			r.CreatedAt().Local().Format(timeLayout),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "NAME", "SIZE", "CREATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return fmt.Sprintf("%s\n%d videos, %s", t.Render(), len(records), FormatSize(total))
}

// ExportToJSON encodes records as a JSON array (always an array, never null)
func ExportToJSON(records []*models.VideoRecord, pretty bool) ([]byte, error) {
	if records == nil {
		records = []*models.VideoRecord{}
	}

	data, err := shared.MarshalJSON(records, pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal videos: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts records to CSV with columns: ID, Name, Size, Path, CreatedAt
func ExportToCSV(records []*models.VideoRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Size", "Path", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		record := []string{
			r.ID(),
			r.Name(),
			strconv.FormatInt(r.Size(), 10),
			r.Path(),
			r.CreatedAt().UTC().Format(time.RFC3339),
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

// ExportToMarkdown converts records to a Markdown document with a summary line and a table
func ExportToMarkdown(records []*models.VideoRecord) ([]byte, error) {
	var buf bytes.Buffer
	var total int64
	for _, r := range records {
		total += r.Size()
	}

	buf.WriteString("# Videos\n\n")
	buf.WriteString(fmt.Sprintf("**Count**: %d\n", len(records)))
	buf.WriteString(fmt.Sprintf("**Total size**: %s\n\n", FormatSize(total)))

	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Name | Size | Created | ID |\n")
	buf.WriteString("|---|------|------|---------|----|\n")
	for i, r := range records {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | `%s` |\n",
			i+1,
			escapeMarkdownCell(r.Name()),
			FormatSize(r.Size()),
			r.CreatedAt().UTC().Format(timeLayout),
			r.ID(),
		))
	}

	return buf.Bytes(), nil
}

// ExportBatches renders import history as a table
func ExportBatches(batches []*models.ImportBatch) string {
	if len(batches) == 0 {
		return "No imports recorded."
	}

	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{
			b.ID,
			b.StartedAt.Local().Format(timeLayout),
			strconv.Itoa(b.Total),
			strconv.Itoa(b.Imported),
			strconv.Itoa(b.Failed),
			b.Duration().Round(time.Millisecond).String(),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("BATCH", "STARTED", "TOTAL", "IMPORTED", "FAILED", "DURATION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// WriteExport renders records in format and writes them to path, creating parent directories.
func WriteExport(records []*models.VideoRecord, format, path string) error {
	data, err := Render(format, records)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
