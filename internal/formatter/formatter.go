// package formatter renders session history in various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/dumper/internal/models"
	"github.com/desertthunder/dumper/internal/shared"
)

// Supported export formats.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Export renders records in the named format.
func Export(format string, records []*models.SessionRecord) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ExportToText(records)
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown, "md":
		return ExportToMarkdown(records)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts records to CSV with columns: Sequence, ID, Partition, Target, Outcome, File, Started, Ended
func ExportToCSV(records []*models.SessionRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Partition", "Target", "Outcome", "File", "Started", "Ended"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range records {
		record := []string{
			strconv.Itoa(s.Sequence()),
			s.ID(),
			s.Partition(),
			s.Target(),
			s.Outcome().String(),
			s.File(),
			s.StartedAt().Format(time.RFC3339),
			formatEnded(s, time.RFC3339),
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

// ExportToMarkdown converts records to a Markdown table
func ExportToMarkdown(records []*models.SessionRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Dump sessions\n\n")
	buf.WriteString(fmt.Sprintf("**Sessions**: %d\n\n", len(records)))

	buf.WriteString("| # | Started | Outcome | Partition | Target | File |\n")
	buf.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range records {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			s.Sequence(),
			s.StartedAt().Format(time.DateTime),
			s.Outcome(),
			cell(s.Partition()),
			cell(s.Target()),
			cell(s.File()),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts records to plain text, one block per session
func ExportToText(records []*models.SessionRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Sessions: %d\n\n", len(records)))
	for _, s := range records {
		partition := s.Partition()
		if partition == "" {
			partition = "-"
		}
		buf.WriteString(fmt.Sprintf("#%d %s  %-10s  %s  [%s]\n", s.Sequence(), s.StartedAt().Local().Format(time.DateTime), s.Outcome(), s.Target(), partition))
		if s.File() != "" {
			buf.WriteString(fmt.Sprintf("    file: %s\n", s.File()))
		}
	}

	return buf.Bytes(), nil
}

func formatEnded(s *models.SessionRecord, layout string) string {
	if s.EndedAt() == nil {
		return ""
	}
	return s.EndedAt().Format(layout)
}

// cell escapes pipes so a value stays inside its table column.
func cell(v string) string {
	if v == "" {
		return "-"
	}
	return strings.ReplaceAll(v, "|", `\|`)
}
