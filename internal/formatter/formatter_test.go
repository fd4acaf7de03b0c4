package formatter

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/dumper/internal/models"
	"github.com/desertthunder/dumper/internal/shared"
)

func testRecords() []*models.SessionRecord {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	finished := models.NewSessionRecord("s-1", "", "https://example.com/ota.zip")
	finished.SetSequence(2)
	finished.SetStartedAt(started)
	finished.End(models.OutcomeFinished, started.Add(time.Minute))
	finished.SetFile("output/abc/boot.img")

	running := models.NewSessionRecord("s-2", "vendor", "https://example.com/a|b.zip")
	running.SetSequence(1)
	running.SetStartedAt(started)

	return []*models.SessionRecord{finished, running}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testRecords())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and two rows, got %d", len(rows))
		}
		if strings.Join(rows[0], ",") != "Sequence,ID,Partition,Target,Outcome,File,Started,Ended" {
			t.Errorf("unexpected headers %v", rows[0])
		}
		if rows[1][4] != "finished" || rows[1][5] != "output/abc/boot.img" {
			t.Errorf("unexpected finished row %v", rows[1])
		}
		if rows[1][7] != "2025-03-01T12:01:00Z" {
			t.Errorf("unexpected end time %q", rows[1][7])
		}
		if rows[2][4] != "running" || rows[2][7] != "" {
			t.Errorf("running row should have no end time, got %v", rows[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testRecords())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Dump sessions") {
			t.Error("Markdown missing title")
		}
		if !strings.Contains(output, "**Sessions**: 2") {
			t.Error("Markdown missing session count")
		}
		if !strings.Contains(output, `a\|b.zip`) {
			t.Errorf("pipes in cells should be escaped, got:\n%s", output)
		}
		if !strings.Contains(output, "| 2 | 2025-03-01 12:00:00 | finished | - |") {
			t.Errorf("Markdown missing finished row, got:\n%s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testRecords())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Sessions: 2") {
			t.Error("text missing session count")
		}
		if !strings.Contains(output, "[vendor]") || !strings.Contains(output, "[-]") {
			t.Errorf("text missing partitions, got:\n%s", output)
		}
		if !strings.Contains(output, "file: output/abc/boot.img") {
			t.Error("text missing produced file")
		}
	})

	t.Run("Export", func(t *testing.T) {
		tt := []struct {
			format string
			want   string
		}{
			{format: "", want: "Sessions: 2"},
			{format: FormatText, want: "Sessions: 2"},
			{format: FormatCSV, want: "Sequence,ID"},
			{format: "MD", want: "# Dump sessions"},
		}

		for _, tc := range tt {
			t.Run(tc.format, func(t *testing.T) {
				data, err := Export(tc.format, testRecords())
				if err != nil {
					t.Fatalf("Export(%q) failed: %v", tc.format, err)
				}
				if !strings.Contains(string(data), tc.want) {
					t.Errorf("Export(%q) missing %q", tc.format, tc.want)
				}
			})
		}

		if _, err := Export("xml", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
