package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/zipforce/internal/model"
)

// RunRow flattens a run into table cells.
func RunRow(r model.Run) []string {
	source := r.Alphabet
	if r.Mode == model.ModeDictionary {
		source = r.DictionaryPath
	}
	return []string{
		r.StartedAt.Local().Format("2006-01-02 15:04"),
		r.ArchivePath,
		string(r.Mode),
		source,
		string(r.Status),
		r.Password,
		FormatAttempts(r.Attempts),
		fmt.Sprintf("%.1fs", float64(r.DurationMs)/1000),
	}
}

// RunHeaders are the column titles matching RunRow.
var RunHeaders = []string{"Started", "Archive", "Mode", "Source", "Status", "Password", "Tries", "Time"}

// RenderRuns prints runs as an aligned text table.
func RenderRuns(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, RunRow(r))
	}
	rightAlign := map[int]bool{6: true, 7: true}
	for _, line := range formatTable(RunHeaders, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - runewidth.StringWidth(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}
