package statements

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads a statement XLSX export. The first sheet is used, its
// first row treated as headers matching the CSV column names. Header
// matching is case-insensitive; unknown columns are ignored.
func ParseExcel(reader io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	result := &ParseResult{}
	if len(rows) < 2 {
		return result, nil
	}

	colIdx := mapHeaders(rows[0])
	for i, cells := range rows[1:] {
		result.TotalRows++
		rowNum := i + 2
		appendRow(result, rowFromCells(cells, colIdx), rowNum)
	}
	return result, nil
}

func mapHeaders(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func rowFromCells(cells []string, colIdx map[string]int) statementRow {
	cell := func(name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return cells[i]
	}
	return statementRow{
		Number:      cell("number"),
		Date:        cell("date"),
		Account:     cell("account"),
		Amount:      cell("amount"),
		Subcategory: cell("subcategory"),
		Memo:        cell("memo"),
	}
}
