// Package statements parses bank statement exports (CSV and XLSX) into raw
// transactions and runs the ingestion pipeline that stores them.
package statements

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

// statementRow is one row of a statement export, unmarshaled by header name.
type statementRow struct {
	Number      string `csv:"Number"`
	Date        string `csv:"Date"`
	Account     string `csv:"Account"`
	Amount      string `csv:"Amount"`
	Subcategory string `csv:"Subcategory"`
	Memo        string `csv:"Memo"`
}

// ParseError describes a row that could not be parsed.
type ParseError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ParseResult holds the parsed transactions plus per-row accounting. Rows
// that fail to parse are reported, not fatal: one bad row never sinks the
// upload.
type ParseResult struct {
	Transactions []ledger.RawTransaction `json:"-"`
	Errors       []ParseError            `json:"errors,omitempty"`
	TotalRows    int                     `json:"total_rows"`
	ParsedRows   int                     `json:"parsed_rows"`
	SkippedRows  int                     `json:"skipped_rows"`
}

// ParseCSV reads a statement CSV export. Expected headers are Number, Date,
// Account, Amount, Subcategory and Memo; dates are DD/MM/YYYY. Rows missing
// a date or amount are skipped silently, matching how exports pad trailing
// blank lines.
func ParseCSV(reader io.Reader) (*ParseResult, error) {
	var rows []statementRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	result := &ParseResult{TotalRows: len(rows)}
	for i, row := range rows {
		rowNum := i + 2 // 1-indexed plus header
		appendRow(result, row, rowNum)
	}
	return result, nil
}

func appendRow(result *ParseResult, row statementRow, rowNum int) {
	if strings.TrimSpace(row.Date) == "" || strings.TrimSpace(row.Amount) == "" {
		result.SkippedRows++
		return
	}

	tx, err := parseRow(row)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{Row: rowNum, Message: err.Error()})
		return
	}
	result.Transactions = append(result.Transactions, tx)
	result.ParsedRows++
}

func parseRow(row statementRow) (ledger.RawTransaction, error) {
	date, err := parseDate(strings.TrimSpace(row.Date))
	if err != nil {
		return ledger.RawTransaction{}, err
	}
	amountMinor, err := parseAmountMinor(strings.TrimSpace(row.Amount))
	if err != nil {
		return ledger.RawTransaction{}, err
	}

	tx := ledger.RawTransaction{
		Date:        date,
		Account:     strings.TrimSpace(row.Account),
		AmountMinor: amountMinor,
		Subcategory: strings.TrimSpace(row.Subcategory),
		Memo:        strings.TrimSpace(row.Memo),
	}
	if number := strings.TrimSpace(row.Number); number != "" {
		tx.TransactionNumber = &number
	}
	return tx, nil
}

var dateLayouts = []string{"02/01/2006", "02/01/06", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmountMinor converts a statement amount string to pence. The sign is
// discarded: magnitude is stored and the classified kind decides direction.
func parseAmountMinor(s string) (int64, error) {
	cleaned := strings.NewReplacer(",", "", "£", "").Replace(s)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", s)
	}
	return d.Abs().Shift(2).Round(0).IntPart(), nil
}
