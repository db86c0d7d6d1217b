package statements

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/metrics"
)

// Report summarizes one statement upload.
type Report struct {
	JobID             uuid.UUID    `json:"job_id"`
	Filename          string       `json:"filename"`
	TotalRows         int          `json:"total_rows"`
	ParsedRows        int          `json:"parsed_rows"`
	SkippedRows       int          `json:"skipped_rows"`
	Stored            int          `json:"stored"`
	IncomeCount       int          `json:"income_count"`
	OutgoingCount     int          `json:"outgoing_count"`
	PurchaseCount     int          `json:"purchase_count"`
	UnclassifiedCount int          `json:"unclassified_count"`
	Errors            []ParseError `json:"errors,omitempty"`
}

// Service runs the ingestion pipeline: parse, store, classify, report.
type Service struct {
	repo       ledger.Repository
	classifier *ledger.Classifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService creates a statements service. The classifier is shared with the
// ledger service so upload reports and later reads agree on category counts.
func NewService(repo ledger.Repository, classifier *ledger.Classifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, classifier: classifier, metrics: m, logger: logger}
}

// Upload parses a statement file, stores its transactions and reports what
// was ingested. The format is chosen by file extension: .xlsx uses the Excel
// parser, everything else is treated as CSV.
func (s *Service) Upload(ctx context.Context, filename string, reader io.Reader) (*Report, error) {
	var (
		result *ParseResult
		err    error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		result, err = ParseExcel(reader)
	} else {
		result, err = ParseCSV(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	stored, err := s.repo.BulkInsert(ctx, result.Transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to store transactions: %w", err)
	}

	report := &Report{
		JobID:       uuid.New(),
		Filename:    filename,
		TotalRows:   result.TotalRows,
		ParsedRows:  result.ParsedRows,
		SkippedRows: result.SkippedRows,
		Stored:      stored,
		Errors:      result.Errors,
	}
	for _, tx := range s.classifier.ClassifyAll(result.Transactions) {
		switch tx.Kind {
		case ledger.KindIncome:
			report.IncomeCount++
		case ledger.KindOutgoing:
			report.OutgoingCount++
		case ledger.KindPurchase:
			report.PurchaseCount++
		default:
			report.UnclassifiedCount++
		}
	}

	s.metrics.StatementRowsParsed.Add(float64(result.ParsedRows))
	s.metrics.StatementRowsSkipped.Add(float64(result.SkippedRows + len(result.Errors)))
	s.metrics.TransactionsStored.Add(float64(stored))

	s.logger.Info("statement ingested",
		slog.String("job_id", report.JobID.String()),
		slog.String("filename", filename),
		slog.Int("parsed", result.ParsedRows),
		slog.Int("stored", stored),
		slog.Int("errors", len(result.Errors)),
	)
	return report, nil
}
