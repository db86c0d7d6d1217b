package projection

import (
	"context"
	"log/slog"
	"time"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

// Ledger is the slice of the ledger service the projection domain needs.
type Ledger interface {
	Categorized(ctx context.Context) (income, outgoings, purchases []ledger.CategorizedTransaction, err error)
}

// Service produces forecasts from the stored transaction set.
type Service struct {
	ledger Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a projection service.
func NewService(ledger Ledger, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, logger: logger, now: time.Now}
}

// Forecast classifies the stored transactions and projects the next pay
// cycle from them.
func (s *Service) Forecast(ctx context.Context) (Forecast, error) {
	income, outgoings, purchases, err := s.ledger.Categorized(ctx)
	if err != nil {
		return Forecast{}, err
	}

	f := Calculate(income, outgoings, purchases, s.now())
	s.logger.Debug("forecast computed",
		slog.Int64("income_minor", f.MonthlyIncomeMinor),
		slog.Int64("savings_minor", f.SavingsPerMonthMinor),
		slog.Bool("has_anchor", f.NextIncomeDate != nil),
	)
	return f, nil
}
