package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/config"
)

// ErrUnavailable is returned when no model API key is configured. Summaries
// are an optional feature; the rest of the system works without them.
var ErrUnavailable = errors.New("summary generation is not configured")

// Kind selects which summary to generate.
type Kind string

const (
	KindSpending      Kind = "spending"
	KindPurchases     Kind = "purchases"
	KindIncome        Kind = "income"
	KindComprehensive Kind = "comprehensive"
)

// Ledger is the slice of the ledger service the summary domain needs.
type Ledger interface {
	Categorized(ctx context.Context) (income, outgoings, purchases []ledger.CategorizedTransaction, err error)
	AvailableMonths(ctx context.Context) ([]ledger.MonthRef, error)
}

// Result is a generated summary plus the stats that produced it.
type Result struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Stats Stats  `json:"stats"`
}

// Service generates summaries using the Gemini API. A zero-value client
// (missing API key) leaves the service constructed but unavailable.
type Service struct {
	client *genai.Client
	model  string
	ledger Ledger
	logger *slog.Logger
}

// NewService creates a summary service. When cfg.APIKey is empty the
// service starts in unavailable mode rather than failing.
func NewService(ctx context.Context, cfg config.GeminiConfig, l Ledger, logger *slog.Logger) (*Service, error) {
	s := &Service{model: cfg.Model, ledger: l, logger: logger}
	if cfg.APIKey == "" {
		logger.Warn("no Gemini API key configured, summaries disabled")
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	s.client = client
	return s, nil
}

// Available reports whether summary generation is configured.
func (s *Service) Available() bool {
	return s.client != nil
}

// Generate classifies the stored transactions, builds the prompt for the
// requested kind and asks the model for prose.
func (s *Service) Generate(ctx context.Context, kind Kind) (*Result, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}

	income, outgoings, purchases, err := s.ledger.Categorized(ctx)
	if err != nil {
		return nil, err
	}
	months, err := s.ledger.AvailableMonths(ctx)
	if err != nil {
		return nil, err
	}
	stats := BuildStats(income, outgoings, purchases, len(months))

	var prompt string
	switch kind {
	case KindSpending:
		prompt = SpendingPrompt(outgoings, stats)
	case KindPurchases:
		prompt = PurchasesPrompt(purchases, stats)
	case KindIncome:
		prompt = IncomePrompt(income, stats)
	case KindComprehensive:
		prompt = ComprehensivePrompt(stats)
	default:
		return nil, fmt.Errorf("unknown summary kind %q", kind)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s summary: %w", kind, err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from model for %s summary", kind)
	}

	s.logger.Info("summary generated",
		slog.String("kind", string(kind)),
		slog.Int("months", stats.NumMonths),
	)
	return &Result{Kind: kind, Text: text, Stats: stats}, nil
}
