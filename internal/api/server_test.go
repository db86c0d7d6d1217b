package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitmore/budget-agent/internal/domain/balance"
	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/internal/domain/projection"
	"github.com/mwhitmore/budget-agent/internal/domain/schedule"
	"github.com/mwhitmore/budget-agent/internal/domain/statements"
	"github.com/mwhitmore/budget-agent/internal/domain/summary"
	"github.com/mwhitmore/budget-agent/pkg/config"
	"github.com/mwhitmore/budget-agent/pkg/metrics"
)

type memLedgerRepo struct {
	txs    []ledger.RawTransaction
	nextID int64
}

func (m *memLedgerRepo) BulkInsert(_ context.Context, txs []ledger.RawTransaction) (int, error) {
	for _, tx := range txs {
		m.nextID++
		tx.ID = m.nextID
		m.txs = append(m.txs, tx)
	}
	return len(txs), nil
}

func (m *memLedgerRepo) ListAll(context.Context, int) ([]ledger.RawTransaction, error) {
	return m.txs, nil
}

func (m *memLedgerRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]ledger.RawTransaction, error) {
	var out []ledger.RawTransaction
	for _, tx := range m.txs {
		if !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *memLedgerRepo) ListByMonth(_ context.Context, year int, month time.Month) ([]ledger.RawTransaction, error) {
	var out []ledger.RawTransaction
	for _, tx := range m.txs {
		if tx.Date.Year() == year && tx.Date.Month() == month {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *memLedgerRepo) AvailableMonths(context.Context) ([]ledger.MonthRef, error) {
	seen := map[ledger.MonthRef]bool{}
	var months []ledger.MonthRef
	for _, tx := range m.txs {
		ref := ledger.MonthRef{Year: tx.Date.Year(), Month: int(tx.Date.Month())}
		if !seen[ref] {
			seen[ref] = true
			months = append(months, ref)
		}
	}
	return months, nil
}

func (m *memLedgerRepo) UpdateOverride(_ context.Context, id int64, override *string) (*ledger.RawTransaction, error) {
	for i := range m.txs {
		if m.txs[i].ID == id {
			m.txs[i].OverrideSubcategory = override
			return &m.txs[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memLedgerRepo) ClearAll(context.Context) error {
	m.txs = nil
	return nil
}

type memScheduleRepo struct {
	outgoings []schedule.ScheduledOutgoing
	nextID    int64
}

func (m *memScheduleRepo) Insert(_ context.Context, o schedule.NewOutgoing) (*schedule.ScheduledOutgoing, error) {
	m.nextID++
	stored := schedule.ScheduledOutgoing{
		ID:          m.nextID,
		DayOfMonth:  o.DayOfMonth,
		AmountMinor: o.AmountMinor,
		Merchant:    o.Merchant,
		Memo:        o.Memo,
		Subcategory: o.Subcategory,
		Account:     o.Account,
	}
	m.outgoings = append(m.outgoings, stored)
	return &stored, nil
}

func (m *memScheduleRepo) List(context.Context) ([]schedule.ScheduledOutgoing, error) {
	return m.outgoings, nil
}

func (m *memScheduleRepo) Get(_ context.Context, id int64) (*schedule.ScheduledOutgoing, error) {
	for i := range m.outgoings {
		if m.outgoings[i].ID == id {
			return &m.outgoings[i], nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (m *memScheduleRepo) Update(_ context.Context, id int64, _ schedule.Update) (*schedule.ScheduledOutgoing, error) {
	return m.Get(context.Background(), id)
}

func (m *memScheduleRepo) Delete(_ context.Context, id int64) error {
	for i := range m.outgoings {
		if m.outgoings[i].ID == id {
			m.outgoings = append(m.outgoings[:i], m.outgoings[i+1:]...)
			return nil
		}
	}
	return schedule.ErrNotFound
}

func (m *memScheduleRepo) DeleteBatch(_ context.Context, ids []int64) error {
	for _, id := range ids {
		if err := m.Delete(context.Background(), id); err != nil {
			return err
		}
	}
	return nil
}

type memBalanceRepo struct {
	balances []balance.Snapshot
	nextID   int64
}

func (m *memBalanceRepo) InsertBalance(_ context.Context, name string, amountMinor int64, recordedAt time.Time) (*balance.Snapshot, error) {
	m.nextID++
	s := balance.Snapshot{ID: m.nextID, Name: name, AmountMinor: amountMinor, RecordedAt: recordedAt}
	m.balances = append(m.balances, s)
	return &s, nil
}

func (m *memBalanceRepo) LatestBalance(context.Context) (*balance.Snapshot, error) {
	if len(m.balances) == 0 {
		return nil, balance.ErrNoSnapshot
	}
	return &m.balances[len(m.balances)-1], nil
}

func (m *memBalanceRepo) LatestUserBalance(context.Context) (*balance.Snapshot, error) {
	for i := len(m.balances) - 1; i >= 0; i-- {
		if m.balances[i].Name != balance.ReconstructedSnapshotName {
			return &m.balances[i], nil
		}
	}
	return nil, balance.ErrNoSnapshot
}

func (m *memBalanceRepo) ListBalances(context.Context, int) ([]balance.Snapshot, error) {
	return m.balances, nil
}

func (m *memBalanceRepo) InsertOverdraft(context.Context, int64, time.Time) (*balance.OverdraftSnapshot, error) {
	return &balance.OverdraftSnapshot{ID: 1}, nil
}

func (m *memBalanceRepo) LatestOverdraft(context.Context) (*balance.OverdraftSnapshot, error) {
	return nil, balance.ErrNoSnapshot
}

func (m *memBalanceRepo) ListOverdrafts(context.Context, int) ([]balance.OverdraftSnapshot, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memLedgerRepo) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	m := metrics.New()

	ledgerRepo := &memLedgerRepo{}
	ledgerSvc := ledger.NewService(ledgerRepo, logger)
	balanceSvc := balance.NewService(&memBalanceRepo{}, ledgerSvc, logger)
	projectionSvc := projection.NewService(ledgerSvc, logger)
	scheduleSvc := schedule.NewService(&memScheduleRepo{}, m, logger)
	statementsSvc := statements.NewService(ledgerRepo, ledgerSvc.Classifier(), m, logger)
	summarySvc, err := summary.NewService(context.Background(), config.GeminiConfig{}, ledgerSvc, logger)
	require.NoError(t, err)

	srv := NewServer(config.ServerConfig{
		Host:               "127.0.0.1",
		Port:               0,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}, &Handlers{
		Ledger:     ledgerSvc,
		Statements: statementsSvc,
		Balance:    balanceSvc,
		Projection: projectionSvc,
		Schedule:   scheduleSvc,
		Summary:    summarySvc,
		Metrics:    m,
		Logger:     logger,
	})

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, ledgerRepo
}

func seed(t *testing.T, repo *memLedgerRepo) {
	t.Helper()
	_, err := repo.BulkInsert(context.Background(), []ledger.RawTransaction{
		{Date: time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), AmountMinor: 250000, Subcategory: "Counter Credit", Memo: "EMPLOYER LTD"},
		{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), AmountMinor: 4500, Subcategory: "Direct Debit", Memo: "BRITISH GAS"},
		{Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), AmountMinor: 1250, Subcategory: "Card Purchase", Memo: "TESCO STORES"},
	})
	require.NoError(t, err)
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	var body healthResponse
	resp := getJSON(t, ts, "/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.SummariesEnabled)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListTransactionsAndMonths(t *testing.T) {
	ts, repo := newTestServer(t)
	seed(t, repo)

	var txs []ledger.RawTransaction
	resp := getJSON(t, ts, "/v1/transactions", &txs)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, txs, 3)

	var months []ledger.MonthRef
	getJSON(t, ts, "/v1/transactions/months", &months)
	require.Len(t, months, 1)
	assert.Equal(t, 2025, months[0].Year)

	resp = getJSON(t, ts, "/v1/transactions?month=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecurringEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)
	seed(t, repo)

	var body recurringResponse
	resp := getJSON(t, ts, "/v1/analysis/recurring", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Outgoings, 1)
	assert.Equal(t, 5, body.Outgoings[0].DayOfMonth)
}

func TestProjectionEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)
	seed(t, repo)

	var body projection.Forecast
	resp := getJSON(t, ts, "/v1/analysis/projection", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(250000), body.MonthlyIncomeMinor)
	require.NotNil(t, body.NextIncomeDate)
	assert.Equal(t, 25, body.NextIncomeDate.Day())
}

func TestBalanceSeriesEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)
	seed(t, repo)

	var body struct {
		Points []balance.Point `json:"points"`
	}
	resp := getJSON(t, ts, "/v1/analysis/balance-series", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Points, 3)
	assert.Equal(t, int64(-4500), body.Points[0].BalanceMinor)
	assert.Equal(t, int64(244250), body.Points[2].BalanceMinor)

	resp = getJSON(t, ts, "/v1/analysis/balance-series?starting=100000", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Points, 3)
	assert.Equal(t, int64(95500), body.Points[0].BalanceMinor)
	assert.Equal(t, int64(344250), body.Points[2].BalanceMinor)
}

func TestOutgoingsCRUDAndDedup(t *testing.T) {
	ts, _ := newTestServer(t)

	create := func(body string) *http.Response {
		resp, err := http.Post(ts.URL+"/v1/outgoings", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, http.StatusCreated, create(`{"day_of_month":5,"amount_minor":899,"merchant":"Netflix","memo":"sub"}`).StatusCode)
	assert.Equal(t, http.StatusCreated, create(`{"day_of_month":6,"amount_minor":1099,"merchant":"NETFLIX","memo":"Sub"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, create(`{"day_of_month":40,"amount_minor":1}`).StatusCode)

	resp, err := http.Post(ts.URL+"/v1/outgoings/deduplicate", "application/json", nil)
	require.NoError(t, err)
	var res schedule.Resolution
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, int64(1), res.Removed[0].ID)
	assert.Equal(t, 1, res.Count)

	var remaining []schedule.ScheduledOutgoing
	getJSON(t, ts, "/v1/outgoings", &remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].ID)
}

func TestSetOverrideEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)
	seed(t, repo)

	patch := func(path, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPatch, ts.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Purchase becomes an outgoing via override.
	resp := patch("/v1/transactions/3/override", `{"override_subcategory":"Direct Debit"}`)
	var body overrideResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ledger.KindOutgoing, body.Categorized.Kind)

	resp = patch("/v1/transactions/99/override", `{"override_subcategory":"Direct Debit"}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSummaryEndpointUnavailableWithoutKey(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/summaries/spending")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/v1/summaries/bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartFile(t *testing.T, filename, contents string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadStatementEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)

	body, contentType := multipartFile(t, "march.csv",
		"Number,Date,Account,Amount,Subcategory,Memo\n,05/03/2025,Current Account,-45.00,Direct Debit,BRITISH GAS\n")

	resp, err := http.Post(ts.URL+"/v1/statements", contentType, body)
	require.NoError(t, err)
	var report statements.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.OutgoingCount)
	assert.Len(t, repo.txs, 1)
}
