package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

func (h *Handlers) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if month := q.Get("month"); month != "" {
		ref, err := time.Parse("2006-01", month)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		txs, err := h.Ledger.ListRawByMonth(r.Context(), ref.Year(), ref.Month())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, txs)
		return
	}

	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		start, err1 := time.Parse("2006-01-02", from)
		end, err2 := time.Parse("2006-01-02", to)
		if err1 != nil || err2 != nil {
			WriteError(w, http.StatusBadRequest, "from and to must both be YYYY-MM-DD")
			return
		}
		txs, err := h.Ledger.ListRawByDateRange(r.Context(), start, end)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, txs)
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	txs, err := h.Ledger.ListRaw(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, txs)
}

func (h *Handlers) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.Ledger.AvailableMonths(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, months)
}

type overrideRequest struct {
	// A null or empty override clears the correction.
	OverrideSubcategory *string `json:"override_subcategory"`
}

type overrideResponse struct {
	Transaction *ledger.RawTransaction        `json:"transaction"`
	Categorized ledger.CategorizedTransaction `json:"categorized"`
}

func (h *Handlers) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, categorized, err := h.Ledger.SetOverride(r.Context(), id, req.OverrideSubcategory)
	if errors.Is(err, pgx.ErrNoRows) {
		WriteError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, overrideResponse{Transaction: updated, Categorized: categorized})
}

func (h *Handlers) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.ClearAll(r.Context()); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}
