package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mwhitmore/budget-agent/internal/domain/balance"
)

func (h *Handlers) handleListBalances(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	snaps, err := h.Balance.Snapshots(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snaps)
}

type recordBalanceRequest struct {
	Name        string `json:"name"`
	AmountMinor int64  `json:"amount_minor"`
}

func (h *Handlers) handleRecordBalance(w http.ResponseWriter, r *http.Request) {
	var req recordBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		req.Name = "current"
	}

	snap, err := h.Balance.RecordBalance(r.Context(), req.Name, req.AmountMinor)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, snap)
}

func (h *Handlers) handleListOverdrafts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	snaps, err := h.Balance.Overdrafts(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snaps)
}

type recordOverdraftRequest struct {
	AmountMinor int64 `json:"amount_minor"`
}

func (h *Handlers) handleRecordOverdraft(w http.ResponseWriter, r *http.Request) {
	var req recordOverdraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	snap, err := h.Balance.RecordOverdraft(r.Context(), req.AmountMinor)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, snap)
}

type latestSnapshotsResponse struct {
	Balance   *balance.Snapshot          `json:"balance"`
	Overdraft *balance.OverdraftSnapshot `json:"overdraft"`
}

func (h *Handlers) handleLatestSnapshots(w http.ResponseWriter, r *http.Request) {
	bal, od, err := h.Balance.Latest(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, latestSnapshotsResponse{Balance: bal, Overdraft: od})
}
