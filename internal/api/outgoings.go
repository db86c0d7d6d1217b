package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mwhitmore/budget-agent/internal/domain/schedule"
)

func (h *Handlers) handleListOutgoings(w http.ResponseWriter, r *http.Request) {
	outgoings, err := h.Schedule.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, outgoings)
}

func (h *Handlers) handleCreateOutgoing(w http.ResponseWriter, r *http.Request) {
	var req schedule.NewOutgoing
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stored, err := h.Schedule.Create(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, stored)
}

func (h *Handlers) handleGetOutgoing(w http.ResponseWriter, r *http.Request) {
	id, ok := outgoingID(w, r)
	if !ok {
		return
	}
	stored, err := h.Schedule.Get(r.Context(), id)
	if errors.Is(err, schedule.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "scheduled outgoing not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, stored)
}

func (h *Handlers) handleUpdateOutgoing(w http.ResponseWriter, r *http.Request) {
	id, ok := outgoingID(w, r)
	if !ok {
		return
	}

	var req schedule.Update
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.Schedule.Edit(r.Context(), id, req)
	if errors.Is(err, schedule.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "scheduled outgoing not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *Handlers) handleDeleteOutgoing(w http.ResponseWriter, r *http.Request) {
	id, ok := outgoingID(w, r)
	if !ok {
		return
	}
	err := h.Schedule.Remove(r.Context(), id)
	if errors.Is(err, schedule.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "scheduled outgoing not found")
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) handleDeduplicateOutgoings(w http.ResponseWriter, r *http.Request) {
	res, err := h.Schedule.Deduplicate(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// handleImportOutgoing turns a classified outgoing transaction into a
// scheduled outgoing. Imports of near-duplicates answer 200 with the
// existing collection untouched and no entry in the body.
func (h *Handlers) handleImportOutgoing(w http.ResponseWriter, r *http.Request) {
	txID, err := strconv.ParseInt(r.PathValue("txID"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	_, outgoings, _, err := h.Ledger.Categorized(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	idx := -1
	for i, tx := range outgoings {
		if tx.ID == txID {
			idx = i
			break
		}
	}
	if idx == -1 {
		WriteError(w, http.StatusNotFound, "no outgoing transaction with that id")
		return
	}

	stored, err := h.Schedule.ImportFromTransaction(r.Context(), outgoings[idx])
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stored == nil {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "skipped, similar entry exists"})
		return
	}
	WriteJSON(w, http.StatusCreated, stored)
}

func outgoingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid outgoing id")
		return 0, false
	}
	return id, true
}
