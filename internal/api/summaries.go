package api

import (
	"errors"
	"net/http"

	"github.com/mwhitmore/budget-agent/internal/domain/summary"
)

func (h *Handlers) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	kind := summary.Kind(r.PathValue("kind"))
	switch kind {
	case summary.KindSpending, summary.KindPurchases, summary.KindIncome, summary.KindComprehensive:
	default:
		WriteError(w, http.StatusNotFound, "unknown summary kind")
		return
	}

	result, err := h.Summary.Generate(r.Context(), kind)
	if errors.Is(err, summary.ErrUnavailable) {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
