package api

import (
	"net/http"
	"strconv"

	"github.com/mwhitmore/budget-agent/internal/domain/balance"
	"github.com/mwhitmore/budget-agent/internal/domain/recurring"
)

type recurringResponse struct {
	Income    []recurring.Group `json:"income"`
	Outgoings []recurring.Group `json:"outgoings"`
	Purchases []recurring.Group `json:"purchases"`
}

func (h *Handlers) handleRecurring(w http.ResponseWriter, r *http.Request) {
	income, outgoings, purchases, err := h.Ledger.Categorized(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, recurringResponse{
		Income:    recurring.Detect(income),
		Outgoings: recurring.Detect(outgoings),
		Purchases: recurring.Detect(purchases),
	})
}

type consistentResponse struct {
	NumMonths int                               `json:"num_months"`
	Threshold int                               `json:"threshold"`
	Income    []recurring.ConsistentTransaction `json:"income"`
	Outgoings []recurring.ConsistentTransaction `json:"outgoings"`
	Purchases []recurring.ConsistentTransaction `json:"purchases"`
}

func (h *Handlers) handleConsistent(w http.ResponseWriter, r *http.Request) {
	months, err := h.Ledger.AvailableMonths(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	income, outgoings, purchases, err := h.Ledger.Categorized(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	numMonths := len(months)
	WriteJSON(w, http.StatusOK, consistentResponse{
		NumMonths: numMonths,
		Threshold: recurring.ConsistencyThreshold(numMonths),
		Income:    recurring.FindConsistent(income, numMonths),
		Outgoings: recurring.FindConsistent(outgoings, numMonths),
		Purchases: recurring.FindConsistent(purchases, numMonths),
	})
}

func (h *Handlers) handleBalanceSeries(w http.ResponseWriter, r *http.Request) {
	var points []balance.Point
	var err error
	if raw := r.URL.Query().Get("starting"); raw != "" {
		starting, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			WriteError(w, http.StatusBadRequest, "starting must be an integer amount in minor units")
			return
		}
		points, err = h.Balance.SeriesFrom(r.Context(), starting)
	} else {
		points, err = h.Balance.Series(r.Context())
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, struct {
		Points []balance.Point `json:"points"`
	}{Points: points})
}

func (h *Handlers) handleProjection(w http.ResponseWriter, r *http.Request) {
	forecast, err := h.Projection.Forecast(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, forecast)
}
