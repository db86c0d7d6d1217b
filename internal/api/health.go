package api

import "net/http"

type healthResponse struct {
	Status           string `json:"status"`
	SummariesEnabled bool   `json:"summaries_enabled"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, healthResponse{
		Status:           "ok",
		SummariesEnabled: h.Summary.Available(),
	})
}
