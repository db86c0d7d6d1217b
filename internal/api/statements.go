package api

import (
	"net/http"

	"github.com/mwhitmore/budget-agent/internal/domain/statements"
)

// maxUploadBytes caps statement uploads at 20 MiB; a year of statements is
// well under a megabyte.
const maxUploadBytes = 20 << 20

// handleUploadStatement ingests one or more statement files sent as
// multipart "file" parts and answers with a per-file report.
func (h *Handlers) handleUploadStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}

	reports := make([]*statements.Report, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "unreadable file part")
			return
		}
		report, err := h.Statements.Upload(r.Context(), header.Filename, file)
		file.Close()
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		reports = append(reports, report)
	}

	if len(reports) == 1 {
		WriteJSON(w, http.StatusCreated, reports[0])
		return
	}
	WriteJSON(w, http.StatusCreated, reports)
}
