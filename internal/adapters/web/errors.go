package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/arikb/bloxs/internal/app"
	"github.com/arikb/bloxs/internal/bloxs"
	"github.com/arikb/bloxs/internal/mailin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	Result    any    `json:"result,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResult(w, r, message, code, status, nil)
}

// writeErrorResult is writeError carrying the partial outcome of an operation that
// stopped midway.
func writeErrorResult(w http.ResponseWriter, r *http.Request, message, code string, status int, result any) {
	writeJSONStatus(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
		Result:    result,
	})
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonEncode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeServiceError maps an ApplicationService error to an HTTP response. Upstream
// failures are logged in full but only summarized to the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.writeServiceErrorResult(w, r, err, nil)
}

// writeServiceErrorResult is writeServiceError for operations that return what they
// completed before failing. A nil result is left out of the body.
func (h *Handler) writeServiceErrorResult(w http.ResponseWriter, r *http.Request, err error, result any) {
	switch {
	case errors.Is(err, app.ErrInvalidRequest):
		writeErrorResult(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest, result)
		return
	case errors.Is(err, mailin.ErrNoPDF):
		writeErrorResult(w, r, err.Error(), "NO_PDF", http.StatusUnprocessableEntity, result)
		return
	}

	h.log.Error("request failed", zap.String("request_id", requestIDFromContext(r.Context())), zap.Error(err))
	if kind, ok := bloxs.KindOf(err); ok {
		if kind == bloxs.KindAuth {
			writeErrorResult(w, r, "accounting service rejected the credentials", "UPSTREAM_AUTH", http.StatusBadGateway, result)
			return
		}
		writeErrorResult(w, r, "accounting service "+kind.String()+" failed", "UPSTREAM_ERROR", http.StatusBadGateway, result)
		return
	}
	writeErrorResult(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError, result)
}
