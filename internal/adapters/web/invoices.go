package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/arikb/bloxs/internal/app"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	maxUploadSize = 20 << 20 // 20 MB
	maxMailSize   = 25 << 20
)

var allowedDraftTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// apiCreateDraft handles POST /api/invoices/drafts with a multipart "file" field.
func (h *Handler) apiCreateDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, "request too large or malformed", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "no file provided", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		writeError(w, r, "failed to read uploaded file", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	if mtype := mimetype.Detect(data); !mimetype.EqualsAny(mtype.String(), allowedDraftTypes...) {
		writeError(w, r, fmt.Sprintf("file type %q not allowed; accepted: pdf, jpeg, png", mtype.String()),
			"UNSUPPORTED_TYPE", http.StatusUnsupportedMediaType)
		return
	}

	result, err := h.svc.CreateDraftInvoice(r.Context(), app.DraftRequest{FileName: fh.Filename, Content: data})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.log.Info("draft invoice created",
		zap.String("subject", subjectFromContext(r.Context())),
		zap.String("file", result.FileName),
		zap.String("concept_id", result.ConceptID))
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiCreateDraftFromMail handles POST /api/invoices/drafts/mail with a raw RFC 5322
// message as the body.
func (h *Handler) apiCreateDraftFromMail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMailSize)
	result, err := h.svc.CreateDraftInvoiceFromMail(r.Context(), r.Body)
	if err != nil {
		if result != nil {
			h.writeServiceErrorResult(w, r, err, result)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiRunSettlements handles POST /api/settlements.
func (h *Handler) apiRunSettlements(w http.ResponseWriter, r *http.Request) {
	var req app.SettlementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.RunSettlements(r.Context(), req)
	if err != nil {
		if result != nil {
			h.writeServiceErrorResult(w, r, err, result)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	h.log.Info("settlement batch finished",
		zap.String("subject", subjectFromContext(r.Context())),
		zap.String("period", result.Period),
		zap.Int("created", result.Created),
		zap.Int("failed", result.Failed))
	writeJSON(w, result)
}

// apiSettlementHistory handles GET /api/settlements?limit=N.
func (h *Handler) apiSettlementHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, r, "limit must be between 1 and 1000", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	result, err := h.svc.RecentSettlements(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	type entry struct {
		RunID     string `json:"run_id"`
		Owner     string `json:"owner"`
		Address   string `json:"address"`
		Period    string `json:"period"`
		Amount    string `json:"amount"`
		InvoiceID string `json:"invoice_id,omitempty"`
		Error     string `json:"error,omitempty"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]entry, 0, len(result.Entries))
	for _, e := range result.Entries {
		out = append(out, entry{
			RunID:     e.RunID.String(),
			Owner:     e.Owner,
			Address:   e.Address,
			Period:    e.Period.Format("2006-01"),
			Amount:    e.Amount.String(),
			InvoiceID: e.InvoiceID,
			Error:     e.Error,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, map[string]any{"entries": out})
}

// apiSettlementSchema handles GET /api/schema/settlements.
func (h *Handler) apiSettlementSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	_ = jsonEncode(w, h.svc.SettlementSchema())
}
