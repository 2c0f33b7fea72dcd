package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
	Reasons []string    `json:"reasons,omitempty"`
}

var statusByCode = map[apperr.Code]int{
	apperr.CodeNotFound:          http.StatusNotFound,
	apperr.CodeForbidden:         http.StatusForbidden,
	apperr.CodeInvalidState:      http.StatusConflict,
	apperr.CodeInvalidTransition: http.StatusConflict,
	apperr.CodeUnavailable:       http.StatusUnprocessableEntity,
	apperr.CodeCrossShopConflict: http.StatusConflict,
	apperr.CodeEmptyCart:         http.StatusUnprocessableEntity,
	apperr.CodeInvalidVoucher:    http.StatusUnprocessableEntity,
	apperr.CodeConflict:          http.StatusConflict,
	apperr.CodeInternal:          http.StatusInternalServerError,
}

// writeError maps the taxonomy onto HTTP. Internal causes are logged here and
// never leak to the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Error: apperr.CodeInternal, Message: "internal error"}
	var e *apperr.Error
	if errors.As(err, &e) {
		body.Error = e.Code
		body.Message = e.Message
		body.Reasons = e.Reasons
	}
	status, ok := statusByCode[body.Error]
	if !ok {
		status = http.StatusInternalServerError
	}
	if body.Error == apperr.CodeInternal {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "BAD_REQUEST", "message": msg})
}
