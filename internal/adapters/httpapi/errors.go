package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"

	"github.com/triphive/triphive-api/internal/app/estimates"
	"github.com/triphive/triphive-api/internal/app/joincode"
	"github.com/triphive/triphive-api/internal/app/preferences"
	"github.com/triphive/triphive-api/internal/app/trips"
	"github.com/triphive/triphive-api/internal/app/voting"
)

// ErrorResponse is the uniform error envelope returned by every endpoint.
type ErrorResponse struct {
	Error struct {
		Code      string                            `json:"code"`
		Message   string                            `json:"message"`
		Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
		RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestId = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeServiceError maps an application-layer error to the HTTP envelope.
// Unrecognized errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if status, code, message, details, ok := appError(err); ok {
		writeError(w, r, status, code, message, details)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "UNEXPECTED", "internal error", nil)
}

func appError(err error) (status int, code, message string, details map[string]any, ok bool) {
	var (
		te *trips.Error
		je *joincode.Error
		pe *preferences.Error
		ve *voting.Error
		ee *estimates.Error
	)
	switch {
	case errors.As(err, &te):
		return te.Status, te.Code, te.Message, te.Details, true
	case errors.As(err, &je):
		return je.Status, je.Code, je.Message, je.Details, true
	case errors.As(err, &pe):
		return pe.Status, pe.Code, pe.Message, pe.Details, true
	case errors.As(err, &ve):
		return ve.Status, ve.Code, ve.Message, ve.Details, true
	case errors.As(err, &ee):
		return ee.Status, ee.Code, ee.Message, ee.Details, true
	}
	return 0, "", "", nil, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON rejects bodies that are missing, malformed, or oversized.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return false
	}
	return true
}
