package shared

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// WriteError maps an error to its HTTP representation.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, HTTPStatus(err), map[string]string{"error": UserSafeMessage(err)})
}

// HTTPStatus maps error kinds to status codes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindConsistency:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON parses a request body into dst with unknown fields rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &Error{Kind: KindValidation, Rule: "invalid request body", Err: err}
	}
	return nil
}
