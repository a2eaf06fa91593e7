package www

import (
	"encoding/json"
	"errors"
	"net/http"

	"partsdesk/auth"
	"partsdesk/inventory"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondErr maps service errors onto HTTP statuses: validation and
// user-management failures are the caller's fault, everything else is a
// server fault and gets logged.
func (h *Handlers) respondErr(w http.ResponseWriter, err error) {
	var verr inventory.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}
	var uerr auth.UserError
	if errors.As(err, &uerr) {
		respondError(w, http.StatusBadRequest, uerr.Error())
		return
	}
	h.log.Errorw("request failed", "err", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
