package www

import (
	"net/http"
)

func (h *Handlers) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	role, ok := h.users.Authenticate(req.Username, req.Password)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	info := h.sessions.login(w, r, req.Username, role)
	respondJSON(w, http.StatusOK, map[string]string{
		"username": info.Username,
		"role":     info.Role,
	})
}

func (h *Handlers) apiLogout(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())
	h.users.Logout(info.Username)
	h.dropUndo(info.ID)
	h.sessions.clear(w, r)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) apiSession(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{
		"username": info.Username,
		"role":     info.Role,
	})
}
