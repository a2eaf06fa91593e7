package www

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"partsdesk/export"
)

func (h *Handlers) apiListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers()
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handlers) apiCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.users.CreateUser(req.Username, req.Password, req.Role, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (h *Handlers) apiUpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	username := chi.URLParam(r, "username")
	if err := h.users.UpdatePassword(username, req.Password, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"username": username})
}

func (h *Handlers) apiUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	username := chi.URLParam(r, "username")
	if err := h.users.UpdateRole(username, req.Role, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"username": username, "role": req.Role})
}

func (h *Handlers) apiSetUserActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	username := chi.URLParam(r, "username")
	if err := h.users.SetActive(username, req.Active, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"username": username, "active": req.Active})
}

func (h *Handlers) apiActivityLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries := h.inv.ActivityLogs(r.URL.Query().Get("username"), limit)
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// apiExport streams a filtered extract as a CSV zip or an XLSX
// workbook.
func (h *Handlers) apiExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Format string `json:"format"`
		export.Options
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	data, mime, err := export.Filtered(h.inv.DB(), req.Options, req.Format)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	ext := "zip"
	if req.Format == export.FormatExcel {
		ext = "xlsx"
	}
	name := fmt.Sprintf("export_%s.%s", time.Now().Format("20060102_150405"), ext)

	h.inv.DB().LogActivity(sessionFrom(r.Context()).Username, "export_data",
		fmt.Sprintf("Exported data as %s", name), nil, nil, nil, nil)

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Write(data)
}

func (h *Handlers) apiListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := export.ListBackups(h.cfg.BackupDir)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"backups": backups})
}

func (h *Handlers) apiBackup(w http.ResponseWriter, r *http.Request) {
	name, err := export.Backup(h.cfg.DatabasePath, h.cfg.BackupDir)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.inv.DB().LogActivity(sessionFrom(r.Context()).Username, "backup",
		fmt.Sprintf("Created backup %s", name), nil, nil, nil, nil)
	respondJSON(w, http.StatusCreated, map[string]string{"backup": name})
}

// apiMaintenance triggers VACUUM/ANALYZE/integrity_check, at most once
// per day.
func (h *Handlers) apiMaintenance(w http.ResponseWriter, r *http.Request) {
	ran, clean, err := h.maint.Run()
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if ran {
		h.inv.DB().LogActivity(sessionFrom(r.Context()).Username, "maintenance",
			fmt.Sprintf("Ran database maintenance (integrity ok: %t)", clean), nil, nil, nil, nil)
	}
	respondJSON(w, http.StatusOK, map[string]any{"ran": ran, "integrity_ok": clean})
}
