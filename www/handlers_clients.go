package www

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) apiListClients(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	clients, total := h.inv.ClientsPage(page, pageSize)
	respondJSON(w, http.StatusOK, map[string]any{
		"clients": clients,
		"total":   total,
		"page":    page,
	})
}

func (h *Handlers) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Name  string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.inv.AddClient(req.Phone, req.Name, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"phone": req.Phone})
}

// apiClientSnapshot returns the client with all vehicles and parts, the
// detail-view payload.
func (h *Handlers) apiClientSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.inv.ClientSnapshotFor(chi.URLParam(r, "phone"))
	if snap == nil {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) apiUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Name  string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	oldPhone := chi.URLParam(r, "phone")
	if err := h.inv.UpdateClient(oldPhone, req.Phone, req.Name, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"phone": req.Phone})
}

func (h *Handlers) apiDeleteClient(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.inv.DeleteClient(chi.URLParam(r, "phone"), sessionFrom(r.Context()).Username)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if deleted == 0 {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handlers) apiListClientVINs(w http.ResponseWriter, r *http.Request) {
	vehicles := h.inv.VehiclesForClient(chi.URLParam(r, "phone"))
	respondJSON(w, http.StatusOK, map[string]any{"vins": vehicles})
}

func (h *Handlers) apiListLooseParts(w http.ResponseWriter, r *http.Request) {
	parts := h.inv.PartsWithoutVIN(chi.URLParam(r, "phone"))
	respondJSON(w, http.StatusOK, map[string]any{"parts": parts})
}

func (h *Handlers) apiSearch(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.inv.Search(r.URL.Query().Get("q")))
}
