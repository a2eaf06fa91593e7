package www

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"partsdesk/inventory"
)

func partIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) apiListParts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	parts, total := h.inv.PartsPage(page, pageSize)
	respondJSON(w, http.StatusOK, map[string]any{
		"parts": parts,
		"total": total,
		"page":  page,
	})
}

func (h *Handlers) apiCreatePart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VIN         string                    `json:"vin_number"`
		ClientPhone string                    `json:"client_phone"`
		Suppliers   []inventory.SupplierInput `json:"suppliers"`
		inventory.PartInput
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.inv.AddPart(req.VIN, req.ClientPhone, req.PartInput, req.Suppliers, sessionFrom(r.Context()).Username)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) apiPartDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	p := h.inv.PartDetails(id)
	if p == nil {
		respondError(w, http.StatusNotFound, "part not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"part":      p,
		"suppliers": h.inv.SuppliersForPart(id),
	})
}

func (h *Handlers) apiUpdatePart(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Suppliers []inventory.SupplierInput `json:"suppliers"`
		inventory.PartInput
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.inv.UpdatePart(id, req.PartInput, req.Suppliers, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// apiDeletePart snapshots the part for undo, then deletes it.
func (h *Handlers) apiDeletePart(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	info := sessionFrom(r.Context())

	snap, snapErr := h.inv.SnapshotPart(id)

	deleted, err := h.inv.DeletePart(id, info.Username)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if deleted > 0 && snapErr == nil {
		h.setUndo(info.ID, snap)
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handlers) apiMovePart(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		VIN string `json:"vin_number"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.inv.MovePart(id, req.VIN, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handlers) apiCreateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	var req inventory.SupplierInput
	if !decodeJSON(w, r, &req) {
		return
	}
	supplierID, err := h.inv.AddSupplier(id, req, sessionFrom(r.Context()).Username)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": supplierID})
}

func (h *Handlers) apiUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	var req inventory.SupplierInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.inv.UpdateSupplier(id, req, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handlers) apiDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := partIDParam(w, r)
	if !ok {
		return
	}
	if err := h.inv.DeleteSupplier(id, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"id": id})
}
