package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"partsdesk/inventory"
)

func (h *Handlers) apiCreateVIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientPhone string `json:"client_phone"`
		VIN         string `json:"vin_number"`
		inventory.VehicleInput
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.inv.AddVehicle(req.ClientPhone, req.VIN, req.VehicleInput, sessionFrom(r.Context()).Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"vin_number": req.VIN})
}

func (h *Handlers) apiVINDetails(w http.ResponseWriter, r *http.Request) {
	v := h.inv.VehicleDetails(chi.URLParam(r, "vin"))
	if v == nil {
		respondError(w, http.StatusNotFound, "VIN not found")
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *Handlers) apiUpdateVIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VIN string `json:"vin_number"`
		inventory.VehicleInput
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	newVIN, err := h.inv.UpdateVehicle(chi.URLParam(r, "vin"), req.VIN, req.VehicleInput, sessionFrom(r.Context()).Username)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"vin_number": newVIN})
}

// apiDeleteVIN snapshots the vehicle for undo, then deletes it. The
// client_phone query parameter scopes placeholder-VIN deletes; without
// it a placeholder delete refuses and reports zero rows.
func (h *Handlers) apiDeleteVIN(w http.ResponseWriter, r *http.Request) {
	vin := chi.URLParam(r, "vin")
	clientPhone := r.URL.Query().Get("client_phone")
	info := sessionFrom(r.Context())

	snap, snapErr := h.inv.SnapshotVehicle(vin, clientPhone)

	deleted, err := h.inv.DeleteVehicle(vin, clientPhone, info.Username)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if deleted > 0 && snapErr == nil {
		h.setUndo(info.ID, snap)
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handlers) apiListVINParts(w http.ResponseWriter, r *http.Request) {
	parts := h.inv.PartsForVehicle(chi.URLParam(r, "vin"))
	respondJSON(w, http.StatusOK, map[string]any{"parts": parts})
}
