package www

import (
	"net/http"

	"partsdesk/inventory"
)

func (h *Handlers) setUndo(sid string, d *inventory.Deletion) {
	if sid == "" {
		return
	}
	h.undoMu.Lock()
	h.undo[sid] = d
	h.undoMu.Unlock()
}

func (h *Handlers) takeUndo(sid string) *inventory.Deletion {
	h.undoMu.Lock()
	defer h.undoMu.Unlock()
	d := h.undo[sid]
	delete(h.undo, sid)
	return d
}

func (h *Handlers) dropUndo(sid string) {
	h.undoMu.Lock()
	delete(h.undo, sid)
	h.undoMu.Unlock()
}

func (h *Handlers) apiUndoStatus(w http.ResponseWriter, r *http.Request) {
	h.undoMu.Lock()
	d := h.undo[sessionFrom(r.Context()).ID]
	h.undoMu.Unlock()

	if d == nil {
		respondJSON(w, http.StatusOK, map[string]any{"available": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"available": true,
		"kind":      d.Kind,
		"label":     d.Label(),
	})
}

// apiUndo replays the session's buffered deletion. The buffer holds one
// slot: a second undo with nothing buffered is a 400, and a failed
// restore does not put the snapshot back.
func (h *Handlers) apiUndo(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r.Context())
	d := h.takeUndo(info.ID)
	if d == nil {
		respondError(w, http.StatusBadRequest, "nothing to undo")
		return
	}
	if err := h.inv.Restore(d, info.Username); err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"restored": d.Kind})
}
