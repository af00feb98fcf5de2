package handler

import "net/http"

func (h *Handlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	sessions, err := h.Devices.List(r.Context(), actor.ID)
	if err != nil {
		h.log.InternalError("devices.list: failed", err, "user_id", actor.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"devices": sessions})
}
