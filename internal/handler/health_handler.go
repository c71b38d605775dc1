package handler

import "net/http"

type okResponse struct {
	OK bool `json:"ok"`
}

// Health handles GET /api/health requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
