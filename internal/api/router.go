package api

import "net/http"

// NewRouter creates a new router with all the application routes.
func NewRouter(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/targets", h.CreateTarget)
	mux.HandleFunc("GET /v1/targets", h.ListTargets)
	mux.HandleFunc("GET /v1/targets/{target_id}/sightings", h.ListSightings)
	mux.HandleFunc("POST /v1/normalize", h.Normalize)
	mux.HandleFunc("POST /v1/extract", h.ExtractLinks)
	mux.HandleFunc("GET /healthz", h.Healthz)

	return mux
}
