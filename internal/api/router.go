package api

import (
	"delivery-route-builder/internal/api/handlers"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/ports"
	"net/http"
)

// NewRouter wires the read-only status endpoints over a status store.
// final is the stage a unit must reach to count as complete.
func NewRouter(store ports.StatusRepository, final domain.Stage) http.Handler {
	mux := http.NewServeMux()

	statusHandler := &handlers.StatusHandler{
		Repo:  store,
		Final: final,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/status", statusHandler.List)
	mux.HandleFunc("/status/summary", statusHandler.Summary)

	return loggingMiddleware(mux)
}
