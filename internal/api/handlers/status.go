package handlers

import (
	"delivery-route-builder/internal/api/dto"
	"delivery-route-builder/internal/domain"
	"delivery-route-builder/internal/ports"
	"delivery-route-builder/internal/services"
	"log"
	"net/http"
)

// StatusHandler exposes the persisted per-unit status table.
type StatusHandler struct {
	Repo  ports.StatusRepository
	Final domain.Stage
}

func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	rows, err := h.Repo.ListStatuses(r.Context())
	if err != nil {
		log.Printf("list statuses failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListStatusesResponse{
		Statuses: make([]dto.StatusResponse, 0, len(rows)),
	}
	for _, row := range rows {
		res.Statuses = append(res.Statuses, dto.StatusResponse{
			Title:         row.Title,
			RunID:         row.RunID,
			PlanID:        row.PlanID,
			DriverID:      row.DriverID,
			Initialized:   row.Flags.Initialized,
			Writable:      row.Flags.Writable,
			StopsUploaded: row.Flags.StopsUploaded,
			Optimized:     row.Flags.Optimized,
			Distributed:   row.Flags.Distributed,
			HaltReason:    row.HaltReason,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Summary reports stage counts and the titles that stopped short of Final.
func (h *StatusHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	rows, err := h.Repo.ListStatuses(r.Context())
	if err != nil {
		log.Printf("summarize statuses failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	sum := services.Summarize(rows)
	incomplete := services.Incomplete(rows, h.Final)

	writeJSON(w, r, http.StatusOK, dto.SummaryResponse{
		Attempted:   sum.Attempted,
		Initialized: sum.Initialized,
		Writable:    sum.Writable,
		WithStops:   sum.WithStops,
		Optimized:   sum.Optimized,
		Distributed: sum.Distributed,
		Line:        sum.String(),
		Incomplete:  incomplete,
	})
}
