package ports

import (
	"context"
	"delivery-route-builder/internal/domain"
)

// Port: durable storage for per-unit stage outcomes.
type StatusRepository interface {
	// Insert rows, overwriting any existing row with the same title.
	SaveStatuses(ctx context.Context, rows []domain.StatusRow) error
	// Return all stored rows ordered by title.
	ListStatuses(ctx context.Context) ([]domain.StatusRow, error)
}
