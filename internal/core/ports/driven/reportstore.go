package driven

import (
	"context"

	"github.com/formgate/formgate-cli/internal/core/domain"
)

// ReportStore persists validation reports.
type ReportStore interface {
	// Save stores a completed report.
	Save(ctx context.Context, report domain.ValidationReport) error

	// Get retrieves a report by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.ValidationReport, error)

	// List returns stored report IDs, most recent first.
	List(ctx context.Context) ([]domain.ValidationReport, error)

	// Close releases resources.
	Close() error
}
