package careplan

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists care plans of both kinds. Implementations return
// apperr.ErrNotFound for missing records and keep every record-level
// mutation atomic against the stored state.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, kind Kind, id uuid.UUID) (*Plan, error)
	Search(ctx context.Context, kind Kind, f Filter, sortCol string, descending bool, limit, offset int) ([]*Plan, int, error)
	ListByPatient(ctx context.Context, kind Kind, patientID string) ([]*Plan, error)
	Update(ctx context.Context, kind Kind, id uuid.UUID, upd *Update) (*Plan, error)
	Delete(ctx context.Context, kind Kind, id uuid.UUID) (*Plan, error)
	AppendBreastfeedingLog(ctx context.Context, id uuid.UUID, entry BreastfeedingLog) (*Plan, error)
}
