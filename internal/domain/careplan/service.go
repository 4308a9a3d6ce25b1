package careplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// sortColumns is the allow-list of sortable fields, mapping the JSON name
// callers send to the backing column.
var sortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"status":          "status",
	"priority":        "priority",
	"nextAppointment": "next_appointment",
}

const defaultSortBy = "createdAt"

// Service implements care-plan operations for both kinds. Validation and
// defaulting live here; the repository only moves records.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates and persists a new plan of the given kind. Status and
// priority default to active and medium when unset.
func (s *Service) Create(ctx context.Context, kind Kind, p *Plan) (*Plan, error) {
	d, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown care plan kind %q", kind)
	}
	p.Kind = kind

	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}

	if fields := d.validate(p); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error().Err(err).Str("kind", string(kind)).Msg("create care plan")
		return nil, err
	}
	return p, nil
}

// List returns one page of plans matching the filter. sortBy falls back to
// createdAt when it is not in the allow-list; sortOrder is descending
// unless "asc".
func (s *Service) List(ctx context.Context, kind Kind, f Filter, sortBy, sortOrder string, limit, offset int) ([]*Plan, int, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = sortColumns[defaultSortBy]
	}
	descending := !strings.EqualFold(sortOrder, "asc")

	return s.repo.Search(ctx, kind, f, col, descending, limit, offset)
}

func (s *Service) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, kind, id)
}

// Update applies an allow-listed partial update. Sub-documents present in
// the update replace the stored ones wholesale.
func (s *Service) Update(ctx context.Context, kind Kind, id uuid.UUID, upd *Update) (*Plan, error) {
	d, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown care plan kind %q", kind)
	}
	if fields := d.validateUpdate(upd); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}
	return s.repo.Update(ctx, kind, id, upd)
}

// Delete removes the plan and returns the removed record.
func (s *Service) Delete(ctx context.Context, kind Kind, id uuid.UUID) (*Plan, error) {
	return s.repo.Delete(ctx, kind, id)
}

// ListByPatient returns all of a patient's plans, newest first, without
// pagination.
func (s *Service) ListByPatient(ctx context.Context, kind Kind, patientID string) ([]*Plan, error) {
	return s.repo.ListByPatient(ctx, kind, patientID)
}

// AppendBreastfeedingLog is the obstetrics-specific extension: it appends
// one timestamped entry to the plan's breastfeeding log. The append is
// atomic, so concurrent calls on the same record never lose entries.
func (s *Service) AppendBreastfeedingLog(ctx context.Context, id uuid.UUID, duration int, side, notes string) (*Plan, error) {
	if fields := validateBreastfeedingLog(duration, side, notes); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	entry := BreastfeedingLog{
		Date:     time.Now().UTC(),
		Duration: duration,
		Side:     side,
		Notes:    notes,
	}
	return s.repo.AppendBreastfeedingLog(ctx, id, entry)
}
