package careplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates the Postgres-backed care-plan repository. Both kinds
// share the implementation; the kind descriptor supplies the table and the
// kind-specific columns.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(context.Context) querier {
	return r.pool
}

var baseColsHead = []string{"id", "patient_id", "patient_name", "doctor_id", "doctor_name"}

var baseColsTail = []string{"care_details", "instructions", "next_appointment", "status", "priority"}

// cols returns the full select list for a kind: the shared head, the
// kind-specific columns, the shared tail and the timestamps.
func (d kindDef) cols() string {
	all := append([]string{}, baseColsHead...)
	all = append(all, d.extraCols...)
	all = append(all, baseColsTail...)
	all = append(all, "created_at", "updated_at")
	return strings.Join(all, ", ")
}

func scanPtrs(d kindDef, p *Plan) []interface{} {
	ptrs := []interface{}{&p.ID, &p.PatientID, &p.PatientName, &p.DoctorID, &p.DoctorName}
	ptrs = append(ptrs, d.extraPtrs(p)...)
	return append(ptrs,
		&p.CareDetails, &p.Instructions, &p.NextAppointment, &p.Status, &p.Priority,
		&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) Create(ctx context.Context, p *Plan) error {
	d, ok := kinds[p.Kind]
	if !ok {
		return fmt.Errorf("unknown care plan kind %q", p.Kind)
	}
	p.ID = uuid.New()

	cols := append([]string{}, baseColsHead...)
	cols = append(cols, d.extraCols...)
	cols = append(cols, baseColsTail...)

	args := []interface{}{p.ID, p.PatientID, p.PatientName, p.DoctorID, p.DoctorName}
	args = append(args, d.extraVals(p)...)
	args = append(args, p.CareDetails, p.Instructions, p.NextAppointment, p.Status, p.Priority)

	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	err := r.conn(ctx).QueryRow(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		d.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), d.cols()),
		args...,
	).Scan(scanPtrs(d, p)...)
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, kind Kind, id uuid.UUID) (*Plan, error) {
	d := kinds[kind]
	p := &Plan{Kind: kind}
	err := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, d.cols(), d.table), id,
	).Scan(scanPtrs(d, p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("care plan")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return p, nil
}

func (r *repoPG) Search(ctx context.Context, kind Kind, f Filter, sortCol string, descending bool, limit, offset int) ([]*Plan, int, error) {
	d := kinds[kind]

	where := "WHERE 1=1"
	var args []interface{}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		where += fmt.Sprintf(" AND %s = $%d", col, len(args))
	}
	add("patient_id", f.PatientID)
	add("doctor_id", f.DoctorID)
	add(d.discCol, f.Variant)
	add("status", f.Status)
	add("priority", f.Priority)

	var total int
	err := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, d.table, where), args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Store(err)
	}

	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	dataArgs := append(append([]interface{}{}, args...), limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		d.cols(), d.table, where, sortCol, dir, len(args)+1, len(args)+2),
		dataArgs...,
	)
	if err != nil {
		return nil, 0, apperr.Store(err)
	}
	defer rows.Close()

	plans, err := collectPlans(rows, d, kind)
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, kind Kind, patientID string) ([]*Plan, error) {
	d := kinds[kind]
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s WHERE patient_id = $1 ORDER BY created_at DESC`,
		d.cols(), d.table), patientID,
	)
	if err != nil {
		return nil, apperr.Store(err)
	}
	defer rows.Close()
	return collectPlans(rows, d, kind)
}

// Update applies the allow-listed fields in one statement so a concurrent
// update or delete never sees a half-applied record. Nil fields keep their
// stored value; care_details and vital_signs are replaced wholesale.
func (r *repoPG) Update(ctx context.Context, kind Kind, id uuid.UUID, upd *Update) (*Plan, error) {
	d := kinds[kind]

	args := []interface{}{id}
	var set []string
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = COALESCE($%d, %s)", col, len(args), col))
	}
	add("patient_name", upd.PatientName)
	add("doctor_name", upd.DoctorName)
	vals := d.updateVals(upd)
	for i, col := range d.updateCols {
		add(col, vals[i])
	}
	add("care_details", upd.CareDetails)
	add("instructions", upd.Instructions)
	add("next_appointment", upd.NextAppointment)
	add("status", upd.Status)
	add("priority", upd.Priority)
	set = append(set, "updated_at = NOW()")

	p := &Plan{Kind: kind}
	err := r.conn(ctx).QueryRow(ctx, fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		d.table, strings.Join(set, ", "), d.cols()),
		args...,
	).Scan(scanPtrs(d, p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("care plan")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return p, nil
}

func (r *repoPG) Delete(ctx context.Context, kind Kind, id uuid.UUID) (*Plan, error) {
	d := kinds[kind]
	p := &Plan{Kind: kind}
	err := r.conn(ctx).QueryRow(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE id = $1 RETURNING %s`, d.table, d.cols()), id,
	).Scan(scanPtrs(d, p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("care plan")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return p, nil
}

// AppendBreastfeedingLog pushes one entry onto the nested log list in a
// single statement. Concurrent appends to the same record both land; a
// fetch-modify-write here would lose entries under concurrent writers.
func (r *repoPG) AppendBreastfeedingLog(ctx context.Context, id uuid.UUID, entry BreastfeedingLog) (*Plan, error) {
	d := kinds[KindObstetrics]

	encoded, err := json.Marshal(entry)
	if err != nil {
		return nil, apperr.Store(err)
	}

	p := &Plan{Kind: KindObstetrics}
	err = r.conn(ctx).QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s SET
			care_details = jsonb_set(
				jsonb_set(
					COALESCE(care_details, '{}'::jsonb),
					'{postnatalRecovery}',
					COALESCE(care_details->'postnatalRecovery', '{}'::jsonb),
					true),
				'{postnatalRecovery,breastfeedingLogs}',
				COALESCE(care_details#>'{postnatalRecovery,breastfeedingLogs}', '[]'::jsonb) || $2::jsonb,
				true),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, d.table, d.cols()),
		id, encoded,
	).Scan(scanPtrs(d, p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("care plan")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return p, nil
}

func collectPlans(rows pgx.Rows, d kindDef, kind Kind) ([]*Plan, error) {
	var plans []*Plan
	for rows.Next() {
		p := &Plan{Kind: kind}
		if err := rows.Scan(scanPtrs(d, p)...); err != nil {
			return nil, apperr.Store(err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return plans, nil
}
