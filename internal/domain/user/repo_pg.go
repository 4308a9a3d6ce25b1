package user

import (
	"context"
	"errors"
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

// NewRepo creates the Postgres-backed identity repository.
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

const userCols = `id, first_name, last_name, email, password_hash, user_type,
	patient_id, date_of_birth, gender, phone_number, address, emergency_contact,
	doctor_id, specialization, license_number, department,
	is_active, is_verified, last_login, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()

	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (
			id, first_name, last_name, email, password_hash, user_type,
			patient_id, date_of_birth, gender, phone_number, address, emergency_contact,
			doctor_id, specialization, license_number, department,
			is_active, is_verified
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,$11,$12,
			$13,$14,$15,$16,
			$17,$18
		) RETURNING `+userCols,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.UserType,
		u.PatientID, u.DateOfBirth, u.Gender, u.PhoneNumber, u.Address, u.EmergencyContact,
		u.DoctorID, u.Specialization, u.LicenseNumber, u.Department,
		u.IsActive, u.IsVerified,
	).Scan(scanTargets(u)...)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id,
	).Scan(scanTargets(&u)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &u, nil
}

func (r *repoPG) GetByEmailAndType(ctx context.Context, email, userType string) (*User, error) {
	var u User
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1) AND user_type = $2`,
		email, userType,
	).Scan(scanTargets(&u)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &u, nil
}

// UpdateProfile applies the allow-listed fields in a single statement. Nil
// fields retain their stored value; address and emergency_contact are
// replaced wholesale when present.
func (r *repoPG) UpdateProfile(ctx context.Context, id uuid.UUID, upd *ProfileUpdate) (*User, error) {
	var u User
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET
			first_name        = COALESCE($2, first_name),
			last_name         = COALESCE($3, last_name),
			date_of_birth     = COALESCE($4, date_of_birth),
			gender            = COALESCE($5, gender),
			phone_number      = COALESCE($6, phone_number),
			address           = COALESCE($7, address),
			emergency_contact = COALESCE($8, emergency_contact),
			specialization    = COALESCE($9, specialization),
			license_number    = COALESCE($10, license_number),
			department        = COALESCE($11, department),
			updated_at        = NOW()
		WHERE id = $1
		RETURNING `+userCols,
		id,
		upd.FirstName, upd.LastName, upd.DateOfBirth, upd.Gender, upd.PhoneNumber,
		upd.Address, upd.EmergencyContact,
		upd.Specialization, upd.LicenseNumber, upd.Department,
	).Scan(scanTargets(&u)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &u, nil
}

func (r *repoPG) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return apperr.Store(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *repoPG) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, id,
	)
	if err != nil {
		return apperr.Store(err)
	}
	return nil
}

func scanTargets(u *User) []interface{} {
	return []interface{}{
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.UserType,
		&u.PatientID, &u.DateOfBirth, &u.Gender, &u.PhoneNumber, &u.Address, &u.EmergencyContact,
		&u.DoctorID, &u.Specialization, &u.LicenseNumber, &u.Department,
		&u.IsActive, &u.IsVerified, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	}
}

// mapUniqueViolation translates Postgres unique constraint errors into the
// error kinds callers branch on.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return apperr.Store(err)
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return apperr.ErrDuplicateEmail
	case strings.Contains(pgErr.ConstraintName, "patient_id"),
		strings.Contains(pgErr.ConstraintName, "doctor_id"):
		return ErrRoleIDTaken
	}
	return apperr.Store(err)
}
