package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// roleIDAttempts bounds retries when a freshly generated patient or doctor
// identifier collides with an existing one.
const roleIDAttempts = 3

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// Service implements registration, login, profile updates and password
// changes, and resolves live identities for the auth middleware.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
	tokens *auth.Tokens
	log    zerolog.Logger
}

func NewService(repo Repository, hasher auth.PasswordHasher, tokens *auth.Tokens, log zerolog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// RegisterPatientInput carries the fields accepted at patient sign-up.
type RegisterPatientInput struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Gender      *string    `json:"gender"`
	PhoneNumber *string    `json:"phoneNumber"`
}

// RegisterAdminInput carries the fields accepted at admin sign-up.
type RegisterAdminInput struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Specialization *string `json:"specialization"`
	LicenseNumber  *string `json:"licenseNumber"`
	Department     *string `json:"department"`
}

// RegisterPatient creates a patient account and issues a token for it.
func (s *Service) RegisterPatient(ctx context.Context, in *RegisterPatientInput) (*User, string, error) {
	fields := validateCredentials(in.FirstName, in.LastName, in.Email, in.Password)
	if in.Gender != nil && !validGenders[*in.Gender] {
		fields = append(fields, apperr.Field("gender", "must be one of male, female, other"))
	}
	if len(fields) > 0 {
		return nil, "", apperr.Validation(fields...)
	}

	u := &User{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       normalizeEmail(in.Email),
		UserType:    auth.UserTypePatient,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		PhoneNumber: in.PhoneNumber,
		IsActive:    true,
		IsVerified:  true,
	}
	return s.register(ctx, u, in.Password, PatientIDPrefix)
}

// RegisterAdmin creates an admin (doctor) account and issues a token for it.
func (s *Service) RegisterAdmin(ctx context.Context, in *RegisterAdminInput) (*User, string, error) {
	fields := validateCredentials(in.FirstName, in.LastName, in.Email, in.Password)
	if in.Specialization != nil && !validSpecializations[*in.Specialization] {
		fields = append(fields, apperr.Field("specialization", "must be one of ENT, Obstetrics, General, Other"))
	}
	if len(fields) > 0 {
		return nil, "", apperr.Validation(fields...)
	}

	u := &User{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          normalizeEmail(in.Email),
		UserType:       auth.UserTypeAdmin,
		Specialization: in.Specialization,
		LicenseNumber:  in.LicenseNumber,
		Department:     in.Department,
		IsActive:       true,
		IsVerified:     true,
	}
	return s.register(ctx, u, in.Password, DoctorIDPrefix)
}

func (s *Service) register(ctx context.Context, u *User, password, prefix string) (*User, string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", apperr.Store(err)
	}
	u.PasswordHash = hash

	// A generated role identifier can collide. Retry with a fresh one,
	// bounded, using the store's uniqueness constraint as the backstop.
	for attempt := 0; attempt < roleIDAttempts; attempt++ {
		roleID := newRoleID(prefix)
		switch u.UserType {
		case auth.UserTypePatient:
			u.PatientID = &roleID
		default:
			u.DoctorID = &roleID
		}

		err = s.repo.Create(ctx, u)
		if !errors.Is(err, ErrRoleIDTaken) {
			break
		}
		s.log.Warn().Str("role_id", roleID).Msg("role identifier conflict, regenerating")
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(u.ID, u.UserType)
	if err != nil {
		return nil, "", apperr.Store(err)
	}
	return u, token, nil
}

// Login authenticates against accounts of the given type only. Unknown
// email, wrong password and deactivated account all collapse to
// InvalidCredentials so callers cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, userType, email, password string) (*User, string, error) {
	u, err := s.repo.GetByEmailAndType(ctx, normalizeEmail(email), userType)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.VerifyPassword(u.PasswordHash, password) {
		return nil, "", apperr.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, "", apperr.ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("touch last login")
	}
	now := time.Now()
	u.LastLogin = &now

	token, err := s.tokens.Issue(u.ID, u.UserType)
	if err != nil {
		return nil, "", apperr.Store(err)
	}
	return u, token, nil
}

// UpdateProfile applies an allow-listed partial update to the caller's
// profile. Email, password, user type and role identifiers cannot be
// changed through this path.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd *ProfileUpdate) (*User, error) {
	var fields []apperr.FieldError
	if upd.FirstName != nil {
		fields = append(fields, validateName("firstName", *upd.FirstName)...)
	}
	if upd.LastName != nil {
		fields = append(fields, validateName("lastName", *upd.LastName)...)
	}
	if upd.Gender != nil && !validGenders[*upd.Gender] {
		fields = append(fields, apperr.Field("gender", "must be one of male, female, other"))
	}
	if upd.Specialization != nil && !validSpecializations[*upd.Specialization] {
		fields = append(fields, apperr.Field("specialization", "must be one of ENT, Obstetrics, General, Other"))
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	return s.repo.UpdateProfile(ctx, id, upd)
}

// ChangePassword verifies the current password before storing a new hash.
// A failed verification never mutates the stored hash.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.Validation(apperr.Field("newPassword", "must be at least 6 characters long"))
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(u.PasswordHash, currentPassword) {
		return apperr.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Store(err)
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// Validate returns the live identity record behind a verified token.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.ErrAccountDeactivated
	}
	return u, nil
}

// Resolve implements auth.IdentityResolver so the middleware re-fetches the
// live account on every request.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	u, err := s.Validate(ctx, userID)
	if err != nil {
		return nil, err
	}

	ident := &auth.Identity{ID: u.ID, UserType: u.UserType}
	if u.PatientID != nil {
		ident.PatientID = *u.PatientID
	}
	if u.DoctorID != nil {
		ident.DoctorID = *u.DoctorID
	}
	return ident, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(field, value string) []apperr.FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return []apperr.FieldError{apperr.Field(field, "is required")}
	}
	if len(value) > 50 {
		return []apperr.FieldError{apperr.Field(field, "cannot exceed 50 characters")}
	}
	return nil
}

func validateCredentials(firstName, lastName, email, password string) []apperr.FieldError {
	var fields []apperr.FieldError
	fields = append(fields, validateName("firstName", firstName)...)
	fields = append(fields, validateName("lastName", lastName)...)
	if !emailPattern.MatchString(normalizeEmail(email)) {
		fields = append(fields, apperr.Field("email", "must be a valid email address"))
	}
	if len(password) < 6 {
		fields = append(fields, apperr.Field("password", "must be at least 6 characters long"))
	}
	return fields
}
