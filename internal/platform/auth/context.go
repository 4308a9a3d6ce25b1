package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "identity"

// User types recognized by the access layer.
const (
	UserTypePatient = "patient"
	UserTypeAdmin   = "admin"
)

// Identity is the authenticated caller attached to the request context.
// It reflects the live user record, not just token claims, so that
// deactivation takes effect on the next request.
type Identity struct {
	ID        uuid.UUID
	UserType  string
	PatientID string
	DoctorID  string
}

// IsAdmin reports whether the identity belongs to an admin user.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.UserType == UserTypeAdmin
}

// OwnsPatient reports whether the identity may access records belonging
// to patientID. Admins may access any patient.
func (i *Identity) OwnsPatient(patientID string) bool {
	if i == nil {
		return false
	}
	if i.IsAdmin() {
		return true
	}
	return i.PatientID != "" && i.PatientID == patientID
}

// WithIdentity attaches the identity to the context.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext returns the authenticated identity, or nil for
// anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}
