package user

import (
	"time"

	"github.com/google/uuid"
)

// Address is a postal address attached to a patient profile. Stored as a
// JSONB sub-document and replaced wholesale on update.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// EmergencyContact is the person to reach for a patient. Stored as a JSONB
// sub-document and replaced wholesale on update.
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
}

// User is an identity record. Exactly one of PatientID/DoctorID is set,
// matching UserType. The password hash never serializes outward.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	UserType     string    `json:"userType" db:"user_type"`

	// Patient fields.
	PatientID        *string           `json:"patientId,omitempty" db:"patient_id"`
	DateOfBirth      *time.Time        `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Gender           *string           `json:"gender,omitempty" db:"gender"`
	PhoneNumber      *string           `json:"phoneNumber,omitempty" db:"phone_number"`
	Address          *Address          `json:"address,omitempty" db:"address"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty" db:"emergency_contact"`

	// Admin (doctor) fields.
	DoctorID       *string `json:"doctorId,omitempty" db:"doctor_id"`
	Specialization *string `json:"specialization,omitempty" db:"specialization"`
	LicenseNumber  *string `json:"licenseNumber,omitempty" db:"license_number"`
	Department     *string `json:"department,omitempty" db:"department"`

	IsActive   bool       `json:"isActive" db:"is_active"`
	IsVerified bool       `json:"isVerified" db:"is_verified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RoleID returns the role-scoped identifier for the user's type.
func (u *User) RoleID() string {
	switch {
	case u.PatientID != nil:
		return *u.PatientID
	case u.DoctorID != nil:
		return *u.DoctorID
	}
	return ""
}

// ProfileUpdate is the allow-list of fields mutable through the generic
// profile path. Email, password, user type and the role identifiers are not
// representable here and so cannot be changed by it. Nil fields keep their
// stored value; Address and EmergencyContact are replaced wholesale when
// present.
type ProfileUpdate struct {
	FirstName        *string           `json:"firstName"`
	LastName         *string           `json:"lastName"`
	DateOfBirth      *time.Time        `json:"dateOfBirth"`
	Gender           *string           `json:"gender"`
	PhoneNumber      *string           `json:"phoneNumber"`
	Address          *Address          `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
	Specialization   *string           `json:"specialization"`
	LicenseNumber    *string           `json:"licenseNumber"`
	Department       *string           `json:"department"`
}

// Genders accepted on patient profiles.
var validGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

// Specializations accepted on admin profiles.
var validSpecializations = map[string]bool{
	"ENT":        true,
	"Obstetrics": true,
	"General":    true,
	"Other":      true,
}
