package careplan

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects which specialty a plan belongs to. The two kinds share the
// store machinery and differ in their discriminator field, their extra
// columns and their care-details schema.
type Kind string

const (
	KindENT        Kind = "ent"
	KindObstetrics Kind = "obstetrics"
)

// Valid reports whether k names a known specialty.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Plan is a care-plan record of either kind. Kind-specific fields are
// pointers and stay nil on the other kind.
type Plan struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"-"`
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName"`
	DoctorID    string    `json:"doctorId"`
	DoctorName  string    `json:"doctorName"`

	// ENT fields.
	OperationType *string `json:"operationType,omitempty"`
	SurgeryType   *string `json:"surgeryType,omitempty"`
	Symptoms      *string `json:"symptoms,omitempty"`

	// Obstetrics fields.
	CareType        *string     `json:"careType,omitempty"`
	GestationalWeek *int        `json:"gestationalWeek,omitempty"`
	VitalSigns      *VitalSigns `json:"vitalSigns,omitempty"`

	CareDetails     *CareDetails `json:"careDetails,omitempty"`
	Instructions    string       `json:"instructions"`
	NextAppointment *time.Time   `json:"nextAppointment,omitempty"`
	Status          string       `json:"status"`
	Priority        string       `json:"priority"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// CareDetails is the kind-specific clinical block, stored as a JSONB
// sub-document. ENT plans use the first group of fields, obstetrics plans
// the second; validation enforces the split.
type CareDetails struct {
	// ENT
	PainLevel        *int             `json:"painLevel,omitempty"`
	BreathingIssues  *string          `json:"breathingIssues,omitempty"`
	ThroatDiscomfort *string          `json:"throatDiscomfort,omitempty"`
	MedicationIntake []Medication     `json:"medicationIntake,omitempty"`
	HealingProgress  *HealingProgress `json:"healingProgress,omitempty"`

	// Obstetrics
	TrimesterSymptoms *TrimesterSymptoms `json:"trimesterSymptoms,omitempty"`
	BabyMovement      *BabyMovement      `json:"babyMovement,omitempty"`
	SleepNutrition    *SleepNutrition    `json:"sleepNutrition,omitempty"`
	PostnatalRecovery *PostnatalRecovery `json:"postnatalRecovery,omitempty"`
}

// Medication is a single entry in an ENT plan's medication intake list.
type Medication struct {
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	Frequency      string `json:"frequency"`
	SideEffects    string `json:"sideEffects,omitempty"`
}

// HealingProgress tracks post-operative recovery on an ENT plan.
type HealingProgress struct {
	WoundCondition string `json:"woundCondition,omitempty"`
	Swelling       string `json:"swelling,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// TrimesterSymptoms records pregnancy symptoms on an obstetrics plan.
type TrimesterSymptoms struct {
	Nausea  string `json:"nausea,omitempty"`
	Cramps  string `json:"cramps,omitempty"`
	Mood    string `json:"mood,omitempty"`
	Fatigue string `json:"fatigue,omitempty"`
}

// BabyMovement records fetal movement observations.
type BabyMovement struct {
	Frequency    string     `json:"frequency,omitempty"`
	LastMovement *time.Time `json:"lastMovement,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// SleepNutrition records rest and diet information.
type SleepNutrition struct {
	SleepHours   *float64     `json:"sleepHours,omitempty"`
	SleepQuality string       `json:"sleepQuality,omitempty"`
	DietNotes    string       `json:"dietNotes,omitempty"`
	WaterIntake  *float64     `json:"waterIntake,omitempty"`
	Supplements  []Supplement `json:"supplements,omitempty"`
}

// Supplement is a single entry in the sleep/nutrition supplement list.
type Supplement struct {
	Name      string `json:"name,omitempty"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// PostnatalRecovery records post-delivery recovery including the append-only
// breastfeeding log.
type PostnatalRecovery struct {
	Bleeding          string             `json:"bleeding,omitempty"`
	StitchesCondition string             `json:"stitchesCondition,omitempty"`
	BreastfeedingLogs []BreastfeedingLog `json:"breastfeedingLogs,omitempty"`
	PainLevel         *int               `json:"painLevel,omitempty"`
	EmotionalState    string             `json:"emotionalState,omitempty"`
}

// BreastfeedingLog is one append-only feeding entry. Duration is minutes.
type BreastfeedingLog struct {
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	Side     string    `json:"side"`
	Notes    string    `json:"notes,omitempty"`
}

// VitalSigns holds obstetric vitals, stored as a JSONB sub-document.
type VitalSigns struct {
	BloodPressure *BloodPressure `json:"bloodPressure,omitempty"`
	Weight        *float64       `json:"weight,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
	HeartRate     *int           `json:"heartRate,omitempty"`
}

// BloodPressure is a systolic/diastolic reading.
type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// Update is the allow-list of fields mutable through the update path.
// Nil fields keep their stored value. CareDetails and VitalSigns are
// replaced wholesale when present; callers sending a partial sub-document
// clear the fields they omit.
type Update struct {
	PatientName     *string      `json:"patientName"`
	DoctorName      *string      `json:"doctorName"`
	OperationType   *string      `json:"operationType"`
	SurgeryType     *string      `json:"surgeryType"`
	Symptoms        *string      `json:"symptoms"`
	CareType        *string      `json:"careType"`
	GestationalWeek *int         `json:"gestationalWeek"`
	VitalSigns      *VitalSigns  `json:"vitalSigns"`
	CareDetails     *CareDetails `json:"careDetails"`
	Instructions    *string      `json:"instructions"`
	NextAppointment *time.Time   `json:"nextAppointment"`
	Status          *string      `json:"status"`
	Priority        *string      `json:"priority"`
}

// Filter is the conjunction of equality filters accepted by list queries.
// Variant matches the kind's discriminator (operationType or careType).
type Filter struct {
	PatientID string
	DoctorID  string
	Variant   string
	Status    string
	Priority  string
}

// Plan lifecycle enums and defaults.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

var validPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}
