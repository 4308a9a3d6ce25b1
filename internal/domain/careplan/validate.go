package careplan

import (
	"fmt"
	"strings"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// Enumerated value domains for clinical fields.
var (
	severityScale  = []string{"none", "mild", "moderate", "severe"}
	qualityScale   = []string{"excellent", "good", "fair", "poor"}
	moodScale      = []string{"stable", "anxious", "depressed", "irritable", "happy"}
	movementScale  = []string{"not-applicable", "frequent", "normal", "reduced", "none"}
	bleedingScale  = []string{"none", "light", "moderate", "heavy"}
	stitchesScale  = []string{"not-applicable", "healing-well", "concerning", "infected"}
	emotionalScale = []string{"stable", "anxious", "depressed", "overwhelmed", "happy"}
	feedingSides   = []string{"left", "right", "both"}
	operationTypes = []string{"pre-operation", "post-operation"}
	careTypes      = []string{"prenatal", "postnatal", "delivery-prep"}
)

func inEnum(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func enumError(field string, allowed []string) apperr.FieldError {
	return apperr.Field(field, "must be one of: "+strings.Join(allowed, ", "))
}

func checkEnum(fields []apperr.FieldError, field, value string, allowed []string) []apperr.FieldError {
	if value != "" && !inEnum(value, allowed) {
		fields = append(fields, enumError(field, allowed))
	}
	return fields
}

func checkLength(fields []apperr.FieldError, field, value string, min, max int) []apperr.FieldError {
	if len(value) < min || len(value) > max {
		fields = append(fields, apperr.Field(field,
			fmt.Sprintf("must be between %d and %d characters", min, max)))
	}
	return fields
}

// validateBase checks the fields shared by both kinds on create.
func validateBase(p *Plan) []apperr.FieldError {
	var fields []apperr.FieldError
	fields = checkLength(fields, "patientId", strings.TrimSpace(p.PatientID), 1, 50)
	fields = checkLength(fields, "patientName", strings.TrimSpace(p.PatientName), 2, 100)
	fields = checkLength(fields, "doctorId", strings.TrimSpace(p.DoctorID), 1, 50)
	fields = checkLength(fields, "doctorName", strings.TrimSpace(p.DoctorName), 2, 100)
	fields = checkLength(fields, "instructions", strings.TrimSpace(p.Instructions), 10, 1000)
	if p.Status != "" && !validStatuses[p.Status] {
		fields = append(fields, enumError("status", []string{StatusActive, StatusCompleted, StatusCancelled}))
	}
	if p.Priority != "" && !validPriorities[p.Priority] {
		fields = append(fields, enumError("priority", []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}))
	}
	return fields
}

func validateENT(p *Plan) []apperr.FieldError {
	fields := validateBase(p)

	if p.OperationType == nil || !inEnum(*p.OperationType, operationTypes) {
		fields = append(fields, enumError("operationType", operationTypes))
	}
	if p.SurgeryType == nil {
		fields = append(fields, apperr.Field("surgeryType", "is required"))
	} else {
		fields = checkLength(fields, "surgeryType", strings.TrimSpace(*p.SurgeryType), 2, 100)
	}
	if p.CareType != nil || p.GestationalWeek != nil || p.VitalSigns != nil {
		fields = append(fields, apperr.Field("careType", "not valid for ENT care plans"))
	}
	if p.CareDetails != nil {
		fields = append(fields, validateENTCareDetails(p.CareDetails)...)
	}
	return fields
}

func validateENTCareDetails(cd *CareDetails) []apperr.FieldError {
	var fields []apperr.FieldError
	if cd.PainLevel != nil && (*cd.PainLevel < 0 || *cd.PainLevel > 10) {
		fields = append(fields, apperr.Field("careDetails.painLevel", "must be between 0 and 10"))
	}
	if cd.BreathingIssues != nil {
		fields = checkEnum(fields, "careDetails.breathingIssues", *cd.BreathingIssues, severityScale)
	}
	if cd.ThroatDiscomfort != nil {
		fields = checkEnum(fields, "careDetails.throatDiscomfort", *cd.ThroatDiscomfort, severityScale)
	}
	for i, m := range cd.MedicationIntake {
		if m.MedicationName == "" || m.Dosage == "" || m.Frequency == "" {
			fields = append(fields, apperr.Field(
				fmt.Sprintf("careDetails.medicationIntake[%d]", i),
				"medicationName, dosage and frequency are required"))
		}
	}
	if hp := cd.HealingProgress; hp != nil {
		fields = checkEnum(fields, "careDetails.healingProgress.woundCondition", hp.WoundCondition, qualityScale)
		fields = checkEnum(fields, "careDetails.healingProgress.swelling", hp.Swelling, severityScale)
	}
	if cd.TrimesterSymptoms != nil || cd.BabyMovement != nil || cd.SleepNutrition != nil || cd.PostnatalRecovery != nil {
		fields = append(fields, apperr.Field("careDetails", "obstetrics fields are not valid for ENT care plans"))
	}
	return fields
}

func validateObstetrics(p *Plan) []apperr.FieldError {
	fields := validateBase(p)

	if p.CareType == nil || !inEnum(*p.CareType, careTypes) {
		fields = append(fields, enumError("careType", careTypes))
	}
	if p.GestationalWeek != nil && (*p.GestationalWeek < 0 || *p.GestationalWeek > 42) {
		fields = append(fields, apperr.Field("gestationalWeek", "must be between 0 and 42"))
	}
	if p.OperationType != nil || p.SurgeryType != nil || p.Symptoms != nil {
		fields = append(fields, apperr.Field("operationType", "not valid for obstetrics care plans"))
	}
	if p.CareDetails != nil {
		fields = append(fields, validateObstetricsCareDetails(p.CareDetails)...)
	}
	return fields
}

func validateObstetricsCareDetails(cd *CareDetails) []apperr.FieldError {
	var fields []apperr.FieldError
	if ts := cd.TrimesterSymptoms; ts != nil {
		fields = checkEnum(fields, "careDetails.trimesterSymptoms.nausea", ts.Nausea, severityScale)
		fields = checkEnum(fields, "careDetails.trimesterSymptoms.cramps", ts.Cramps, severityScale)
		fields = checkEnum(fields, "careDetails.trimesterSymptoms.mood", ts.Mood, moodScale)
		fields = checkEnum(fields, "careDetails.trimesterSymptoms.fatigue", ts.Fatigue, severityScale)
	}
	if bm := cd.BabyMovement; bm != nil {
		fields = checkEnum(fields, "careDetails.babyMovement.frequency", bm.Frequency, movementScale)
	}
	if sn := cd.SleepNutrition; sn != nil {
		if sn.SleepHours != nil && (*sn.SleepHours < 0 || *sn.SleepHours > 24) {
			fields = append(fields, apperr.Field("careDetails.sleepNutrition.sleepHours", "must be between 0 and 24"))
		}
		if sn.WaterIntake != nil && *sn.WaterIntake < 0 {
			fields = append(fields, apperr.Field("careDetails.sleepNutrition.waterIntake", "must be a positive number"))
		}
		fields = checkEnum(fields, "careDetails.sleepNutrition.sleepQuality", sn.SleepQuality, qualityScale)
	}
	if pr := cd.PostnatalRecovery; pr != nil {
		fields = checkEnum(fields, "careDetails.postnatalRecovery.bleeding", pr.Bleeding, bleedingScale)
		fields = checkEnum(fields, "careDetails.postnatalRecovery.stitchesCondition", pr.StitchesCondition, stitchesScale)
		fields = checkEnum(fields, "careDetails.postnatalRecovery.emotionalState", pr.EmotionalState, emotionalScale)
		if pr.PainLevel != nil && (*pr.PainLevel < 0 || *pr.PainLevel > 10) {
			fields = append(fields, apperr.Field("careDetails.postnatalRecovery.painLevel", "must be between 0 and 10"))
		}
		for i, log := range pr.BreastfeedingLogs {
			fields = append(fields, prefixFields(
				fmt.Sprintf("careDetails.postnatalRecovery.breastfeedingLogs[%d].", i),
				validateBreastfeedingLog(log.Duration, log.Side, log.Notes))...)
		}
	}
	if cd.PainLevel != nil || cd.BreathingIssues != nil || cd.ThroatDiscomfort != nil ||
		len(cd.MedicationIntake) > 0 || cd.HealingProgress != nil {
		fields = append(fields, apperr.Field("careDetails", "ENT fields are not valid for obstetrics care plans"))
	}
	return fields
}

// validateBreastfeedingLog checks one feeding entry.
func validateBreastfeedingLog(duration int, side, notes string) []apperr.FieldError {
	var fields []apperr.FieldError
	if duration < 1 || duration > 120 {
		fields = append(fields, apperr.Field("duration", "must be between 1 and 120 minutes"))
	}
	if !inEnum(side, feedingSides) {
		fields = append(fields, enumError("side", feedingSides))
	}
	if len(notes) > 500 {
		fields = append(fields, apperr.Field("notes", "must not exceed 500 characters"))
	}
	return fields
}

func prefixFields(prefix string, fields []apperr.FieldError) []apperr.FieldError {
	for i := range fields {
		fields[i].Field = prefix + fields[i].Field
	}
	return fields
}

// validateUpdateBase checks the shared fields present on a partial update.
func validateUpdateBase(u *Update) []apperr.FieldError {
	var fields []apperr.FieldError
	if u.PatientName != nil {
		fields = checkLength(fields, "patientName", strings.TrimSpace(*u.PatientName), 2, 100)
	}
	if u.DoctorName != nil {
		fields = checkLength(fields, "doctorName", strings.TrimSpace(*u.DoctorName), 2, 100)
	}
	if u.Instructions != nil {
		fields = checkLength(fields, "instructions", strings.TrimSpace(*u.Instructions), 10, 1000)
	}
	if u.Status != nil && !validStatuses[*u.Status] {
		fields = append(fields, enumError("status", []string{StatusActive, StatusCompleted, StatusCancelled}))
	}
	if u.Priority != nil && !validPriorities[*u.Priority] {
		fields = append(fields, enumError("priority", []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}))
	}
	return fields
}

func validateENTUpdate(u *Update) []apperr.FieldError {
	fields := validateUpdateBase(u)
	if u.OperationType != nil && !inEnum(*u.OperationType, operationTypes) {
		fields = append(fields, enumError("operationType", operationTypes))
	}
	if u.SurgeryType != nil {
		fields = checkLength(fields, "surgeryType", strings.TrimSpace(*u.SurgeryType), 2, 100)
	}
	if u.CareType != nil || u.GestationalWeek != nil || u.VitalSigns != nil {
		fields = append(fields, apperr.Field("careType", "not valid for ENT care plans"))
	}
	if u.CareDetails != nil {
		fields = append(fields, validateENTCareDetails(u.CareDetails)...)
	}
	return fields
}

func validateObstetricsUpdate(u *Update) []apperr.FieldError {
	fields := validateUpdateBase(u)
	if u.CareType != nil && !inEnum(*u.CareType, careTypes) {
		fields = append(fields, enumError("careType", careTypes))
	}
	if u.GestationalWeek != nil && (*u.GestationalWeek < 0 || *u.GestationalWeek > 42) {
		fields = append(fields, apperr.Field("gestationalWeek", "must be between 0 and 42"))
	}
	if u.OperationType != nil || u.SurgeryType != nil || u.Symptoms != nil {
		fields = append(fields, apperr.Field("operationType", "not valid for obstetrics care plans"))
	}
	if u.CareDetails != nil {
		fields = append(fields, validateObstetricsCareDetails(u.CareDetails)...)
	}
	return fields
}
