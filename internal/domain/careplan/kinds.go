package careplan

import "github.com/caretrack/caretrack/internal/platform/apperr"

// kindDef describes how a specialty maps onto the shared store machinery:
// its table, its discriminator, the columns it adds beyond the common set
// and its validation rules.
type kindDef struct {
	table   string
	discCol string

	// extraCols sit between the shared doctor_name and care_details
	// columns. extraVals and extraPtrs must match their order.
	extraCols []string
	extraVals func(p *Plan) []interface{}
	extraPtrs func(p *Plan) []interface{}

	// updateCols/updateVals drive the COALESCE set clauses for the
	// kind-specific columns on partial update.
	updateCols []string
	updateVals func(u *Update) []interface{}

	validate       func(p *Plan) []apperr.FieldError
	validateUpdate func(u *Update) []apperr.FieldError
}

var kinds = map[Kind]kindDef{
	KindENT: {
		table:     "ent_care_plans",
		discCol:   "operation_type",
		extraCols: []string{"operation_type", "surgery_type", "symptoms"},
		extraVals: func(p *Plan) []interface{} {
			return []interface{}{p.OperationType, p.SurgeryType, p.Symptoms}
		},
		extraPtrs: func(p *Plan) []interface{} {
			return []interface{}{&p.OperationType, &p.SurgeryType, &p.Symptoms}
		},
		updateCols: []string{"operation_type", "surgery_type", "symptoms"},
		updateVals: func(u *Update) []interface{} {
			return []interface{}{u.OperationType, u.SurgeryType, u.Symptoms}
		},
		validate:       validateENT,
		validateUpdate: validateENTUpdate,
	},
	KindObstetrics: {
		table:     "obstetrics_care_plans",
		discCol:   "care_type",
		extraCols: []string{"care_type", "gestational_week", "vital_signs"},
		extraVals: func(p *Plan) []interface{} {
			return []interface{}{p.CareType, p.GestationalWeek, p.VitalSigns}
		},
		extraPtrs: func(p *Plan) []interface{} {
			return []interface{}{&p.CareType, &p.GestationalWeek, &p.VitalSigns}
		},
		updateCols: []string{"care_type", "gestational_week", "vital_signs"},
		updateVals: func(u *Update) []interface{} {
			return []interface{}{u.CareType, u.GestationalWeek, u.VitalSigns}
		},
		validate:       validateObstetrics,
		validateUpdate: validateObstetricsUpdate,
	},
}
