package careplan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	mu          sync.Mutex
	plans       map[uuid.UUID]*Plan
	lastSortCol string
}

func newMockRepo() *mockRepo {
	return &mockRepo{plans: make(map[uuid.UUID]*Plan)}
}

func (m *mockRepo) Create(_ context.Context, p *Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.plans[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, kind Kind, id uuid.UUID) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.Kind != kind {
		return nil, apperr.NotFound("care plan")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Search(_ context.Context, kind Kind, f Filter, sortCol string, descending bool, limit, offset int) ([]*Plan, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSortCol = sortCol

	var matched []*Plan
	for _, p := range m.plans {
		if p.Kind != kind || !matchesFilter(p, f) {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if descending {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func matchesFilter(p *Plan, f Filter) bool {
	if f.PatientID != "" && p.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && p.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Priority != "" && p.Priority != f.Priority {
		return false
	}
	if f.Variant != "" {
		variant := ""
		switch {
		case p.OperationType != nil:
			variant = *p.OperationType
		case p.CareType != nil:
			variant = *p.CareType
		}
		if variant != f.Variant {
			return false
		}
	}
	return true
}

func (m *mockRepo) ListByPatient(_ context.Context, kind Kind, patientID string) ([]*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*Plan
	for _, p := range m.plans {
		if p.Kind != kind || p.PatientID != patientID {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (m *mockRepo) Update(_ context.Context, kind Kind, id uuid.UUID, upd *Update) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.Kind != kind {
		return nil, apperr.NotFound("care plan")
	}
	if upd.PatientName != nil {
		p.PatientName = *upd.PatientName
	}
	if upd.DoctorName != nil {
		p.DoctorName = *upd.DoctorName
	}
	if upd.OperationType != nil {
		p.OperationType = upd.OperationType
	}
	if upd.SurgeryType != nil {
		p.SurgeryType = upd.SurgeryType
	}
	if upd.Symptoms != nil {
		p.Symptoms = upd.Symptoms
	}
	if upd.CareType != nil {
		p.CareType = upd.CareType
	}
	if upd.GestationalWeek != nil {
		p.GestationalWeek = upd.GestationalWeek
	}
	if upd.VitalSigns != nil {
		p.VitalSigns = upd.VitalSigns
	}
	if upd.CareDetails != nil {
		p.CareDetails = upd.CareDetails
	}
	if upd.Instructions != nil {
		p.Instructions = *upd.Instructions
	}
	if upd.NextAppointment != nil {
		p.NextAppointment = upd.NextAppointment
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Priority != nil {
		p.Priority = *upd.Priority
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, kind Kind, id uuid.UUID) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.Kind != kind {
		return nil, apperr.NotFound("care plan")
	}
	delete(m.plans, id)
	return p, nil
}

func (m *mockRepo) AppendBreastfeedingLog(_ context.Context, id uuid.UUID, entry BreastfeedingLog) (*Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok || p.Kind != KindObstetrics {
		return nil, apperr.NotFound("care plan")
	}
	if p.CareDetails == nil {
		p.CareDetails = &CareDetails{}
	}
	if p.CareDetails.PostnatalRecovery == nil {
		p.CareDetails.PostnatalRecovery = &PostnatalRecovery{}
	}
	p.CareDetails.PostnatalRecovery.BreastfeedingLogs = append(
		p.CareDetails.PostnatalRecovery.BreastfeedingLogs, entry)
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

// -- Fixtures --

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func entPlan() *Plan {
	return &Plan{
		PatientID:     "PAT123456ABC",
		PatientName:   "Jane Doe",
		DoctorID:      "DOC123456XYZ",
		DoctorName:    "Dr. Gregory House",
		OperationType: strPtr("post-operation"),
		SurgeryType:   strPtr("Tonsillectomy"),
		Instructions:  "Rest voice, drink cold fluids, no solid food for 24 hours.",
	}
}

func obstetricsPlan() *Plan {
	return &Plan{
		PatientID:    "PAT123456ABC",
		PatientName:  "Jane Doe",
		DoctorID:     "DOC123456XYZ",
		DoctorName:   "Dr. Lisa Cuddy",
		CareType:     strPtr("postnatal"),
		Instructions: "Track feeding sessions and monitor recovery daily.",
	}
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

// -- Create --

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), KindENT, entPlan())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Status != StatusActive {
		t.Errorf("status = %q, want %q", p.Status, StatusActive)
	}
	if p.Priority != PriorityMedium {
		t.Errorf("priority = %q, want %q", p.Priority, PriorityMedium)
	}
	if p.ID == uuid.Nil {
		t.Error("id not assigned")
	}
}

func TestCreateKeepsExplicitStatusPriority(t *testing.T) {
	svc, _ := newTestService()

	in := entPlan()
	in.Status = StatusCompleted
	in.Priority = PriorityUrgent
	p, err := svc.Create(context.Background(), KindENT, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Status != StatusCompleted || p.Priority != PriorityUrgent {
		t.Errorf("got %s/%s, want completed/urgent", p.Status, p.Priority)
	}
}

func TestCreateValidatesPainLevel(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := entPlan()
	in.CareDetails = &CareDetails{PainLevel: intPtr(11)}
	_, err := svc.Create(ctx, KindENT, in)
	verr, ok := apperr.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	found := false
	for _, f := range verr.Fields {
		if strings.Contains(f.Field, "painLevel") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected painLevel cited, got %v", verr.Fields)
	}

	in = entPlan()
	in.CareDetails = &CareDetails{PainLevel: intPtr(5)}
	p, err := svc.Create(ctx, KindENT, in)
	if err != nil {
		t.Fatalf("create with valid pain level failed: %v", err)
	}
	if p.CareDetails == nil || p.CareDetails.PainLevel == nil || *p.CareDetails.PainLevel != 5 {
		t.Error("pain level not stored")
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*Plan)
		field  string
	}{
		{"missing patient id", func(p *Plan) { p.PatientID = "" }, "patientId"},
		{"short patient name", func(p *Plan) { p.PatientName = "J" }, "patientName"},
		{"short instructions", func(p *Plan) { p.Instructions = "too short" }, "instructions"},
		{"bad operation type", func(p *Plan) { p.OperationType = strPtr("mid-operation") }, "operationType"},
		{"missing surgery type", func(p *Plan) { p.SurgeryType = nil }, "surgeryType"},
		{"bad status", func(p *Plan) { p.Status = "paused" }, "status"},
		{"bad priority", func(p *Plan) { p.Priority = "critical" }, "priority"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := entPlan()
			tc.mutate(in)
			_, err := svc.Create(context.Background(), KindENT, in)
			verr, ok := apperr.AsValidation(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field %q cited, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestCreateRejectsCrossKindFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := entPlan()
	in.CareDetails = &CareDetails{TrimesterSymptoms: &TrimesterSymptoms{Nausea: "mild"}}
	if _, err := svc.Create(ctx, KindENT, in); err == nil {
		t.Error("ENT plan with obstetrics care details should fail")
	}

	ob := obstetricsPlan()
	ob.CareDetails = &CareDetails{PainLevel: intPtr(3)}
	if _, err := svc.Create(ctx, KindObstetrics, ob); err == nil {
		t.Error("obstetrics plan with ENT care details should fail")
	}

	ob = obstetricsPlan()
	ob.SurgeryType = strPtr("Tonsillectomy")
	if _, err := svc.Create(ctx, KindObstetrics, ob); err == nil {
		t.Error("obstetrics plan with a surgery type should fail")
	}
}

func TestCreateValidatesGestationalWeek(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	ob := obstetricsPlan()
	ob.GestationalWeek = intPtr(43)
	if _, err := svc.Create(ctx, KindObstetrics, ob); err == nil {
		t.Error("gestational week 43 should fail")
	}

	ob = obstetricsPlan()
	ob.GestationalWeek = intPtr(40)
	if _, err := svc.Create(ctx, KindObstetrics, ob); err != nil {
		t.Errorf("gestational week 40 should pass: %v", err)
	}
}

// -- List --

func TestListPagination(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		in := entPlan()
		in.PatientName = fmt.Sprintf("Patient %02d", i+1)
		if _, err := svc.Create(ctx, KindENT, in); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		time.Sleep(time.Millisecond)
	}

	// Page 2 of 10, oldest first, holds records 11 through 20.
	plans, total, err := svc.List(ctx, KindENT, Filter{}, "createdAt", "asc", 10, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(plans) != 10 {
		t.Fatalf("page size = %d, want 10", len(plans))
	}
	if plans[0].PatientName != "Patient 11" || plans[9].PatientName != "Patient 20" {
		t.Errorf("page holds %s..%s, want Patient 11..Patient 20",
			plans[0].PatientName, plans[9].PatientName)
	}
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	urgent := entPlan()
	urgent.Priority = PriorityUrgent
	if _, err := svc.Create(ctx, KindENT, urgent); err != nil {
		t.Fatal(err)
	}
	pre := entPlan()
	pre.OperationType = strPtr("pre-operation")
	pre.PatientID = "PAT999999ZZZ"
	if _, err := svc.Create(ctx, KindENT, pre); err != nil {
		t.Fatal(err)
	}

	plans, total, err := svc.List(ctx, KindENT, Filter{Priority: PriorityUrgent}, "", "", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(plans) != 1 || plans[0].Priority != PriorityUrgent {
		t.Errorf("priority filter returned %d plans", total)
	}

	plans, total, err = svc.List(ctx, KindENT, Filter{Variant: "pre-operation"}, "", "", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(plans) != 1 || *plans[0].OperationType != "pre-operation" {
		t.Errorf("variant filter returned %d plans", total)
	}

	_, total, err = svc.List(ctx, KindENT, Filter{PatientID: "PAT999999ZZZ"}, "", "", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("patient filter returned %d plans, want 1", total)
	}
}

func TestListSortAllowList(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, _, err := svc.List(ctx, KindENT, Filter{}, "priority", "asc", 10, 0); err != nil {
		t.Fatal(err)
	}
	if repo.lastSortCol != "priority" {
		t.Errorf("sort column = %q, want priority", repo.lastSortCol)
	}

	// Anything outside the allow-list falls back to created_at.
	if _, _, err := svc.List(ctx, KindENT, Filter{}, "password_hash; DROP TABLE users", "asc", 10, 0); err != nil {
		t.Fatal(err)
	}
	if repo.lastSortCol != "created_at" {
		t.Errorf("sort column = %q, want created_at fallback", repo.lastSortCol)
	}
}

// -- Update / Delete --

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindENT, entPlan())
	if err != nil {
		t.Fatal(err)
	}

	high := PriorityHigh
	updated, err := svc.Update(ctx, KindENT, p.ID, &Update{Priority: &high})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Priority != PriorityHigh {
		t.Errorf("priority = %q, want high", updated.Priority)
	}
	if updated.PatientName != p.PatientName || updated.Instructions != p.Instructions ||
		updated.Status != p.Status || *updated.SurgeryType != *p.SurgeryType {
		t.Error("unrelated fields changed on partial update")
	}
}

func TestUpdateReplacesCareDetailsWholesale(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := entPlan()
	in.CareDetails = &CareDetails{
		PainLevel:       intPtr(7),
		BreathingIssues: strPtr("moderate"),
	}
	p, err := svc.Create(ctx, KindENT, in)
	if err != nil {
		t.Fatal(err)
	}

	// A partial careDetails replaces the whole block; breathingIssues is
	// cleared, not kept.
	updated, err := svc.Update(ctx, KindENT, p.ID, &Update{
		CareDetails: &CareDetails{PainLevel: intPtr(2)},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if *updated.CareDetails.PainLevel != 2 {
		t.Errorf("pain level = %d, want 2", *updated.CareDetails.PainLevel)
	}
	if updated.CareDetails.BreathingIssues != nil {
		t.Error("breathing issues should be cleared by wholesale replace")
	}
}

func TestUpdateValidates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindENT, entPlan())
	if err != nil {
		t.Fatal(err)
	}

	bad := "paused"
	if _, err := svc.Update(ctx, KindENT, p.ID, &Update{Status: &bad}); err == nil {
		t.Error("invalid status should fail")
	}
	week := 12
	if _, err := svc.Update(ctx, KindENT, p.ID, &Update{GestationalWeek: &week}); err == nil {
		t.Error("gestational week on an ENT plan should fail")
	}
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newTestService()
	name := "Janet Doe"

	_, err := svc.Update(context.Background(), KindENT, uuid.New(), &Update{PatientName: &name})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteReturnsRemovedRecord(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindENT, entPlan())
	if err != nil {
		t.Fatal(err)
	}

	removed, err := svc.Delete(ctx, KindENT, p.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed.ID != p.ID {
		t.Error("delete should return the removed record")
	}

	if _, err := svc.Get(ctx, KindENT, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want not found", err)
	}
	if _, err := svc.Delete(ctx, KindENT, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete = %v, want not found", err)
	}
}

func TestKindsAreIsolated(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindENT, entPlan())
	if err != nil {
		t.Fatal(err)
	}

	// An ENT plan is invisible through the obstetrics store.
	if _, err := svc.Get(ctx, KindObstetrics, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-kind get = %v, want not found", err)
	}
}

// -- ListByPatient --

func TestListByPatientNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		in := entPlan()
		in.PatientName = fmt.Sprintf("Visit %d", i+1)
		if _, err := svc.Create(ctx, KindENT, in); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}
	other := entPlan()
	other.PatientID = "PAT999999ZZZ"
	if _, err := svc.Create(ctx, KindENT, other); err != nil {
		t.Fatal(err)
	}

	plans, err := svc.ListByPatient(ctx, KindENT, "PAT123456ABC")
	if err != nil {
		t.Fatalf("list by patient failed: %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("got %d plans, want 3", len(plans))
	}
	if plans[0].PatientName != "Visit 3" {
		t.Errorf("first plan = %q, want newest", plans[0].PatientName)
	}
}

// -- Breastfeeding log --

func TestAppendBreastfeedingLog(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindObstetrics, obstetricsPlan())
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.AppendBreastfeedingLog(ctx, p.ID, 20, "left", "settled quickly")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	logs := updated.CareDetails.PostnatalRecovery.BreastfeedingLogs
	if len(logs) != 1 {
		t.Fatalf("got %d log entries, want 1", len(logs))
	}
	if logs[0].Duration != 20 || logs[0].Side != "left" {
		t.Errorf("unexpected entry: %+v", logs[0])
	}
	if logs[0].Date.IsZero() {
		t.Error("entry should be timestamped")
	}
}

func TestAppendBreastfeedingLogValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindObstetrics, obstetricsPlan())
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		duration int
		side     string
		notes    string
	}{
		{"zero duration", 0, "left", ""},
		{"too long", 121, "left", ""},
		{"bad side", 20, "middle", ""},
		{"long notes", 20, "both", strings.Repeat("x", 501)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AppendBreastfeedingLog(ctx, p.ID, tc.duration, tc.side, tc.notes)
			if _, ok := apperr.AsValidation(err); !ok {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAppendBreastfeedingLogMissing(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AppendBreastfeedingLog(context.Background(), uuid.New(), 20, "left", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAppendBreastfeedingLogConcurrent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, KindObstetrics, obstetricsPlan())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, side := range []string{"left", "right"} {
		wg.Add(1)
		go func(side string) {
			defer wg.Done()
			if _, err := svc.AppendBreastfeedingLog(ctx, p.ID, 15, side, ""); err != nil {
				errs <- err
			}
		}(side)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent append failed: %v", err)
	}

	got, err := svc.Get(ctx, KindObstetrics, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	logs := got.CareDetails.PostnatalRecovery.BreastfeedingLogs
	if len(logs) != 2 {
		t.Fatalf("got %d log entries after concurrent appends, want 2", len(logs))
	}
}
