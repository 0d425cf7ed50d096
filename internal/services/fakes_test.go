package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
)

// In-memory repository fakes. They mirror the gorm implementations' observable
// behavior: not-found wrapping, version-checked updates, copy-out semantics.

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeUserRepo struct {
	users    map[string]*models.User
	patients map[string]*models.PatientProfile
	doctors  map[string]*models.DoctorProfile
	nurses   map[string]*models.NurseProfile

	vaccinations map[string][]models.Vaccination
	testResults  map[string][]models.TestResult
	triage       map[string][]models.TriageRequest
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:        map[string]*models.User{},
		patients:     map[string]*models.PatientProfile{},
		doctors:      map[string]*models.DoctorProfile{},
		nurses:       map[string]*models.NurseProfile{},
		vaccinations: map[string][]models.Vaccination{},
		testResults:  map[string][]models.TestResult{},
		triage:       map[string][]models.TriageRequest{},
	}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user by email: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *models.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) PatientProfile(_ context.Context, userID string) (*models.PatientProfile, error) {
	p, ok := r.patients[userID]
	if !ok {
		return nil, fmt.Errorf("patient profile %s: %w", userID, repository.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (r *fakeUserRepo) PatientProfileDetailed(ctx context.Context, userID string) (*models.PatientProfile, error) {
	p, err := r.PatientProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Vaccinations = append([]models.Vaccination(nil), r.vaccinations[userID]...)
	p.TestResults = append([]models.TestResult(nil), r.testResults[userID]...)
	return p, nil
}

func (r *fakeUserRepo) DoctorProfile(_ context.Context, userID string) (*models.DoctorProfile, error) {
	d, ok := r.doctors[userID]
	if !ok {
		return nil, fmt.Errorf("doctor profile %s: %w", userID, repository.ErrNotFound)
	}
	copied := *d
	return &copied, nil
}

func (r *fakeUserRepo) NurseProfile(_ context.Context, userID string) (*models.NurseProfile, error) {
	n, ok := r.nurses[userID]
	if !ok {
		return nil, fmt.Errorf("nurse profile %s: %w", userID, repository.ErrNotFound)
	}
	copied := *n
	return &copied, nil
}

func (r *fakeUserRepo) NurseProfileDetailed(ctx context.Context, userID string) (*models.NurseProfile, error) {
	n, err := r.NurseProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	n.TriageRequests = append([]models.TriageRequest(nil), r.triage[userID]...)
	return n, nil
}

func (r *fakeUserRepo) CreatePatientProfile(_ context.Context, profile *models.PatientProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	copied := *profile
	r.patients[profile.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) CreateDoctorProfile(_ context.Context, profile *models.DoctorProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	copied := *profile
	r.doctors[profile.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) CreateNurseProfile(_ context.Context, profile *models.NurseProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	copied := *profile
	r.nurses[profile.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) SavePatientProfile(_ context.Context, profile *models.PatientProfile) error {
	copied := *profile
	copied.Vaccinations = nil
	copied.TestResults = nil
	copied.Cases = nil
	copied.AccessGrants = nil
	r.patients[profile.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) SaveDoctorProfile(_ context.Context, profile *models.DoctorProfile) error {
	copied := *profile
	r.doctors[profile.UserID] = &copied
	return nil
}

type fakeCaseRepo struct {
	cases    map[string]*models.Case
	messages map[string][]models.CaseMessage
	triage   map[string]*models.TriageRequest
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{
		cases:    map[string]*models.Case{},
		messages: map[string][]models.CaseMessage{},
		triage:   map[string]*models.TriageRequest{},
	}
}

func (r *fakeCaseRepo) FindByID(_ context.Context, id string) (*models.Case, error) {
	c, ok := r.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, repository.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCaseRepo) Create(_ context.Context, c *models.Case) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	copied := *c
	r.cases[c.ID] = &copied
	return nil
}

func (r *fakeCaseRepo) UpdateVersioned(_ context.Context, c *models.Case) error {
	stored, ok := r.cases[c.ID]
	if !ok || stored.Version != c.Version {
		return fmt.Errorf("case %s: %w", c.ID, repository.ErrConflict)
	}
	c.Version++
	copied := *c
	r.cases[c.ID] = &copied
	return nil
}

func (r *fakeCaseRepo) ListByPatient(_ context.Context, patientUserID string, state *models.CaseState) ([]models.Case, error) {
	var out []models.Case
	for _, c := range r.cases {
		if c.PatientUserID != patientUserID {
			continue
		}
		if state != nil && c.State != *state {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCaseRepo) ListByDoctor(_ context.Context, doctorUserID string, state *models.CaseState) ([]models.Case, error) {
	var out []models.Case
	for _, c := range r.cases {
		if c.DoctorUserID == nil || *c.DoctorUserID != doctorUserID {
			continue
		}
		if state != nil && c.State != *state {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCaseRepo) DoctorAssignedToPatient(_ context.Context, doctorUserID, patientUserID string) (bool, error) {
	for _, c := range r.cases {
		if c.PatientUserID == patientUserID && c.DoctorUserID != nil && *c.DoctorUserID == doctorUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCaseRepo) CreateMessage(_ context.Context, msg *models.CaseMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	r.messages[msg.CaseID] = append(r.messages[msg.CaseID], *msg)
	return nil
}

func (r *fakeCaseRepo) ListMessages(_ context.Context, caseID string) ([]models.CaseMessage, error) {
	return append([]models.CaseMessage(nil), r.messages[caseID]...), nil
}

func (r *fakeCaseRepo) CreateTriageRequest(_ context.Context, req *models.TriageRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	copied := *req
	r.triage[req.ID] = &copied
	return nil
}

func (r *fakeCaseRepo) FindTriageRequest(_ context.Context, id string) (*models.TriageRequest, error) {
	req, ok := r.triage[id]
	if !ok {
		return nil, fmt.Errorf("triage request %s: %w", id, repository.ErrNotFound)
	}
	copied := *req
	return &copied, nil
}

func (r *fakeCaseRepo) SaveTriageRequest(_ context.Context, req *models.TriageRequest) error {
	copied := *req
	r.triage[req.ID] = &copied
	return nil
}

type fakeAppointmentRepo struct {
	appts  map[string]*models.Appointment
	visits map[string]*models.AppointmentVisit // keyed by appointment id
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appts:  map[string]*models.Appointment{},
		visits: map[string]*models.AppointmentVisit{},
	}
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s: %w", id, repository.ErrNotFound)
	}
	copied := *a
	if v, ok := r.visits[id]; ok {
		visitCopy := *v
		copied.Visit = &visitCopy
	}
	return &copied, nil
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	copied := *appt
	copied.Visit = nil
	r.appts[appt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) UpdateVersioned(_ context.Context, appt *models.Appointment) error {
	stored, ok := r.appts[appt.ID]
	if !ok || stored.Version != appt.Version {
		return fmt.Errorf("appointment %s: %w", appt.ID, repository.ErrConflict)
	}
	appt.Version++
	copied := *appt
	copied.Visit = nil
	r.appts[appt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) ListByCase(_ context.Context, caseID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for id, a := range r.appts {
		if a.CaseID != caseID {
			continue
		}
		copied := *a
		if v, ok := r.visits[id]; ok {
			visitCopy := *v
			copied.Visit = &visitCopy
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *fakeAppointmentRepo) CreateVisit(_ context.Context, visit *models.AppointmentVisit) error {
	if visit.ID == "" {
		visit.ID = uuid.New().String()
	}
	copied := *visit
	r.visits[visit.AppointmentID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) FindVisit(_ context.Context, appointmentID string) (*models.AppointmentVisit, error) {
	v, ok := r.visits[appointmentID]
	if !ok {
		return nil, fmt.Errorf("visit for appointment %s: %w", appointmentID, repository.ErrNotFound)
	}
	copied := *v
	return &copied, nil
}

func (r *fakeAppointmentRepo) SaveVisitAndAppointment(ctx context.Context, visit *models.AppointmentVisit, appt *models.Appointment) error {
	if err := r.UpdateVersioned(ctx, appt); err != nil {
		return err
	}
	copied := *visit
	r.visits[visit.AppointmentID] = &copied
	return nil
}

type fakeGrantRepo struct {
	grants map[string]*models.AccessGrant
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: map[string]*models.AccessGrant{}}
}

func (r *fakeGrantRepo) Create(_ context.Context, grant *models.AccessGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}
	copied := *grant
	r.grants[grant.ID] = &copied
	return nil
}

func (r *fakeGrantRepo) FindByID(_ context.Context, id string) (*models.AccessGrant, error) {
	g, ok := r.grants[id]
	if !ok {
		return nil, fmt.Errorf("access grant %s: %w", id, repository.ErrNotFound)
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGrantRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.grants[id]; !ok {
		return fmt.Errorf("access grant %s: %w", id, repository.ErrNotFound)
	}
	delete(r.grants, id)
	return nil
}

func (r *fakeGrantRepo) ListActive(_ context.Context, patientUserID string, asOf time.Time) ([]models.AccessGrant, error) {
	var out []models.AccessGrant
	for _, g := range r.grants {
		if g.PatientUserID == patientUserID && g.ActiveAt(asOf) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *fakeGrantRepo) HasActive(_ context.Context, patientUserID, grantedUserID string, asOf time.Time) (bool, error) {
	for _, g := range r.grants {
		if g.PatientUserID == patientUserID && g.GrantedUserID == grantedUserID && g.ActiveAt(asOf) {
			return true, nil
		}
	}
	return false, nil
}
