package services

import (
	"time"

	"go.uber.org/zap"

	"clinical-case-server/internal/models"
)

// testEnv wires every service onto shared in-memory fakes with a pinned clock.
type testEnv struct {
	clock  *fakeClock
	users  *fakeUserRepo
	cases  *fakeCaseRepo
	appts  *fakeAppointmentRepo
	grants *fakeGrantRepo

	access     *AccessPolicy
	grantSvc   *GrantService
	caseSvc    *CaseService
	apptSvc    *AppointmentService
	profileSvc *ProfileService
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	env := &testEnv{
		clock:  &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		users:  newFakeUserRepo(),
		cases:  newFakeCaseRepo(),
		appts:  newFakeAppointmentRepo(),
		grants: newFakeGrantRepo(),
	}
	env.access = NewAccessPolicy(env.cases, env.grants, env.clock, logger)
	env.grantSvc = NewGrantService(env.grants, env.users, env.clock, logger)
	env.caseSvc = NewCaseService(env.cases, env.users, logger)
	env.apptSvc = NewAppointmentService(env.appts, env.cases, env.clock, logger)
	env.profileSvc = NewProfileService(env.users, logger)
	return env
}

// addUser registers a user and its role profile directly in the fakes.
func (e *testEnv) addUser(id string, role models.Role) *models.User {
	user := &models.User{Role: role, Email: id + "@example.com"}
	user.ID = id
	e.users.users[id] = user
	switch role {
	case models.RolePatient:
		e.users.patients[id] = &models.PatientProfile{UserID: id}
	case models.RoleDoctor:
		e.users.doctors[id] = &models.DoctorProfile{UserID: id}
	case models.RoleNurse:
		e.users.nurses[id] = &models.NurseProfile{UserID: id}
	}
	return user
}
