package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinical-case-server/internal/models"
)

func (e *testEnv) openCaseWithAppointment(t *testing.T) (*models.Case, *models.Appointment) {
	t.Helper()
	ctx := context.Background()
	e.addUser("patient-1", models.RolePatient)
	e.addUser("doctor-1", models.RoleDoctor)

	c, err := e.caseSvc.OpenCase(ctx, "patient-1")
	require.NoError(t, err)

	appt, err := e.apptSvc.CreateAppointment(ctx, c.ID, "patient-1", AppointmentDetails{
		ScheduledAt: e.clock.Now().Add(24 * time.Hour),
		Description: "persistent headache",
	})
	require.NoError(t, err)
	return c, appt
}

func TestCreateAppointment_StartsWaiting(t *testing.T) {
	env := newTestEnv()
	_, appt := env.openCaseWithAppointment(t)

	assert.Equal(t, models.ApprovalWaiting, appt.ApprovalStatus)
	assert.False(t, appt.Cancelled)
	assert.False(t, appt.Attended)
	assert.Equal(t, env.clock.Now(), appt.CreatedAt)
}

func TestCreateAppointment_RejectsPastSchedule(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser("patient-1", models.RolePatient)

	c, err := env.caseSvc.OpenCase(ctx, "patient-1")
	require.NoError(t, err)

	_, err = env.apptSvc.CreateAppointment(ctx, c.ID, "patient-1", AppointmentDetails{
		ScheduledAt: env.clock.Now().Add(-time.Minute),
	})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestCreateAppointment_RejectsClosedCase(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser("patient-1", models.RolePatient)

	c, err := env.caseSvc.OpenCase(ctx, "patient-1")
	require.NoError(t, err)
	_, err = env.caseSvc.CloseCase(ctx, c.ID)
	require.NoError(t, err)

	_, err = env.apptSvc.CreateAppointment(ctx, c.ID, "patient-1", AppointmentDetails{
		ScheduledAt: env.clock.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrCaseNotOpen)
}

func TestSetApprovalStatus_TransitionMatrix(t *testing.T) {
	doctor := Principal{UserID: "doctor-1", Role: models.RoleDoctor}
	ctx := context.Background()

	t.Run("patient may not approve", func(t *testing.T) {
		env := newTestEnv()
		_, appt := env.openCaseWithAppointment(t)
		patient := Principal{UserID: "patient-1", Role: models.RolePatient}
		_, err := env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, patient)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("waiting to approved and re-evaluation both ways", func(t *testing.T) {
		env := newTestEnv()
		_, appt := env.openCaseWithAppointment(t)

		updated, err := env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, doctor)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalApproved, updated.ApprovalStatus)

		updated, err = env.apptSvc.SetApprovalStatus(ctx, updated.ID, models.ApprovalDenied, doctor)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalDenied, updated.ApprovalStatus)

		updated, err = env.apptSvc.SetApprovalStatus(ctx, updated.ID, models.ApprovalApproved, doctor)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalApproved, updated.ApprovalStatus)
	})

	t.Run("no way back to waiting", func(t *testing.T) {
		env := newTestEnv()
		_, appt := env.openCaseWithAppointment(t)

		_, err := env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalDenied, doctor)
		require.NoError(t, err)
		_, err = env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalWaiting, doctor)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("visit pins approval", func(t *testing.T) {
		env := newTestEnv()
		_, appt := env.openCaseWithAppointment(t)

		_, err := env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, doctor)
		require.NoError(t, err)
		_, err = env.apptSvc.CreateVisit(ctx, appt.ID)
		require.NoError(t, err)

		_, err = env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalDenied, doctor)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		env := newTestEnv()
		_, appt := env.openCaseWithAppointment(t)
		_, err := env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalStatus("maybe"), doctor)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestCancelAppointment_IsIdempotentAndTerminal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, appt := env.openCaseWithAppointment(t)
	doctor := Principal{UserID: "doctor-1", Role: models.RoleDoctor}

	cancelled, err := env.apptSvc.CancelAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	firstVersion := cancelled.Version

	// Second cancel succeeds without mutating anything.
	again, err := env.apptSvc.CancelAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, again.Cancelled)
	assert.Equal(t, firstVersion, again.Version)

	// Once cancelled, approval changes and visits are rejected.
	_, err = env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, doctor)
	assert.ErrorIs(t, err, ErrAppointmentCancelled)
	_, err = env.apptSvc.CreateVisit(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrAppointmentCancelled)
}

func TestCancelAppointment_UnknownID(t *testing.T) {
	env := newTestEnv()
	_, err := env.apptSvc.CancelAppointment(context.Background(), "no-such-appointment")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateVisit_PreconditionGatedOneShot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, appt := env.openCaseWithAppointment(t)
	doctor := Principal{UserID: "doctor-1", Role: models.RoleDoctor}

	// Waiting appointment: no visit yet.
	_, err := env.apptSvc.CreateVisit(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, doctor)
	require.NoError(t, err)

	visit, err := env.apptSvc.CreateVisit(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, visit.AppointmentID)

	_, err = env.apptSvc.CreateVisit(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrVisitAlreadyExists)
}

func TestUpdateVisit_PartialUpdateAndAttendedMonotonic(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, appt := env.openCaseWithAppointment(t)
	doctor := Principal{UserID: "doctor-1", Role: models.RoleDoctor}

	// No visit yet.
	notes := "patient reports improvement"
	_, err := env.apptSvc.UpdateVisit(ctx, appt.ID, VisitDetails{Notes: &notes})
	assert.ErrorIs(t, err, ErrNoVisit)

	_, err = env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, doctor)
	require.NoError(t, err)
	_, err = env.apptSvc.CreateVisit(ctx, appt.ID)
	require.NoError(t, err)

	bpm := 72
	visit, err := env.apptSvc.UpdateVisit(ctx, appt.ID, VisitDetails{Notes: &notes, BPM: &bpm})
	require.NoError(t, err)
	assert.Equal(t, notes, visit.Notes)
	require.NotNil(t, visit.BPM)
	assert.Equal(t, 72, *visit.BPM)

	// Omitted fields keep their values.
	outcome := "follow-up in two weeks"
	attended := true
	visit, err = env.apptSvc.UpdateVisit(ctx, appt.ID, VisitDetails{Outcome: &outcome, Attended: &attended})
	require.NoError(t, err)
	assert.Equal(t, notes, visit.Notes)
	assert.Equal(t, outcome, visit.Outcome)

	updated, err := env.apptSvc.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, updated.Attended)

	// Attended never reverts.
	notAttended := false
	_, err = env.apptSvc.UpdateVisit(ctx, appt.ID, VisitDetails{Attended: &notAttended})
	require.NoError(t, err)
	updated, err = env.apptSvc.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, updated.Attended)
}

func TestAppointmentFlow_ScenarioA(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctor := Principal{UserID: "doctor-1", Role: models.RoleDoctor}

	_, appt := env.openCaseWithAppointment(t)
	assert.Equal(t, models.ApprovalWaiting, appt.ApprovalStatus)

	_, err := env.apptSvc.SetApprovalStatus(ctx, appt.ID, models.ApprovalApproved, doctor)
	require.NoError(t, err)

	_, err = env.apptSvc.CreateVisit(ctx, appt.ID)
	require.NoError(t, err)
	_, err = env.apptSvc.CreateVisit(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrVisitAlreadyExists)
}

func TestAppointmentUpdate_ConcurrentTransitionConflicts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, appt := env.openCaseWithAppointment(t)

	stale, err := env.appts.FindByID(ctx, appt.ID)
	require.NoError(t, err)

	_, err = env.apptSvc.CancelAppointment(ctx, appt.ID)
	require.NoError(t, err)

	stale.ApprovalStatus = models.ApprovalApproved
	err = env.appts.UpdateVersioned(ctx, stale)
	assert.ErrorIs(t, err, ErrConflict)
}
