package schedule

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type fixture struct {
	svc          *Service
	workingHours *fakeWorkingHours
	breakHours   *fakeBreakHours
	doctorHours  *fakeDoctorHours
	doctors      *fakeDoctors
	reservations *fakeReservations
}

func newFixture() *fixture {
	f := &fixture{
		workingHours: newFakeWorkingHours(),
		breakHours:   newFakeBreakHours(),
		doctorHours:  newFakeDoctorHours(),
		doctors:      newFakeDoctors(),
		reservations: newFakeReservations(),
	}
	f.svc = NewService(f.workingHours, f.breakHours, f.doctorHours, f.doctors, f.reservations, nil)
	return f
}

func ranges(pairs ...string) []model.TimeRange {
	var out []model.TimeRange
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, model.TimeRange{StartTime: pairs[i], EndTime: pairs[i+1]})
	}
	return out
}

func TestSetWorkingHours(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	hours, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00", "14:00:00", "18:00:00"), false)
	require.NoError(t, err)
	assert.Len(t, hours, 2)
	assert.Equal(t, 0, hours[0].RangeOrder)
	assert.Equal(t, 1, hours[1].RangeOrder)
}

func TestSetWorkingHoursRejectsBadOrdering(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetWorkingHours(context.Background(), model.Monday, nil, ranges("12:00:00", "09:00:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = f.svc.SetWorkingHours(context.Background(), model.Monday, nil, ranges("09:00:00", "09:00:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestSetWorkingHoursRejectsOverlapWithinBatch(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetWorkingHours(context.Background(), model.Monday, nil,
		ranges("09:00:00", "12:00:00", "11:00:00", "14:00:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestSetWorkingHoursAllowsBoundaryTouchingRanges(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetWorkingHours(context.Background(), model.Monday, nil,
		ranges("09:00:00", "12:00:00", "12:00:00", "15:00:00"), false)
	assert.NoError(t, err)
}

func TestSetWorkingHoursRejectsExactDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.NoError(t, err)

	_, err = f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "already exist")
}

func TestSetWorkingHoursRejectsOverlapWithPersisted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.NoError(t, err)

	_, err = f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("11:00:00", "13:00:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestSetWorkingHoursScopesAreIndependent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	branch := uuid.New()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.NoError(t, err)

	// Same times on another day and on a branch scope do not clash.
	_, err = f.svc.SetWorkingHours(ctx, model.Tuesday, nil, ranges("09:00:00", "12:00:00"), false)
	assert.NoError(t, err)
	_, err = f.svc.SetWorkingHours(ctx, model.Monday, &branch, ranges("09:00:00", "12:00:00"), false)
	assert.NoError(t, err)
}

func TestSetWorkingHoursReplaceIsWholesale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.NoError(t, err)

	// Replacing with the identical set succeeds: the old batch is
	// deleted before the new one is checked in.
	_, err = f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), true)
	require.NoError(t, err)

	persisted, err := f.workingHours.ListForScope(ctx, model.Monday, nil)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestSetBreakHoursContainment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.NoError(t, err)

	// A break equal to its working range is accepted.
	_, err = f.svc.SetBreakHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	assert.NoError(t, err)
}

func TestSetBreakHoursRejectsBreakPastWorkingRange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "12:00:00"), false)
	require.NoError(t, err)

	// One minute past the working range end.
	_, err = f.svc.SetBreakHours(ctx, model.Monday, nil, ranges("11:00:00", "12:01:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestSetBreakHoursRejectsWithoutWorkingHours(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetBreakHours(context.Background(), model.Monday, nil, ranges("10:00:00", "10:30:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestSetBreakHoursRejectsMutualOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetWorkingHours(ctx, model.Monday, nil, ranges("09:00:00", "18:00:00"), false)
	require.NoError(t, err)

	_, err = f.svc.SetBreakHours(ctx, model.Monday, nil,
		ranges("12:00:00", "13:00:00", "12:30:00", "13:30:00"), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestSetDoctorWorkingHoursFixedPreSlices(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Salem", Fees: 150, IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	hours, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:        doctor.ID,
		Day:             model.Monday,
		Waterfall:       false,
		SessionDuration: "00:30:00",
		Ranges:          ranges("09:00:00", "12:00:00"),
	})
	require.NoError(t, err)

	require.Len(t, hours, 6)
	assert.Equal(t, "09:00:00", hours[0].StartTime)
	assert.Equal(t, "09:30:00", hours[0].EndTime)
	assert.Equal(t, "11:30:00", hours[5].StartTime)
	assert.Equal(t, "12:00:00", hours[5].EndTime)
	for _, h := range hours {
		assert.False(t, h.Waterfall)
		assert.Equal(t, 150.0, h.Fees, "fees default to the doctor's")
	}
}

func TestSetDoctorWorkingHoursWaterfallKeepsRangeWhole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Mona", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	hours, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:  doctor.ID,
		Day:       model.Friday,
		Waterfall: true,
		Ranges:    ranges("10:00:00", "16:00:00"),
	})
	require.NoError(t, err)

	require.Len(t, hours, 1)
	assert.True(t, hours[0].Waterfall)
	assert.Equal(t, "10:00:00", hours[0].StartTime)
	assert.Equal(t, "16:00:00", hours[0].EndTime)
}

func TestSetDoctorWorkingHoursUnknownDoctor(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SetDoctorWorkingHours(context.Background(), &SetDoctorHoursInput{
		DoctorID:  uuid.New(),
		Day:       model.Monday,
		Waterfall: true,
		Ranges:    ranges("09:00:00", "12:00:00"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateDoctorWorkingHourRejectsDayMove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Ali", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	created, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:  doctor.ID,
		Day:       model.Monday,
		Waterfall: true,
		Ranges:    ranges("09:00:00", "12:00:00"),
	})
	require.NoError(t, err)

	update := *created[0]
	update.Day = model.Tuesday
	_, err = f.svc.UpdateDoctorWorkingHour(ctx, &update)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestUpdateDoctorWorkingHourRejectsSiblingOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Ali", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	created, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:  doctor.ID,
		Day:       model.Monday,
		Waterfall: true,
		Ranges:    ranges("09:00:00", "12:00:00", "13:00:00", "16:00:00"),
	})
	require.NoError(t, err)

	update := *created[0]
	update.EndTime = "14:00:00"
	_, err = f.svc.UpdateDoctorWorkingHour(ctx, &update)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestUpdateDoctorWorkingHourInPlace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Ali", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	created, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:  doctor.ID,
		Day:       model.Monday,
		Waterfall: true,
		Ranges:    ranges("09:00:00", "12:00:00"),
	})
	require.NoError(t, err)

	update := *created[0]
	update.EndTime = "13:00:00"
	update.IsBusy = true
	got, err := f.svc.UpdateDoctorWorkingHour(ctx, &update)
	require.NoError(t, err)

	assert.Equal(t, "13:00:00", got.EndTime)
	assert.True(t, got.IsBusy)
	assert.Equal(t, model.Monday, got.Day)
}

func TestUpdateDoctorWorkingHourKeepsSessionDuration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Ali", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	created, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:        doctor.ID,
		Day:             model.Monday,
		SessionDuration: "00:30:00",
		Ranges:          ranges("09:00:00", "10:00:00"),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	// An update that leaves the duration unset must not clear it.
	update := *created[0]
	update.SessionDuration = nil
	update.Fees = 200
	got, err := f.svc.UpdateDoctorWorkingHour(ctx, &update)
	require.NoError(t, err)
	require.NotNil(t, got.SessionDuration)
	assert.Equal(t, "00:30:00", *got.SessionDuration)
	assert.Equal(t, 200.0, got.Fees)

	stored, err := f.doctorHours.Get(ctx, created[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SessionDuration)
	assert.Equal(t, "00:30:00", *stored.SessionDuration)

	// An explicit duration still takes.
	longer := "00:45:00"
	update = *stored
	update.SessionDuration = &longer
	got, err = f.svc.UpdateDoctorWorkingHour(ctx, &update)
	require.NoError(t, err)
	require.NotNil(t, got.SessionDuration)
	assert.Equal(t, "00:45:00", *got.SessionDuration)
}

func TestSetDoctorHourBusy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Ali", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	created, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:  doctor.ID,
		Day:       model.Monday,
		Waterfall: true,
		Ranges:    ranges("09:00:00", "12:00:00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetDoctorHourBusy(ctx, created[0].ID, true))

	stored, err := f.doctorHours.Get(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBusy)
	assert.Equal(t, "09:00:00", stored.StartTime, "times are untouched")

	err = f.svc.SetDoctorHourBusy(ctx, uuid.New(), true)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAvailableSlotsSkipsBusyAndLive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doctor := &model.Doctor{Name: "Dr. Ali", IsActive: true}
	require.NoError(t, f.doctors.Create(ctx, doctor))

	created, err := f.svc.SetDoctorWorkingHours(ctx, &SetDoctorHoursInput{
		DoctorID:        doctor.ID,
		Day:             model.Monday,
		SessionDuration: "01:00:00",
		Ranges:          ranges("09:00:00", "12:00:00"),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	require.NoError(t, f.doctorHours.SetBusy(ctx, created[0].ID, true))
	require.NoError(t, f.reservations.Create(ctx, &model.Reservation{
		DoctorID:            doctor.ID,
		DoctorWorkingHourID: created[1].ID,
		Status:              model.ReservationStatusScheduled,
	}))

	// 2026-09-07 is a Monday.
	slots, err := f.svc.AvailableSlots(ctx, doctor.ID, "2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, []model.Slot{{StartTime: "11:00:00", EndTime: "12:00:00"}}, slots)
}
