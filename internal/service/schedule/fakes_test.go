package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

func scopeKey(day model.Weekday, branchID *uuid.UUID) string {
	if branchID == nil {
		return fmt.Sprintf("%s/-", day)
	}
	return fmt.Sprintf("%s/%s", day, branchID)
}

type fakeWorkingHours struct {
	byScope map[string][]*model.WorkingHour
}

func newFakeWorkingHours() *fakeWorkingHours {
	return &fakeWorkingHours{byScope: make(map[string][]*model.WorkingHour)}
}

func (f *fakeWorkingHours) ListForScope(_ context.Context, day model.Weekday, branchID *uuid.UUID) ([]*model.WorkingHour, error) {
	return f.byScope[scopeKey(day, branchID)], nil
}

func (f *fakeWorkingHours) InsertBatch(_ context.Context, hours []*model.WorkingHour) error {
	for _, h := range hours {
		h.ID = uuid.New()
		key := scopeKey(h.Day, h.BranchID)
		f.byScope[key] = append(f.byScope[key], h)
	}
	return nil
}

func (f *fakeWorkingHours) ReplaceForScope(_ context.Context, day model.Weekday, branchID *uuid.UUID, hours []*model.WorkingHour) error {
	key := scopeKey(day, branchID)
	f.byScope[key] = nil
	for _, h := range hours {
		h.ID = uuid.New()
		f.byScope[key] = append(f.byScope[key], h)
	}
	return nil
}

type fakeBreakHours struct {
	byScope map[string][]*model.BreakHour
}

func newFakeBreakHours() *fakeBreakHours {
	return &fakeBreakHours{byScope: make(map[string][]*model.BreakHour)}
}

func (f *fakeBreakHours) ListForScope(_ context.Context, day model.Weekday, branchID *uuid.UUID) ([]*model.BreakHour, error) {
	return f.byScope[scopeKey(day, branchID)], nil
}

func (f *fakeBreakHours) InsertBatch(_ context.Context, breaks []*model.BreakHour) error {
	for _, b := range breaks {
		b.ID = uuid.New()
		key := scopeKey(b.Day, b.BranchID)
		f.byScope[key] = append(f.byScope[key], b)
	}
	return nil
}

func (f *fakeBreakHours) ReplaceForScope(_ context.Context, day model.Weekday, branchID *uuid.UUID, breaks []*model.BreakHour) error {
	key := scopeKey(day, branchID)
	f.byScope[key] = nil
	for _, b := range breaks {
		b.ID = uuid.New()
		f.byScope[key] = append(f.byScope[key], b)
	}
	return nil
}

type fakeDoctorHours struct {
	rows map[uuid.UUID]*model.DoctorWorkingHour
}

func newFakeDoctorHours() *fakeDoctorHours {
	return &fakeDoctorHours{rows: make(map[uuid.UUID]*model.DoctorWorkingHour)}
}

func (f *fakeDoctorHours) Get(_ context.Context, id uuid.UUID) (*model.DoctorWorkingHour, error) {
	h, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("working hour", nil)
	}
	clone := *h
	return &clone, nil
}

func (f *fakeDoctorHours) Update(_ context.Context, hour *model.DoctorWorkingHour) error {
	if _, ok := f.rows[hour.ID]; !ok {
		return apperrors.NotFound("working hour", nil)
	}
	clone := *hour
	f.rows[hour.ID] = &clone
	return nil
}

func (f *fakeDoctorHours) ListForDoctor(_ context.Context, doctorID uuid.UUID, day model.Weekday) ([]*model.DoctorWorkingHour, error) {
	var out []*model.DoctorWorkingHour
	for _, h := range f.rows {
		if h.DoctorID == doctorID && (day == "" || h.Day == day) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeDoctorHours) ReplaceForScope(_ context.Context, doctorID uuid.UUID, day model.Weekday, branchID *uuid.UUID, hours []*model.DoctorWorkingHour) error {
	for id, h := range f.rows {
		if h.DoctorID == doctorID && h.Day == day && scopeKey(day, h.BranchID) == scopeKey(day, branchID) {
			delete(f.rows, id)
		}
	}
	for _, h := range hours {
		h.ID = uuid.New()
		clone := *h
		f.rows[h.ID] = &clone
	}
	return nil
}

func (f *fakeDoctorHours) SetBusy(_ context.Context, id uuid.UUID, busy bool) error {
	h, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("working hour", nil)
	}
	h.IsBusy = busy
	return nil
}

type fakeDoctors struct {
	rows map[uuid.UUID]*model.Doctor
}

func newFakeDoctors() *fakeDoctors {
	return &fakeDoctors{rows: make(map[uuid.UUID]*model.Doctor)}
}

func (f *fakeDoctors) Create(_ context.Context, doctor *model.Doctor) error {
	doctor.ID = uuid.New()
	f.rows[doctor.ID] = doctor
	return nil
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (f *fakeDoctors) Update(_ context.Context, doctor *model.Doctor) error {
	if _, ok := f.rows[doctor.ID]; !ok {
		return apperrors.NotFound("doctor", nil)
	}
	f.rows[doctor.ID] = doctor
	return nil
}

func (f *fakeDoctors) List(_ context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range f.rows {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDoctors) IncrementPatients(_ context.Context, id uuid.UUID, delta int) error {
	d, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("doctor", nil)
	}
	d.PatientsCount += delta
	return nil
}

type fakeReservations struct {
	rows map[uuid.UUID]*model.Reservation
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{rows: make(map[uuid.UUID]*model.Reservation)}
}

func (f *fakeReservations) Create(_ context.Context, r *model.Reservation) error {
	r.ID = uuid.New()
	clone := *r
	f.rows[r.ID] = &clone
	return nil
}

func (f *fakeReservations) Get(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("reservation", nil)
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReservations) Update(_ context.Context, r *model.Reservation) error {
	if _, ok := f.rows[r.ID]; !ok {
		return apperrors.NotFound("reservation", nil)
	}
	clone := *r
	f.rows[r.ID] = &clone
	return nil
}

func (f *fakeReservations) UpdateStatus(_ context.Context, id uuid.UUID, status model.ReservationStatus) error {
	r, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("reservation", nil)
	}
	r.Status = status
	return nil
}

func (f *fakeReservations) List(_ context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error) {
	var out []*model.Reservation
	for _, r := range f.rows {
		if filters.DoctorID != uuid.Nil && r.DoctorID != filters.DoctorID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservations) CountLive(_ context.Context, workingHourID, excludeID uuid.UUID) (int, error) {
	count := 0
	for _, r := range f.rows {
		if r.DoctorWorkingHourID == workingHourID && r.ID != excludeID && r.Status.Live() {
			count++
		}
	}
	return count, nil
}
