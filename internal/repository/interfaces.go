package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
)

// ClinicRepository manages the central tenant directory.
type ClinicRepository interface {
	Create(ctx context.Context, clinic *model.Clinic) error
	Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	List(ctx context.Context) ([]*model.Clinic, error)
	// SetDatabaseName assigns the tenant database name exactly once;
	// a second assignment is rejected.
	SetDatabaseName(ctx context.Context, id uuid.UUID, name string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// UserRepository manages central directory users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// DoctorMirrorRepository maintains the cross-tenant search mirror in
// the directory database.
type DoctorMirrorRepository interface {
	Upsert(ctx context.Context, mirror *model.DoctorMirror) error
	IncrementPatients(ctx context.Context, doctorID uuid.UUID, delta int) error
	Search(ctx context.Context, query string) ([]*model.DoctorMirror, error)
}

// DoctorRepository lives inside the active tenant database.
type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	List(ctx context.Context) ([]*model.Doctor, error)
	IncrementPatients(ctx context.Context, id uuid.UUID, delta int) error
}

// BranchRepository lives inside the active tenant database.
type BranchRepository interface {
	Create(ctx context.Context, branch *model.Branch) error
	Get(ctx context.Context, id uuid.UUID) (*model.Branch, error)
	List(ctx context.Context) ([]*model.Branch, error)
}

// WorkingHourRepository stores availability ranges. When no tenant is
// active the rows are the clinic-wide defaults in the directory
// database; inside a tenant they belong to that clinic.
type WorkingHourRepository interface {
	ListForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID) ([]*model.WorkingHour, error)
	InsertBatch(ctx context.Context, hours []*model.WorkingHour) error
	// ReplaceForScope wholesale-replaces the (day, branch) batch:
	// delete then insert inside one transaction.
	ReplaceForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID, hours []*model.WorkingHour) error
}

// BreakHourRepository mirrors WorkingHourRepository for break ranges.
type BreakHourRepository interface {
	ListForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID) ([]*model.BreakHour, error)
	InsertBatch(ctx context.Context, breaks []*model.BreakHour) error
	ReplaceForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID, breaks []*model.BreakHour) error
}

// DoctorWorkingHourRepository stores per-doctor slot definitions
// inside the active tenant database.
type DoctorWorkingHourRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.DoctorWorkingHour, error)
	Update(ctx context.Context, hour *model.DoctorWorkingHour) error
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, day model.Weekday) ([]*model.DoctorWorkingHour, error)
	ReplaceForScope(ctx context.Context, doctorID uuid.UUID, day model.Weekday, branchID *uuid.UUID, hours []*model.DoctorWorkingHour) error
	SetBusy(ctx context.Context, id uuid.UUID, busy bool) error
}

// ReservationRepository stores bookings inside the active tenant
// database.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	Update(ctx context.Context, reservation *model.Reservation) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error
	List(ctx context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error)
	// CountLive counts scheduled/taken reservations on a working
	// hour, excluding one reservation id (uuid.Nil to exclude none).
	CountLive(ctx context.Context, workingHourID, excludeID uuid.UUID) (int, error)
}
