package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusTaken     ReservationStatus = "taken"
	ReservationStatusScheduled ReservationStatus = "scheduled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusTaken,
		ReservationStatusScheduled, ReservationStatusCancelled:
		return true
	}
	return false
}

// Live reports whether the status blocks other bookings on an
// exclusive (waterfall) working hour.
func (s ReservationStatus) Live() bool {
	return s == ReservationStatusScheduled || s == ReservationStatusTaken
}

// Reservation lives inside a tenant database. Exclusive is the
// denormalized waterfall flag of its working hour; the tenant schema
// carries a partial unique index over (doctor_working_hour_id) for
// live exclusive rows, the storage-level backstop for the
// check-then-act booking race.
type Reservation struct {
	Base
	DoctorID            uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	DoctorWorkingHourID uuid.UUID         `db:"doctor_working_hour_id" json:"doctor_working_hour_id"`
	PatientName         string            `db:"patient_name" json:"patient_name"`
	PatientPhone        string            `db:"patient_phone" json:"patient_phone,omitempty"`
	Date                string            `db:"date" json:"date"`
	ReservedAt          time.Time         `db:"reserved_at" json:"reserved_at"`
	Status              ReservationStatus `db:"status" json:"status"`
	Fees                float64           `db:"fees" json:"fees"`
	Paid                bool              `db:"paid" json:"paid"`
	MedicalStatus       *string           `db:"medical_status" json:"medical_status,omitempty"`
	Exclusive           bool              `db:"exclusive" json:"-"`
}

// ReservationFilters narrows reservation listings.
type ReservationFilters struct {
	DoctorID            uuid.UUID
	DoctorWorkingHourID uuid.UUID
	Status              ReservationStatus
	Date                string
}
