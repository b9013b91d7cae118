package model

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is the central directory record for one tenant. DatabaseName
// stays NULL until the tenant database is provisioned and is assigned
// exactly once; it is never reassigned afterwards.
type Clinic struct {
	Base
	Name         string  `db:"name" json:"name"`
	Phone        string  `db:"phone" json:"phone,omitempty"`
	DatabaseName *string `db:"database_name" json:"database_name,omitempty"`
	IsActive     bool    `db:"is_active" json:"is_active"`
}

// DirectoryRecord is the view of a clinic surfaced to collaborators.
type DirectoryRecord struct {
	ClinicID     uuid.UUID `json:"clinic_id"`
	DatabaseName string    `json:"database_name"`
	IsActive     bool      `json:"is_active"`
}

// User is a central directory user (clinic admins and platform staff).
type User struct {
	Base
	ClinicID     *uuid.UUID `db:"clinic_id" json:"clinic_id,omitempty"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
}

// DoctorMirror is the cross-tenant search mirror kept in the
// directory database. It is maintained best-effort from tenant data
// and may lag behind it.
type DoctorMirror struct {
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ClinicID      uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name          string    `db:"name" json:"name"`
	Specialty     string    `db:"specialty" json:"specialty"`
	PatientsCount int       `db:"patients_count" json:"patients_count"`
	SyncedAt      time.Time `db:"synced_at" json:"synced_at"`
}
