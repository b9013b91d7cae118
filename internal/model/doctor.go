package model

import "github.com/google/uuid"

// Doctor lives inside a tenant database.
type Doctor struct {
	Base
	Name          string  `db:"name" json:"name"`
	Specialty     string  `db:"specialty" json:"specialty"`
	Phone         string  `db:"phone" json:"phone,omitempty"`
	Fees          float64 `db:"fees" json:"fees"`
	PatientsCount int     `db:"patients_count" json:"patients_count"`
	IsActive      bool    `db:"is_active" json:"is_active"`
}

// Branch is a clinic location inside a tenant database. Working and
// break hours may be scoped to a branch; a NULL branch means
// clinic-wide.
type Branch struct {
	Base
	Name     string `db:"name" json:"name"`
	Address  string `db:"address" json:"address,omitempty"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// ClinicService is a bookable service offered by the clinic, linked
// to doctor working hours through an association table.
type ClinicService struct {
	Base
	Name     string  `db:"name" json:"name"`
	Fees     float64 `db:"fees" json:"fees"`
	IsActive bool    `db:"is_active" json:"is_active"`
}

// DoctorServiceLink associates a doctor working hour with a service.
type DoctorServiceLink struct {
	DoctorWorkingHourID uuid.UUID `db:"doctor_working_hour_id" json:"doctor_working_hour_id"`
	ServiceID           uuid.UUID `db:"service_id" json:"service_id"`
}
