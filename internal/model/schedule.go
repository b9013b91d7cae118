package model

import (
	"time"

	"github.com/google/uuid"
)

// Weekday is the day a working or break range applies to.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdays = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// WeekdayOf maps a calendar date to its Weekday value.
func WeekdayOf(t time.Time) Weekday {
	return weekdays[t.Weekday()]
}

func (d Weekday) Valid() bool {
	for _, v := range weekdays {
		if v == d {
			return true
		}
	}
	return false
}

// TimeRange is a half-open [Start, End) interval within one day.
// Times are HH:MM:SS strings exchanged verbatim; comparisons use
// minutes since midnight and ignore seconds.
type TimeRange struct {
	StartTime string `db:"start_time" json:"start_time" binding:"required,timehhmmss"`
	EndTime   string `db:"end_time" json:"end_time" binding:"required,timehhmmss"`
}

// Slot is one bookable unit produced by the slot generator.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// WorkingHour is one availability range for a (day, branch) scope.
// Clinic-wide defaults live in the directory database; per-doctor
// entries live inside the tenant database.
type WorkingHour struct {
	Base
	Day        Weekday    `db:"day" json:"day"`
	StartTime  string     `db:"start_time" json:"start_time"`
	EndTime    string     `db:"end_time" json:"end_time"`
	RangeOrder int        `db:"range_order" json:"range_order"`
	BranchID   *uuid.UUID `db:"branch_id" json:"branch_id,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
}

// BreakHour must lie fully inside some WorkingHour range for the
// same (day, branch) scope.
type BreakHour struct {
	Base
	Day        Weekday    `db:"day" json:"day"`
	StartTime  string     `db:"start_time" json:"start_time"`
	EndTime    string     `db:"end_time" json:"end_time"`
	RangeOrder int        `db:"range_order" json:"range_order"`
	BranchID   *uuid.UUID `db:"branch_id" json:"branch_id,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
}

// DoctorWorkingHour is a per-doctor, per-day, per-branch slot
// definition. Waterfall rows hold one open range the doctor
// self-paces inside; fixed rows are pre-sliced session-length units.
// PatientsLimit is informational and not enforced at admission.
type DoctorWorkingHour struct {
	Base
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Day             Weekday    `db:"day" json:"day"`
	StartTime       string     `db:"start_time" json:"start_time"`
	EndTime         string     `db:"end_time" json:"end_time"`
	BranchID        *uuid.UUID `db:"branch_id" json:"branch_id,omitempty"`
	Waterfall       bool       `db:"waterfall" json:"waterfall"`
	SessionDuration *string    `db:"session_duration" json:"session_duration,omitempty"`
	PatientsLimit   int        `db:"patients_limit" json:"patients_limit"`
	IsBusy          bool       `db:"is_busy" json:"is_busy"`
	Fees            float64    `db:"fees" json:"fees"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	ServiceIDs      []uuid.UUID `db:"-" json:"service_ids,omitempty"`
}
