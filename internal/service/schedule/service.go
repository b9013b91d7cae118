package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
)

type Servicer interface {
	SetWorkingHours(ctx context.Context, day model.Weekday, branchID *uuid.UUID, ranges []model.TimeRange, replace bool) ([]*model.WorkingHour, error)
	SetBreakHours(ctx context.Context, day model.Weekday, branchID *uuid.UUID, ranges []model.TimeRange, replace bool) ([]*model.BreakHour, error)
	SetDoctorWorkingHours(ctx context.Context, input *SetDoctorHoursInput) ([]*model.DoctorWorkingHour, error)
	UpdateDoctorWorkingHour(ctx context.Context, hour *model.DoctorWorkingHour) (*model.DoctorWorkingHour, error)
	SetDoctorHourBusy(ctx context.Context, id uuid.UUID, busy bool) error
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]model.Slot, error)
}

// SetDoctorHoursInput declares one (doctor, day, branch) batch.
// Waterfall batches keep each range whole; fixed batches are
// pre-sliced into session-length rows.
type SetDoctorHoursInput struct {
	DoctorID        uuid.UUID
	Day             model.Weekday
	BranchID        *uuid.UUID
	Waterfall       bool
	SessionDuration string
	PatientsLimit   int
	Fees            float64
	ServiceIDs      []uuid.UUID
	Ranges          []model.TimeRange
}

type Service struct {
	workingHours repository.WorkingHourRepository
	breakHours   repository.BreakHourRepository
	doctorHours  repository.DoctorWorkingHourRepository
	doctors      repository.DoctorRepository
	reservations repository.ReservationRepository
	logger       *logger.Logger
}

func NewService(
	workingHours repository.WorkingHourRepository,
	breakHours repository.BreakHourRepository,
	doctorHours repository.DoctorWorkingHourRepository,
	doctors repository.DoctorRepository,
	reservations repository.ReservationRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		workingHours: workingHours,
		breakHours:   breakHours,
		doctorHours:  doctorHours,
		doctors:      doctors,
		reservations: reservations,
		logger:       log,
	}
}

// SetWorkingHours persists one (day, branch) batch of availability
// ranges. In append mode the batch is checked against the persisted
// scope: an exact duplicate is "already exists", any other overlap is
// a conflict. In replace mode the scope is rewritten wholesale.
func (s *Service) SetWorkingHours(ctx context.Context, day model.Weekday, branchID *uuid.UUID, ranges []model.TimeRange, replace bool) ([]*model.WorkingHour, error) {
	if !day.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid day %q", day), nil)
	}
	if len(ranges) == 0 {
		return nil, apperrors.InvalidInput("at least one range is required", nil)
	}

	if err := validateBatch(ranges); err != nil {
		return nil, err
	}

	if !replace {
		existing, err := s.workingHours.ListForScope(ctx, day, branchID)
		if err != nil {
			return nil, err
		}
		persisted := make([]model.TimeRange, len(existing))
		for i, h := range existing {
			persisted[i] = model.TimeRange{StartTime: h.StartTime, EndTime: h.EndTime}
		}
		if err := checkAgainstPersisted(ranges, persisted, "working hours"); err != nil {
			return nil, err
		}
	}

	hours := make([]*model.WorkingHour, len(ranges))
	for i, tr := range ranges {
		hours[i] = &model.WorkingHour{
			Day:        day,
			StartTime:  tr.StartTime,
			EndTime:    tr.EndTime,
			RangeOrder: i,
			BranchID:   branchID,
			IsActive:   true,
		}
	}

	if replace {
		if err := s.workingHours.ReplaceForScope(ctx, day, branchID, hours); err != nil {
			return nil, err
		}
	} else {
		if err := s.workingHours.InsertBatch(ctx, hours); err != nil {
			return nil, err
		}
	}
	return hours, nil
}

// SetBreakHours persists one (day, branch) batch of break ranges.
// Every break must lie fully inside some working range of the same
// scope; a break equal to its working range is legal.
func (s *Service) SetBreakHours(ctx context.Context, day model.Weekday, branchID *uuid.UUID, ranges []model.TimeRange, replace bool) ([]*model.BreakHour, error) {
	if !day.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid day %q", day), nil)
	}
	if len(ranges) == 0 {
		return nil, apperrors.InvalidInput("at least one range is required", nil)
	}

	if err := validateBatch(ranges); err != nil {
		return nil, err
	}

	working, err := s.workingHours.ListForScope(ctx, day, branchID)
	if err != nil {
		return nil, err
	}
	for _, tr := range ranges {
		inside, err := withinSomeWorkingRange(tr, working)
		if err != nil {
			return nil, err
		}
		if !inside {
			return nil, apperrors.InvalidInput(
				fmt.Sprintf("break %s-%s is outside working hours", tr.StartTime, tr.EndTime), nil)
		}
	}

	if !replace {
		existing, err := s.breakHours.ListForScope(ctx, day, branchID)
		if err != nil {
			return nil, err
		}
		persisted := make([]model.TimeRange, len(existing))
		for i, b := range existing {
			persisted[i] = model.TimeRange{StartTime: b.StartTime, EndTime: b.EndTime}
		}
		if err := checkAgainstPersisted(ranges, persisted, "break hours"); err != nil {
			return nil, err
		}
	}

	breaks := make([]*model.BreakHour, len(ranges))
	for i, tr := range ranges {
		breaks[i] = &model.BreakHour{
			Day:        day,
			StartTime:  tr.StartTime,
			EndTime:    tr.EndTime,
			RangeOrder: i,
			BranchID:   branchID,
			IsActive:   true,
		}
	}

	if replace {
		if err := s.breakHours.ReplaceForScope(ctx, day, branchID, breaks); err != nil {
			return nil, err
		}
	} else {
		if err := s.breakHours.InsertBatch(ctx, breaks); err != nil {
			return nil, err
		}
	}
	return breaks, nil
}

// SetDoctorWorkingHours rewrites a doctor's (day, branch) slot
// definitions wholesale.
func (s *Service) SetDoctorWorkingHours(ctx context.Context, input *SetDoctorHoursInput) ([]*model.DoctorWorkingHour, error) {
	if !input.Day.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid day %q", input.Day), nil)
	}
	if len(input.Ranges) == 0 {
		return nil, apperrors.InvalidInput("at least one range is required", nil)
	}

	doctor, err := s.doctors.Get(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}

	if err := validateBatch(input.Ranges); err != nil {
		return nil, err
	}

	fees := input.Fees
	if fees == 0 {
		fees = doctor.Fees
	}

	var hours []*model.DoctorWorkingHour
	if input.Waterfall {
		for _, tr := range input.Ranges {
			hours = append(hours, s.newDoctorHour(input, tr.StartTime, tr.EndTime, fees))
		}
	} else {
		mins, err := sessionMinutes(input.SessionDuration)
		if err != nil {
			return nil, err
		}
		if mins <= 0 && s.logger != nil {
			s.logger.Warn("non-positive session duration, treating whole range as one slot",
				"doctor_id", input.DoctorID.String())
		}
		for _, tr := range input.Ranges {
			slots, err := GenerateSlots(tr.StartTime, tr.EndTime, mins)
			if err != nil {
				return nil, err
			}
			for _, slot := range slots {
				hours = append(hours, s.newDoctorHour(input, slot.StartTime, slot.EndTime, fees))
			}
		}
	}

	if err := s.doctorHours.ReplaceForScope(ctx, input.DoctorID, input.Day, input.BranchID, hours); err != nil {
		return nil, err
	}
	return hours, nil
}

// UpdateDoctorWorkingHour rewrites times and flags of one slot row in
// place. Moving a row to a different day is rejected.
func (s *Service) UpdateDoctorWorkingHour(ctx context.Context, hour *model.DoctorWorkingHour) (*model.DoctorWorkingHour, error) {
	existing, err := s.doctorHours.Get(ctx, hour.ID)
	if err != nil {
		return nil, err
	}

	if hour.Day != "" && hour.Day != existing.Day {
		return nil, apperrors.InvalidInput("working hour cannot move to a different day", nil)
	}

	start, err := minuteOfDay(hour.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := minuteOfDay(hour.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, apperrors.InvalidInput("start_time must be before end_time", nil)
	}

	siblings, err := s.doctorHours.ListForDoctor(ctx, existing.DoctorID, existing.Day)
	if err != nil {
		return nil, err
	}
	for _, sib := range siblings {
		if sib.ID == existing.ID || !sameBranch(sib.BranchID, existing.BranchID) {
			continue
		}
		ss, err := minuteOfDay(sib.StartTime)
		if err != nil {
			return nil, err
		}
		se, err := minuteOfDay(sib.EndTime)
		if err != nil {
			return nil, err
		}
		if overlaps(start, end, ss, se) {
			return nil, apperrors.Conflict(
				fmt.Sprintf("range overlaps existing slot %s-%s", sib.StartTime, sib.EndTime), nil)
		}
	}

	existing.StartTime = hour.StartTime
	existing.EndTime = hour.EndTime
	existing.Waterfall = hour.Waterfall
	if hour.SessionDuration != nil {
		existing.SessionDuration = hour.SessionDuration
	}
	existing.PatientsLimit = hour.PatientsLimit
	existing.IsBusy = hour.IsBusy
	if hour.Fees != 0 {
		existing.Fees = hour.Fees
	}
	existing.IsActive = hour.IsActive
	if hour.ServiceIDs != nil {
		existing.ServiceIDs = hour.ServiceIDs
	}

	if err := s.doctorHours.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetDoctorHourBusy flips only the busy flag of one slot row without
// touching its times. Busy rows keep their bookings but stop
// appearing in the availability listing.
func (s *Service) SetDoctorHourBusy(ctx context.Context, id uuid.UUID, busy bool) error {
	return s.doctorHours.SetBusy(ctx, id, busy)
}

// AvailableSlots lists the still-bookable units for a doctor on a
// date: waterfall ranges without a live reservation and fixed slots
// that are neither busy nor taken.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]model.Slot, error) {
	day, err := parseDateWeekday(date)
	if err != nil {
		return nil, err
	}

	hours, err := s.doctorHours.ListForDoctor(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	var slots []model.Slot
	for _, h := range hours {
		if !h.IsActive || h.IsBusy {
			continue
		}
		live, err := s.reservations.CountLive(ctx, h.ID, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if live > 0 {
			continue
		}
		slots = append(slots, model.Slot{StartTime: h.StartTime, EndTime: h.EndTime})
	}
	return slots, nil
}

func (s *Service) newDoctorHour(input *SetDoctorHoursInput, start, end string, fees float64) *model.DoctorWorkingHour {
	var duration *string
	if input.SessionDuration != "" {
		d := input.SessionDuration
		duration = &d
	}
	return &model.DoctorWorkingHour{
		DoctorID:        input.DoctorID,
		Day:             input.Day,
		StartTime:       start,
		EndTime:         end,
		BranchID:        input.BranchID,
		Waterfall:       input.Waterfall,
		SessionDuration: duration,
		PatientsLimit:   input.PatientsLimit,
		Fees:            fees,
		IsActive:        true,
		ServiceIDs:      input.ServiceIDs,
	}
}

// validateBatch checks strict ordering per range and pairwise
// non-overlap within the batch.
func validateBatch(ranges []model.TimeRange) error {
	mins := make([][2]int, len(ranges))
	for i, tr := range ranges {
		start, err := minuteOfDay(tr.StartTime)
		if err != nil {
			return err
		}
		end, err := minuteOfDay(tr.EndTime)
		if err != nil {
			return err
		}
		if start >= end {
			return apperrors.InvalidInput(
				fmt.Sprintf("start_time %s must be before end_time %s", tr.StartTime, tr.EndTime), nil)
		}
		mins[i] = [2]int{start, end}
	}

	for i := range mins {
		for j := i + 1; j < len(mins); j++ {
			if overlaps(mins[i][0], mins[i][1], mins[j][0], mins[j][1]) {
				return apperrors.Conflict(
					fmt.Sprintf("ranges %s-%s and %s-%s overlap",
						ranges[i].StartTime, ranges[i].EndTime,
						ranges[j].StartTime, ranges[j].EndTime), nil)
			}
		}
	}
	return nil
}

// checkAgainstPersisted rejects exact duplicates of persisted ranges
// as "already exists" and any other overlap as a conflict.
func checkAgainstPersisted(ranges, persisted []model.TimeRange, what string) error {
	for _, tr := range ranges {
		start, err := minuteOfDay(tr.StartTime)
		if err != nil {
			return err
		}
		end, err := minuteOfDay(tr.EndTime)
		if err != nil {
			return err
		}
		for _, p := range persisted {
			ps, err := minuteOfDay(p.StartTime)
			if err != nil {
				return err
			}
			pe, err := minuteOfDay(p.EndTime)
			if err != nil {
				return err
			}
			if start == ps && end == pe {
				return apperrors.Conflict(
					fmt.Sprintf("%s %s-%s already exist", what, tr.StartTime, tr.EndTime), nil)
			}
			if overlaps(start, end, ps, pe) {
				return apperrors.Conflict(
					fmt.Sprintf("%s %s-%s overlap existing range %s-%s",
						what, tr.StartTime, tr.EndTime, p.StartTime, p.EndTime), nil)
			}
		}
	}
	return nil
}

func withinSomeWorkingRange(tr model.TimeRange, working []*model.WorkingHour) (bool, error) {
	start, err := minuteOfDay(tr.StartTime)
	if err != nil {
		return false, err
	}
	end, err := minuteOfDay(tr.EndTime)
	if err != nil {
		return false, err
	}
	for _, w := range working {
		ws, err := minuteOfDay(w.StartTime)
		if err != nil {
			return false, err
		}
		we, err := minuteOfDay(w.EndTime)
		if err != nil {
			return false, err
		}
		if contains(ws, we, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func sameBranch(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func parseDateWeekday(date string) (model.Weekday, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
	}
	return model.WeekdayOf(t), nil
}
