package schedule

import (
	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
)

// GenerateSlots slices [start, end) into consecutive fixed-duration
// slots. The final slot is clipped to end when a full session would
// overrun, so it may be shorter than the session. A non-positive
// duration returns the whole range as one degenerate slot.
func GenerateSlots(startTime, endTime string, sessionMins int) ([]model.Slot, error) {
	start, err := minuteOfDay(startTime)
	if err != nil {
		return nil, err
	}
	end, err := minuteOfDay(endTime)
	if err != nil {
		return nil, err
	}

	if sessionMins <= 0 {
		return []model.Slot{{StartTime: startTime, EndTime: endTime}}, nil
	}

	var slots []model.Slot
	for t := start; t < end; t += sessionMins {
		slotStart := formatMinutes(t)
		if t == start {
			slotStart = startTime
		}

		slotEnd := formatMinutes(t + sessionMins)
		if t+sessionMins >= end {
			slotEnd = endTime
		}

		slots = append(slots, model.Slot{StartTime: slotStart, EndTime: slotEnd})
	}
	return slots, nil
}
