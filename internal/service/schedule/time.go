package schedule

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

// Times travel as HH:MM:SS strings and are compared as minutes since
// midnight; seconds are ignored.

func minuteOfDay(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 && len(parts) != 2 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid time %q, expected HH:MM:SS", value), nil)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid hour in %q", value), err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid minute in %q", value), err)
	}

	return hours*60 + minutes, nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d:00", m/60, m%60)
}

// overlaps reports whether half-open ranges [s1,e1) and [s2,e2) share
// at least one instant. Ranges touching only at a boundary do not
// overlap.
func overlaps(s1, e1, s2, e2 int) bool {
	return !(e1 <= s2 || e2 <= s1)
}

// contains reports whether [s,e) lies fully inside [outerS,outerE).
func contains(outerS, outerE, s, e int) bool {
	return s >= outerS && e <= outerE
}

// sessionMinutes parses an HH:MM:SS duration into minutes.
func sessionMinutes(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 && len(parts) != 2 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid duration %q, expected HH:MM:SS", value), nil)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid duration %q", value), err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("invalid duration %q", value), err)
	}
	return hours*60 + minutes, nil
}
