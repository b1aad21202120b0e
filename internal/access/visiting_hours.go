package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
)

// ParseClock converts an "HH:MM" (or "HH:MM:SS") clock time to minutes since midnight
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
}

// ParseWeekday accepts an English weekday name in any case
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(strings.TrimSpace(s), d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid day of week %q", s)
}

// WithinVisitingHours reports whether any rule applicable to the wing contains
// now, evaluated on the hospital's local calendar.
func WithinVisitingHours(rules []models.VisitingHoursRule, wingID *uuid.UUID, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := local.Weekday()
	minutes := local.Hour()*60 + local.Minute()

	for _, rule := range rules {
		if !ruleApplies(rule, wingID, day) {
			continue
		}
		start, err := ParseClock(rule.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(rule.EndTime)
		if err != nil {
			continue
		}
		if windowContains(start, end, minutes) {
			return true
		}
	}
	return false
}

func ruleApplies(rule models.VisitingHoursRule, wingID *uuid.UUID, day time.Weekday) bool {
	if rule.WingID != nil && (wingID == nil || *rule.WingID != *wingID) {
		return false
	}
	if rule.DayOfWeek != nil && *rule.DayOfWeek != "" {
		d, err := ParseWeekday(*rule.DayOfWeek)
		if err != nil || d != day {
			return false
		}
	}
	return true
}

// windowContains is inclusive on both bounds. An end before the start wraps past midnight.
func windowContains(start, end, minutes int) bool {
	if start <= end {
		return minutes >= start && minutes <= end
	}
	return minutes >= start || minutes <= end
}
