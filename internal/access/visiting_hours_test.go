package access

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = ParseClock("23:59:00")
	require.NoError(t, err)
	assert.Equal(t, 1439, m)

	_, err = ParseClock("9am")
	assert.Error(t, err)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	_, err = ParseWeekday("Funday")
	assert.Error(t, err)
}

func TestWithinVisitingHours(t *testing.T) {
	wingA := uuid.New()
	wingB := uuid.New()
	// 2024-01-01 is a Monday
	monday := func(h, m int) time.Time { return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		rules []models.VisitingHoursRule
		wing  *uuid.UUID
		now   time.Time
		want  bool
	}{
		{
			name: "no rules",
			wing: &wingA,
			now:  monday(10, 0),
			want: false,
		},
		{
			name:  "hospital-wide rule",
			rules: []models.VisitingHoursRule{{StartTime: "09:00", EndTime: "11:00"}},
			wing:  &wingA,
			now:   monday(10, 0),
			want:  true,
		},
		{
			name:  "start bound inclusive",
			rules: []models.VisitingHoursRule{{StartTime: "09:00", EndTime: "11:00"}},
			now:   monday(9, 0),
			want:  true,
		},
		{
			name:  "end bound inclusive",
			rules: []models.VisitingHoursRule{{StartTime: "09:00", EndTime: "11:00"}},
			now:   monday(11, 0),
			want:  true,
		},
		{
			name:  "one minute past end",
			rules: []models.VisitingHoursRule{{StartTime: "09:00", EndTime: "11:00"}},
			now:   monday(11, 1),
			want:  false,
		},
		{
			name:  "other wing rule ignored",
			rules: []models.VisitingHoursRule{{WingID: &wingB, StartTime: "09:00", EndTime: "11:00"}},
			wing:  &wingA,
			now:   monday(10, 0),
			want:  false,
		},
		{
			name:  "wing rule ignored for session without wing",
			rules: []models.VisitingHoursRule{{WingID: &wingA, StartTime: "09:00", EndTime: "11:00"}},
			now:   monday(10, 0),
			want:  false,
		},
		{
			name: "any applicable rule suffices",
			rules: []models.VisitingHoursRule{
				{StartTime: "09:00", EndTime: "11:00"},
				{WingID: &wingA, StartTime: "16:00", EndTime: "18:00"},
			},
			wing: &wingA,
			now:  monday(17, 0),
			want: true,
		},
		{
			name:  "day-specific rule matches",
			rules: []models.VisitingHoursRule{{DayOfWeek: strPtr("Monday"), StartTime: "09:00", EndTime: "11:00"}},
			now:   monday(10, 0),
			want:  true,
		},
		{
			name:  "day-specific rule on another day",
			rules: []models.VisitingHoursRule{{DayOfWeek: strPtr("Tuesday"), StartTime: "09:00", EndTime: "11:00"}},
			now:   monday(10, 0),
			want:  false,
		},
		{
			name:  "overnight window",
			rules: []models.VisitingHoursRule{{StartTime: "22:00", EndTime: "02:00"}},
			now:   monday(1, 30),
			want:  true,
		},
		{
			name:  "malformed rule skipped",
			rules: []models.VisitingHoursRule{{StartTime: "nine", EndTime: "11:00"}},
			now:   monday(10, 0),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinVisitingHours(tt.rules, tt.wing, tt.now, time.UTC))
		})
	}
}

func TestWithinVisitingHours_UsesLocalCalendar(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-01-02 03:00 UTC is Monday 22:00 in New York
	now := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	rules := []models.VisitingHoursRule{{DayOfWeek: strPtr("Monday"), StartTime: "21:00", EndTime: "23:00"}}

	assert.True(t, WithinVisitingHours(rules, nil, now, loc))
	assert.False(t, WithinVisitingHours(rules, nil, now, time.UTC))
}
