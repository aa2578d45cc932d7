package callwindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayConfig() Config {
	return Config{
		Timezone:  "America/New_York",
		StartTime: "09:00:00",
		EndTime:   "18:00:00",
		Days:      []string{"mon", "tue", "wed", "thu", "fri"},
	}
}

// 2026-01-05 is a Monday.
func nyTime(t *testing.T, day int, hour, min, sec int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return time.Date(2026, 1, day, hour, min, sec, 0, loc)
}

func TestEvaluate_AllCases(t *testing.T) {
	e := New()

	tests := []struct {
		name        string
		cfg         Config
		now         time.Time
		wantAllowed bool
		wantReason  string
		wantNext    string
	}{
		{
			name:        "inside window",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 5, 10, 30, 0),
			wantAllowed: true,
		},
		{
			name:        "exactly at start",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 5, 9, 0, 0),
			wantAllowed: true,
		},
		{
			name:        "one second before end",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 5, 17, 59, 59),
			wantAllowed: true,
		},
		{
			name:        "exactly at end is excluded",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 5, 18, 0, 0),
			wantAllowed: false,
			wantReason:  "Tuesday",
			wantNext:    "Tuesday 09:00",
		},
		{
			name:        "before start",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 5, 8, 59, 59),
			wantAllowed: false,
			wantReason:  "09:00",
			wantNext:    "Monday 09:00",
		},
		{
			// 2026-01-10 is a Saturday; next allowed day is Monday.
			name:        "saturday names monday",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 10, 12, 0, 0),
			wantAllowed: false,
			wantReason:  "Monday",
			wantNext:    "Monday 09:00",
		},
		{
			// Friday after hours wraps to Monday across the weekend.
			name:        "friday after end wraps to monday",
			cfg:         weekdayConfig(),
			now:         nyTime(t, 9, 19, 0, 0),
			wantAllowed: false,
			wantReason:  "Monday",
			wantNext:    "Monday 09:00",
		},
		{
			name: "single allowed day wraps a full week",
			cfg: Config{
				Timezone:  "America/New_York",
				StartTime: "09:00:00",
				EndTime:   "18:00:00",
				Days:      []string{"wed"},
			},
			now:         nyTime(t, 7, 18, 0, 0), // Wednesday at end bound
			wantAllowed: false,
			wantReason:  "Wednesday",
			wantNext:    "Wednesday 09:00",
		},
		{
			name: "malformed timezone fails closed",
			cfg: Config{
				Timezone:  "Mars/Olympus_Mons",
				StartTime: "09:00:00",
				EndTime:   "18:00:00",
				Days:      []string{"mon"},
			},
			now:         time.Now(),
			wantAllowed: false,
			wantReason:  failClosedReason,
		},
		{
			name: "empty timezone fails closed",
			cfg: Config{
				StartTime: "09:00:00",
				EndTime:   "18:00:00",
				Days:      []string{"mon"},
			},
			now:         time.Now(),
			wantAllowed: false,
			wantReason:  failClosedReason,
		},
		{
			name: "malformed start time fails closed",
			cfg: Config{
				Timezone:  "America/New_York",
				StartTime: "9 o'clock",
				EndTime:   "18:00:00",
				Days:      []string{"mon"},
			},
			now:         time.Now(),
			wantAllowed: false,
			wantReason:  failClosedReason,
		},
		{
			name: "end before start fails closed",
			cfg: Config{
				Timezone:  "America/New_York",
				StartTime: "18:00:00",
				EndTime:   "09:00:00",
				Days:      []string{"mon"},
			},
			now:         time.Now(),
			wantAllowed: false,
			wantReason:  failClosedReason,
		},
		{
			name: "no days configured fails closed",
			cfg: Config{
				Timezone:  "America/New_York",
				StartTime: "09:00:00",
				EndTime:   "18:00:00",
			},
			now:         time.Now(),
			wantAllowed: false,
			wantReason:  failClosedReason,
		},
		{
			name: "unknown weekday tag fails closed",
			cfg: Config{
				Timezone:  "America/New_York",
				StartTime: "09:00:00",
				EndTime:   "18:00:00",
				Days:      []string{"mon", "someday"},
			},
			now:         time.Now(),
			wantAllowed: false,
			wantReason:  failClosedReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(tt.cfg, tt.now)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			if tt.wantReason != "" {
				assert.Contains(t, d.Reason, tt.wantReason)
			}
			if tt.wantNext != "" {
				assert.Equal(t, tt.wantNext, d.NextWindowOpens)
			}
			if tt.wantAllowed {
				assert.Empty(t, d.Reason)
			}
		})
	}
}

func TestEvaluate_TimezoneConversion(t *testing.T) {
	e := New()
	cfg := weekdayConfig()

	// 23:00 UTC on Monday is 18:00 in New York: excluded (exclusive end).
	d := e.Evaluate(cfg, time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC))
	assert.False(t, d.Allowed)

	// 22:59:59 UTC on Monday is 17:59:59 in New York: allowed.
	d = e.Evaluate(cfg, time.Date(2026, 1, 5, 22, 59, 59, 0, time.UTC))
	assert.True(t, d.Allowed)
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := New()
	cfg := weekdayConfig()
	now := nyTime(t, 10, 12, 0, 0)

	first := e.Evaluate(cfg, now)
	second := e.Evaluate(cfg, now)
	assert.Equal(t, first, second)
}

func TestEvaluate_NextDayIsAlwaysAllowed(t *testing.T) {
	e := New()
	allDays := []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

	// For every weekday subset anchored on one allowed day, the reported next
	// window day must be a member of the configured set.
	for skip := 0; skip < 7; skip++ {
		days := []string{allDays[skip]}
		cfg := Config{Timezone: "UTC", StartTime: "09:00:00", EndTime: "17:00:00", Days: days}
		// 2026-01-04 is a Sunday; iterate over each evaluation weekday.
		for d := 4; d < 11; d++ {
			now := time.Date(2026, 1, d, 20, 0, 0, 0, time.UTC)
			dec := e.Evaluate(cfg, now)
			if dec.Allowed {
				continue
			}
			if dec.NextWindowOpens != "" {
				assert.Contains(t, dec.NextWindowOpens, time.Weekday((skip)%7).String(),
					"next window day must be in the allowed set")
			}
		}
	}
}

func TestParseClock(t *testing.T) {
	sec, err := parseClock("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, 9*3600+30*60+15, sec)

	sec, err = parseClock("18:00")
	require.NoError(t, err)
	assert.Equal(t, 18*3600, sec)

	for _, bad := range []string{"", "9", "24:00:00", "12:60:00", "12:00:61", "aa:bb:cc", "-1:00:00"} {
		_, err := parseClock(bad)
		assert.Error(t, err, bad)
	}
}
