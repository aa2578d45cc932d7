package callwindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config is a campaign's calling-hours configuration. All fields come from
// the campaign row and are treated as immutable input.
type Config struct {
	// Timezone is an IANA zone name.
	Timezone string `json:"timezone"`
	// StartTime/EndTime are local wall-clock times in HH:MM:SS form.
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	// Days holds weekday tags; both short (mon) and long (monday) forms are
	// accepted, case-insensitive.
	Days []string `json:"days"`
}

// Decision is the dialer pre-flight answer. When Allowed is false, Reason
// explains why and NextWindowOpens, when computable, names when the window
// opens next.
type Decision struct {
	Allowed         bool   `json:"allowed"`
	Reason          string `json:"reason,omitempty"`
	NextWindowOpens string `json:"next_window_opens,omitempty"`
}

// failClosedReason is returned whenever the window cannot be verified. The
// evaluator never allows a call it cannot check.
const failClosedReason = "call window could not be verified; calling is disabled"

var weekdayTags = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Evaluator decides whether an outbound call may be placed now. It is
// stateless and safe for concurrent use.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// Evaluate returns the call-window decision for a config at a given instant.
// Deterministic in (cfg, now); any failure to resolve the timezone or parse
// the configuration fails closed.
func (e *Evaluator) Evaluate(cfg Config, now time.Time) Decision {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		return Decision{Allowed: false, Reason: failClosedReason}
	}

	days, err := parseDays(cfg.Days)
	if err != nil {
		return Decision{Allowed: false, Reason: failClosedReason}
	}

	startSec, err := parseClock(cfg.StartTime)
	if err != nil {
		return Decision{Allowed: false, Reason: failClosedReason}
	}
	endSec, err := parseClock(cfg.EndTime)
	if err != nil || endSec <= startSec {
		return Decision{Allowed: false, Reason: failClosedReason}
	}

	local := now.In(loc)
	startHHMM := clockLabel(startSec)

	if !days[local.Weekday()] {
		next, ok := nextAllowedDay(local.Weekday(), days)
		if !ok {
			return Decision{Allowed: false, Reason: failClosedReason}
		}
		return Decision{
			Allowed:         false,
			Reason:          fmt.Sprintf("calls are not permitted on %s; the next calling day is %s", local.Weekday(), next),
			NextWindowOpens: fmt.Sprintf("%s %s", next, startHHMM),
		}
	}

	nowSec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	if nowSec < startSec {
		return Decision{
			Allowed:         false,
			Reason:          fmt.Sprintf("calls may not start before %s local time", startHHMM),
			NextWindowOpens: fmt.Sprintf("%s %s", local.Weekday(), startHHMM),
		}
	}
	// End bound is exclusive: a call at exactly the end time is disallowed.
	if nowSec >= endSec {
		next, ok := nextAllowedDay(local.Weekday(), days)
		if !ok {
			return Decision{Allowed: false, Reason: failClosedReason}
		}
		return Decision{
			Allowed:         false,
			Reason:          fmt.Sprintf("calling hours ended at %s local time; the next calling day is %s", clockLabel(endSec), next),
			NextWindowOpens: fmt.Sprintf("%s %s", next, startHHMM),
		}
	}

	return Decision{Allowed: true}
}

// parseDays maps weekday tags to a membership set. An empty list or an
// unknown tag is a configuration error.
func parseDays(tags []string) (map[time.Weekday]bool, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("no calling days configured")
	}
	days := make(map[time.Weekday]bool, len(tags))
	for _, tag := range tags {
		wd, ok := weekdayTags[strings.ToLower(strings.TrimSpace(tag))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday tag: %q", tag)
		}
		days[wd] = true
	}
	return days, nil
}

// nextAllowedDay scans forward from the day after `from`, wrapping across the
// week, for the first allowed weekday.
func nextAllowedDay(from time.Weekday, days map[time.Weekday]bool) (time.Weekday, bool) {
	for i := 1; i <= 7; i++ {
		wd := time.Weekday((int(from) + i) % 7)
		if days[wd] {
			return wd, true
		}
	}
	return 0, false
}

// parseClock parses HH:MM or HH:MM:SS into seconds since local midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time: %q", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock time: %q", s)
		}
		vals[i] = n
	}
	if vals[0] > 23 || vals[1] > 59 || vals[2] > 59 {
		return 0, fmt.Errorf("clock time out of range: %q", s)
	}
	return vals[0]*3600 + vals[1]*60 + vals[2], nil
}

func clockLabel(sec int) string {
	return fmt.Sprintf("%02d:%02d", sec/3600, (sec%3600)/60)
}
