package businesshours

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidConfig = errors.New("invalid business hours config")

// Config describes the daily working window and the weekdays it applies to.
type Config struct {
	WorkStartHour int
	WorkEndHour   int
	Days          []time.Weekday
	Location      *time.Location
}

// DefaultConfig returns the historical window: 09:00–18:00 UTC, Monday to Friday.
func DefaultConfig() Config {
	return Config{
		WorkStartHour: 9,
		WorkEndHour:   18,
		Days: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Location: time.UTC,
	}
}

// Clock measures elapsed time counting only working hours on working days.
type Clock struct {
	startHour int
	endHour   int
	workdays  [7]bool
	loc       *time.Location
}

func New(cfg Config) (*Clock, error) {
	if cfg.WorkStartHour < 0 || cfg.WorkStartHour > 23 {
		return nil, fmt.Errorf("%w: start hour %d out of range", ErrInvalidConfig, cfg.WorkStartHour)
	}

	if cfg.WorkEndHour < 1 || cfg.WorkEndHour > 24 {
		return nil, fmt.Errorf("%w: end hour %d out of range", ErrInvalidConfig, cfg.WorkEndHour)
	}

	if cfg.WorkEndHour <= cfg.WorkStartHour {
		return nil, fmt.Errorf("%w: end hour %d must be after start hour %d", ErrInvalidConfig, cfg.WorkEndHour, cfg.WorkStartHour)
	}

	if len(cfg.Days) == 0 {
		return nil, fmt.Errorf("%w: no working days", ErrInvalidConfig)
	}

	c := &Clock{
		startHour: cfg.WorkStartHour,
		endHour:   cfg.WorkEndHour,
		loc:       cfg.Location,
	}

	if c.loc == nil {
		c.loc = time.UTC
	}

	for _, d := range cfg.Days {
		if d < time.Sunday || d > time.Saturday {
			return nil, fmt.Errorf("%w: weekday %d", ErrInvalidConfig, d)
		}

		c.workdays[d] = true
	}

	return c, nil
}

// Default returns a Clock built from DefaultConfig.
func Default() *Clock {
	c, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}

	return c
}

// Elapsed returns the whole business seconds between start and end.
// A zero time is treated as absent. Absent bounds or end <= start yield 0.
//
// Each working day contributes its clipped window truncated to whole seconds,
// so the sum can be lower than truncating the overall duration once.
func (c *Clock) Elapsed(start, end time.Time) int64 {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0
	}

	start = start.In(c.loc)
	end = end.In(c.loc)

	var total int64

	// Walk civil dates rather than local midnights: where DST skips 00:00,
	// time.Date normalizes midnight back into the previous day.
	last := civilDate(end)

	for day := civilDate(start); !day.After(last); day = day.AddDate(0, 0, 1) {
		if !c.workdays[day.Weekday()] {
			continue
		}

		dayStart := c.localHour(day, c.startHour)
		if civilDate(dayStart).After(day) {
			// The whole date was skipped by a zone change.
			continue
		}

		dayEnd := c.localHour(day, c.endHour)

		lo := later(start, dayStart)
		hi := earlier(end, dayEnd)

		if hi.After(lo) {
			total += int64(hi.Sub(lo) / time.Second)
		}
	}

	return total
}

// HoursPerDay is the length of the working window, i.e. one business day.
func (c *Clock) HoursPerDay() int {
	return c.endHour - c.startHour
}

// BusinessDays converts seconds to business days rounded to two decimals.
func (c *Clock) BusinessDays(sec int64) float64 {
	return round2((float64(sec) / 3600) / float64(c.HoursPerDay()))
}

// Hours converts seconds to hours rounded to two decimals.
func Hours(sec int64) float64 {
	return round2(float64(sec) / 3600)
}

// round2 rounds the exact binary value half-to-even at two decimals.
// strconv does exact decimal conversion, which math.Round(x*100)/100 does not.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// localHour returns the instant of hour on the civil date day. When that wall
// clock time falls in a gap and time.Date resolves it into the previous date,
// it moves forward to the first instant of day.
func (c *Clock) localHour(day time.Time, hour int) time.Time {
	if hour == 24 {
		return c.localHour(day.AddDate(0, 0, 1), 0)
	}

	y, m, d := day.Date()
	t := time.Date(y, m, d, hour, 0, 0, 0, c.loc)

	for civilDate(t).Before(day) {
		t = t.Add(time.Hour).Truncate(time.Hour)
	}

	return t
}

// civilDate returns t's local calendar date as a UTC midnight, which has no DST gaps.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}

	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}

	return b
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays accepts names like "mon" or "Monday" (case-insensitive).
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))

	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if len(key) > 3 {
			key = key[:3]
		}

		d, ok := weekdayNames[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidConfig, n)
		}

		days = append(days, d)
	}

	return days, nil
}
