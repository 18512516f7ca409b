package queue

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule decides when a drain runs next
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

// intervalSchedule fires at a fixed period
type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(from time.Time) time.Time {
	return from.Add(s.every)
}

func (s intervalSchedule) String() string {
	return fmt.Sprintf("every %v", s.every)
}

// hourlySchedule fires once an hour at a fixed minute
type hourlySchedule struct {
	minute int
}

func (s hourlySchedule) Next(from time.Time) time.Time {
	next := time.Date(
		from.Year(), from.Month(), from.Day(),
		from.Hour(), s.minute, 0, 0, from.Location(),
	)
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	return next
}

func (s hourlySchedule) String() string {
	return fmt.Sprintf("hourly at :%02d", s.minute)
}

// dailySchedule fires once a day at a fixed wall-clock time
type dailySchedule struct {
	hour   int
	minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(
		from.Year(), from.Month(), from.Day(),
		s.hour, s.minute, 0, 0, from.Location(),
	)
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

// EveryInterval fires every d. Notification dispatch runs every 5s this way.
func EveryInterval(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

// EveryMinutes fires every n minutes, e.g. the 15-minute report refresh
func EveryMinutes(n int) Schedule {
	return intervalSchedule{every: time.Duration(n) * time.Minute}
}

// HourlyAt fires every hour at the given minute
func HourlyAt(minute int) Schedule {
	return hourlySchedule{minute: minute}
}

// DailyAt fires every day at hour:minute in the location of the clock
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour, minute: minute}
}

// ParseSchedule reads a schedule from its text form, as used in environment
// configuration. Accepted forms, case-insensitive:
//
//	every 5s           EveryInterval (any time.ParseDuration value)
//	every 15 minutes   EveryMinutes
//	hourly at :05      HourlyAt
//	daily at 02:30     DailyAt
//
// The String form of every Schedule built here parses back to the same schedule.
func ParseSchedule(s string) (Schedule, error) {
	text := strings.ToLower(strings.Join(strings.Fields(s), " "))

	if arg, ok := strings.CutPrefix(text, "every "); ok {
		if n, ok := strings.CutSuffix(arg, " minutes"); ok {
			minutes, err := strconv.Atoi(n)
			if err != nil || minutes <= 0 {
				return nil, fmt.Errorf("%w: %q: minutes must be a positive integer", ErrInvalidSchedule, s)
			}
			return EveryMinutes(minutes), nil
		}
		d, err := time.ParseDuration(arg)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q: interval must be a positive duration", ErrInvalidSchedule, s)
		}
		return EveryInterval(d), nil
	}

	if arg, ok := strings.CutPrefix(text, "hourly at :"); ok {
		minute, err := strconv.Atoi(arg)
		if err != nil || minute < 0 || minute > 59 {
			return nil, fmt.Errorf("%w: %q: minute must be 00-59", ErrInvalidSchedule, s)
		}
		return HourlyAt(minute), nil
	}

	if arg, ok := strings.CutPrefix(text, "daily at "); ok {
		h, m, found := strings.Cut(arg, ":")
		hour, herr := strconv.Atoi(h)
		minute, merr := strconv.Atoi(m)
		if !found || herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return nil, fmt.Errorf("%w: %q: time must be HH:MM", ErrInvalidSchedule, s)
		}
		return DailyAt(hour, minute), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
}
