package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return DateOf(t, time.UTC), nil
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n), time.UTC)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.midnight().After(other.midnight())
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.midnight().Format(dateLayout)
}

// Period is the AM/PM half of a 12-hour clock.
type Period string

const (
	PeriodAM Period = "AM"
	PeriodPM Period = "PM"
)

// TimeSlot is a preferred arrival time on a 12-hour clock.
type TimeSlot struct {
	Hour   int
	Minute int
	Period Period
}

// ParseTimeSlot parses "H:MM AM" or "HH:MM PM". Hour must be 1-12 and minute 0-59.
func ParseTimeSlot(raw string) (TimeSlot, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(raw)))
	if len(fields) != 2 {
		return TimeSlot{}, fmt.Errorf("time slot %q: expected HH:MM AM|PM", raw)
	}
	clock := strings.Split(fields[0], ":")
	if len(clock) != 2 || len(clock[1]) != 2 {
		return TimeSlot{}, fmt.Errorf("time slot %q: expected HH:MM AM|PM", raw)
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("time slot %q: invalid hour", raw)
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("time slot %q: invalid minute", raw)
	}
	slot := TimeSlot{Hour: hour, Minute: minute, Period: Period(fields[1])}
	if !slot.wellFormed() {
		return TimeSlot{}, fmt.Errorf("time slot %q: out of 12-hour clock range", raw)
	}
	return slot, nil
}

func (t TimeSlot) wellFormed() bool {
	if t.Period != PeriodAM && t.Period != PeriodPM {
		return false
	}
	return t.Hour >= 1 && t.Hour <= 12 && t.Minute >= 0 && t.Minute <= 59
}

// Minutes returns minutes from midnight. 12 AM is hour 0, 12 PM is hour 12.
func (t TimeSlot) Minutes() int {
	hour24 := t.Hour
	switch {
	case t.Period == PeriodAM && t.Hour == 12:
		hour24 = 0
	case t.Period == PeriodPM && t.Hour != 12:
		hour24 += 12
	}
	return hour24*60 + t.Minute
}

// String renders the canonical "HH:MM AM" form.
func (t TimeSlot) String() string {
	return fmt.Sprintf("%02d:%02d %s", t.Hour, t.Minute, t.Period)
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
