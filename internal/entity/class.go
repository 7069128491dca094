package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Lecture  = "Lecture"
	Tutorial = "Tutorial"
)

// Weekdays is ordered the way a week is shown: index 0 is Monday.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Class is one weekly recurring slot of a registered subject. Two classes are the
// same class iff their IDs are equal, which for this struct is plain ==.
type Class struct {
	SubjectCode string `json:"subject_code"`
	ClassType   string `json:"class_type"`
	Day         string `json:"day"`
	Start       string `json:"start_time"`
	End         string `json:"end_time"`
}

func NewClass(subjectCode, classType, day, start, end string) Class {
	return Class{
		SubjectCode: subjectCode,
		ClassType:   classType,
		Day:         day,
		Start:       start,
		End:         end,
	}
}

// ID returns subject_type_day_start_end.
func (c Class) ID() string {
	return strings.Join([]string{c.SubjectCode, c.ClassType, c.Day, c.Start, c.End}, "_")
}

// RegistrationCode links the class to its subject registration.
func (c Class) RegistrationCode() string {
	return c.SubjectCode + "_" + c.ClassType
}

func (c Class) String() string {
	return c.ID()
}

// StartOffset is the start time as an offset from midnight.
func (c Class) StartOffset() time.Duration {
	d, _ := ParseClock(c.Start)
	return d
}

func (c Class) EndOffset() time.Duration {
	d, _ := ParseClock(c.End)
	return d
}

// Span formats the class duration as "HH:MM - HH:MM".
func (c Class) Span() string {
	return FormatClock(c.Start) + " - " + FormatClock(c.End)
}

func ParseClassID(id string) (Class, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 5 {
		return Class{}, fmt.Errorf("%w: class id %q has %d fields, want 5", ErrMalformedIdentifier, id, len(parts))
	}

	c := NewClass(parts[0], parts[1], parts[2], parts[3], parts[4])
	if DayIndex(c.Day) < 0 {
		return Class{}, fmt.Errorf("%w: class id %q has unknown day %q", ErrMalformedIdentifier, id, c.Day)
	}
	if _, err := ParseClock(c.Start); err != nil {
		return Class{}, err
	}
	if _, err := ParseClock(c.End); err != nil {
		return Class{}, err
	}
	return c, nil
}

func DayIndex(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

// DayName maps 0..6 to Monday..Sunday.
func DayName(index int) (string, bool) {
	if index < 0 || index >= len(Weekdays) {
		return "", false
	}
	return Weekdays[index], true
}

// WeekdayIndex converts Go's Sunday-first weekday into the Monday-first index.
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// ParseClock parses a four digit 24-hour "HHMM" string into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: time %q is not HHMM", ErrMalformedIdentifier, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: time %q is not HHMM", ErrMalformedIdentifier, s)
		}
	}
	hh, _ := strconv.Atoi(s[:2])
	mm, _ := strconv.Atoi(s[2:])
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("%w: time %q out of range", ErrMalformedIdentifier, s)
	}
	return time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute, nil
}

// FormatClock renders "0800" as "08:00". Invalid input is returned as is.
func FormatClock(s string) string {
	if _, err := ParseClock(s); err != nil {
		return s
	}
	return s[:2] + ":" + s[2:]
}

// SinceMidnight returns the wall-clock time of day of t.
func SinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
