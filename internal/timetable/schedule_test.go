package timetable

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"classplan/internal/entity"
)

func clock(h, m int) time.Time {
	return time.Date(2024, time.March, 4, h, m, 0, 0, time.UTC)
}

func loadTestSchedule(t *testing.T, acct *Account) *Schedule {
	t.Helper()
	s, err := LoadSchedule(context.Background(), acct)
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	return s
}

func TestClassInfo(t *testing.T) {
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture", "EEL1116_Tutorial")

	s := loadTestSchedule(t, acct)
	first := mustClass(t, "EMT1016_Lecture_Monday_1000_1200")
	if err := s.Add(first, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	cur, next := s.ClassInfo(0, clock(9, 50))
	if cur == nil || *cur != first || next != nil {
		t.Fatalf("09:50 = %v, %v", cur, next)
	}
	cur, next = s.ClassInfo(0, clock(8, 0))
	if cur != nil || next == nil || *next != first {
		t.Fatalf("08:00 = %v, %v", cur, next)
	}
	cur, next = s.ClassInfo(0, clock(13, 0))
	if cur != nil || next != nil {
		t.Fatalf("13:00 = %v, %v", cur, next)
	}
	cur, _ = s.ClassInfo(0, clock(12, 0))
	if cur == nil {
		t.Fatal("the end time is still inside the window")
	}

	second := mustClass(t, "EEL1116_Tutorial_Monday_1400_1500")
	if err := s.Add(second, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	cur, next = s.ClassInfo(0, clock(8, 0))
	if cur != nil || next == nil || *next != first {
		t.Fatalf("08:00 with two classes = %v, %v", cur, next)
	}
	cur, next = s.ClassInfo(0, clock(11, 0))
	if cur == nil || *cur != first || next == nil || *next != second {
		t.Fatalf("11:00 = %v, %v", cur, next)
	}
	cur, next = s.ClassInfo(0, clock(13, 0))
	if cur != nil || next != nil {
		t.Fatalf("gap = %v, %v", cur, next)
	}
	cur, next = s.ClassInfo(0, clock(13, 45))
	if cur == nil || *cur != second || next != nil {
		t.Fatalf("13:45 = %v, %v", cur, next)
	}

	if cur, next := s.ClassInfo(1, clock(10, 0)); cur != nil || next != nil {
		t.Fatalf("empty day = %v, %v", cur, next)
	}
	if cur, next := s.ClassInfo(7, clock(10, 0)); cur != nil || next != nil {
		t.Fatalf("bad index = %v, %v", cur, next)
	}
}

func TestClassInfoAroundMidnight(t *testing.T) {
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture")

	s := loadTestSchedule(t, acct)
	early := mustClass(t, "EMT1016_Lecture_Tuesday_0005_0100")
	if err := s.Add(early, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	cur, _ := s.ClassInfo(1, clock(0, 0))
	if cur == nil || *cur != early {
		t.Fatalf("00:00 = %v", cur)
	}
	cur, next := s.ClassInfo(1, clock(23, 59))
	if cur != nil || next != nil {
		t.Fatalf("23:59 = %v, %v", cur, next)
	}
}

func TestCurrentUsesWeekday(t *testing.T) {
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture")

	s := loadTestSchedule(t, acct)
	c := mustClass(t, "EMT1016_Lecture_Wednesday_0900_1000")
	if err := s.Add(c, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	wednesday := time.Date(2024, time.March, 6, 9, 30, 0, 0, time.UTC)
	if cur, _ := s.Current(wednesday); cur == nil || *cur != c {
		t.Fatalf("Current = %v", cur)
	}
	if cur, next := s.Current(wednesday.AddDate(0, 0, 1)); cur != nil || next != nil {
		t.Fatalf("Thursday = %v, %v", cur, next)
	}
}

func TestAddKeepsDayOrderedWithoutDuplicateStarts(t *testing.T) {
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture", "EEL1116_Tutorial")

	s := loadTestSchedule(t, acct)
	late := mustClass(t, "EMT1016_Lecture_Friday_1400_1600")
	early := mustClass(t, "EEL1116_Tutorial_Friday_0800_0900")
	for _, c := range []entity.Class{late, early} {
		if err := s.Add(c, nil); err != nil {
			t.Fatalf("add %s: %v", c.ID(), err)
		}
	}
	day := s.Day("Friday")
	if len(day) != 2 || day[0] != early || day[1] != late {
		t.Fatalf("Friday = %v", day)
	}

	clash := mustClass(t, "EEL1116_Tutorial_Friday_1400_1500")
	err := s.Add(clash, nil)
	if !errors.Is(err, ErrTimeSlotConflict) {
		t.Fatalf("conflict err = %v", err)
	}
	if got := err.Error(); got != "time slot conflict: there is already a Engineering Mathematics I Lecture class at this time" {
		t.Fatalf("conflict message = %q", got)
	}

	// Overlap without an equal start is accepted.
	inside := mustClass(t, "EEL1116_Tutorial_Friday_1500_1530")
	if err := s.Add(inside, nil); err != nil {
		t.Fatalf("overlapping add: %v", err)
	}
	if err := s.Delete(inside); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(inside); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	day = s.Day("Friday")
	if len(day) != 2 || day[0] != early || day[1] != late {
		t.Fatalf("Friday after delete = %v", day)
	}
}

func TestAddReplacing(t *testing.T) {
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture", "EEL1116_Tutorial")

	s := loadTestSchedule(t, acct)
	a := mustClass(t, "EMT1016_Lecture_Monday_0800_1000")
	b := mustClass(t, "EEL1116_Tutorial_Monday_1000_1100")
	_ = s.Add(a, nil)
	_ = s.Add(b, nil)

	moved := mustClass(t, "EMT1016_Lecture_Monday_0800_0930")
	if err := s.Add(moved, &a); err != nil {
		t.Fatalf("replace with same start: %v", err)
	}

	clash := mustClass(t, "EMT1016_Lecture_Monday_1000_1100")
	if err := s.Add(clash, &moved); !errors.Is(err, ErrTimeSlotConflict) {
		t.Fatalf("conflicting replace err = %v", err)
	}
	day := s.Day("Monday")
	if len(day) != 2 || day[0] != moved || day[1] != b {
		t.Fatalf("failed replace must restore the class, got %v", day)
	}

	missing := mustClass(t, "EMT1016_Lecture_Sunday_0800_0900")
	if err := s.Add(clash, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("replace missing err = %v", err)
	}
}

func TestAddRejectsMalformedClass(t *testing.T) {
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	s := loadTestSchedule(t, acct)

	bad := entity.NewClass("EMT1016", "Lecture", "Funday", "0800", "0900")
	if err := s.Add(bad, nil); !errors.Is(err, ErrMalformedIdentifier) {
		t.Fatalf("err = %v", err)
	}
	withUnderscore := entity.NewClass("EMT_1016", "Lecture", "Monday", "0800", "0900")
	if err := s.Add(withUnderscore, nil); !errors.Is(err, ErrMalformedIdentifier) {
		t.Fatalf("err = %v", err)
	}
}

func TestChangedTracksBaseline(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture")

	s := loadTestSchedule(t, acct)
	if s.Changed() {
		t.Fatal("fresh schedule should be unchanged")
	}
	c := mustClass(t, "EMT1016_Lecture_Monday_0800_0900")
	_ = s.Add(c, nil)
	if !s.Changed() {
		t.Fatal("add should mark the schedule changed")
	}
	if err := s.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Changed() {
		t.Fatal("save should re-take the baseline")
	}

	_ = s.Delete(c)
	_ = s.Add(c, nil)
	if s.Changed() {
		t.Fatal("delete then re-add should compare equal to the baseline")
	}
}

func TestFilterDropsUnregisteredClasses(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture", "EEL1116_Tutorial")

	s := loadTestSchedule(t, acct)
	keep := mustClass(t, "EMT1016_Lecture_Monday_0800_0900")
	drop := mustClass(t, "EEL1116_Tutorial_Tuesday_0800_0900")
	_ = s.Add(keep, nil)
	_ = s.Add(drop, nil)
	if err := s.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	registerSubjects(t, acct, "EMT1016_Lecture")
	s = loadTestSchedule(t, acct)
	if s.Changed() {
		t.Fatal("a freshly filtered schedule should be unchanged")
	}
	if got := s.Day("Tuesday"); len(got) != 0 {
		t.Fatalf("Tuesday = %v", got)
	}

	raw, _ := store.GetField(ctx, testStudentID, entity.FieldSchedule)
	stored, err := entity.DecodeWeek(raw)
	if err != nil {
		t.Fatalf("decode stored: %v", err)
	}
	if len(stored["Tuesday"]) != 0 || len(stored["Monday"]) != 1 {
		t.Fatalf("filter should persist, stored = %v", stored)
	}

	before := s.Week()
	s.Filter(ctx)
	after := s.Week()
	for _, day := range entity.Weekdays {
		if !slices.Equal(before[day], after[day]) {
			t.Fatalf("filter is not idempotent on %s: %v then %v", day, before[day], after[day])
		}
	}

	registerSubjects(t, acct)
	if err := s.ReloadSubjects(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := s.Day("Monday"); len(got) != 0 {
		t.Fatalf("Monday after reload = %v", got)
	}
}

func TestLoadScheduleMalformedRecord(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	acct := loginTestAccount(t, m)

	week := entity.EmptyWeek()
	week["Monday"] = []string{"EMT1016_Lecture_Monday_0800"}
	if err := store.SetField(ctx, testStudentID, entity.FieldSchedule, entity.EncodeWeek(week)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := LoadSchedule(ctx, acct); !errors.Is(err, ErrMalformedIdentifier) {
		t.Fatalf("err = %v", err)
	}

	if err := store.SetField(ctx, testStudentID, entity.FieldSchedule, "Monday: []"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := LoadSchedule(ctx, acct); !errors.Is(err, ErrMalformedIdentifier) {
		t.Fatalf("err = %v", err)
	}
}

func TestClearAndSessionExpiry(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture")

	s := loadTestSchedule(t, acct)
	_ = s.Add(mustClass(t, "EMT1016_Lecture_Monday_0800_0900"), nil)
	if err := s.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	raw, _ := store.GetField(ctx, testStudentID, entity.FieldSchedule)
	if raw != entity.EncodeWeek(entity.EmptyWeek()) {
		t.Fatalf("stored after clear = %s", raw)
	}

	if err := m.LogoutRemote(ctx, testStudentID); err != nil {
		t.Fatalf("remote logout: %v", err)
	}
	_ = s.Add(mustClass(t, "EMT1016_Lecture_Tuesday_0800_0900"), nil)
	if err := s.Save(ctx); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("save err = %v", err)
	}
	if _, err := LoadSchedule(ctx, acct); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("load err = %v", err)
	}
}

func TestDurationLabel(t *testing.T) {
	c := entity.NewClass("EMT1016", "Lecture", "Monday", "0800", "1000")
	if got := DurationLabel(c); got != "08:00 - 10:00" {
		t.Fatalf("DurationLabel = %q", got)
	}
}

func TestLoadScheduleRestoresDayBuckets(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	acct := loginTestAccount(t, m)
	registerSubjects(t, acct, "EMT1016_Lecture", "EEL1116_Tutorial")

	week := entity.EmptyWeek()
	week["Monday"] = []string{"EMT1016_Lecture_Monday_1400_1500", "EEL1116_Tutorial_Monday_0800_0900"}
	if err := store.SetField(ctx, testStudentID, entity.FieldSchedule, entity.EncodeWeek(week)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := loadTestSchedule(t, acct)
	morning := mustClass(t, "EEL1116_Tutorial_Monday_0800_0900")
	day := s.Day("Monday")
	if len(day) != 2 || day[0] != morning {
		t.Fatalf("Monday = %v, want ordered by start", day)
	}
	if _, next := s.ClassInfo(0, clock(7, 0)); next == nil || *next != morning {
		t.Fatalf("07:00 next = %v", next)
	}

	tests := map[string][]string{
		"misfiled": {"EMT1016_Lecture_Tuesday_1000_1100", "EMT1016_Lecture_Monday_0800_0900"},
		"clashing": {"EMT1016_Lecture_Monday_0800_0900", "EEL1116_Tutorial_Monday_0800_1000"},
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			week := entity.EmptyWeek()
			week["Monday"] = ids
			if err := store.SetField(ctx, testStudentID, entity.FieldSchedule, entity.EncodeWeek(week)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if _, err := LoadSchedule(ctx, acct); !errors.Is(err, ErrMalformedIdentifier) {
				t.Fatalf("err = %v, want ErrMalformedIdentifier", err)
			}
		})
	}
}
