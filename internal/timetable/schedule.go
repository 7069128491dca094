package timetable

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"classplan/internal/entity"
)

// Lookahead is how long before its start a class already counts as current.
const Lookahead = 15 * time.Minute

// Schedule is an edit session over an account's weekly timetable. Each day bucket is
// kept ordered by start time and holds at most one class per start time.
type Schedule struct {
	acct       *Account
	days       map[string][]entity.Class
	baseline   map[string][]entity.Class
	registered map[string]string
	info       map[string]string
}

// LoadSchedule reads the stored timetable and registered subjects, then drops the
// classes of subjects no longer registered and writes the result back.
func LoadSchedule(ctx context.Context, acct *Account) (*Schedule, error) {
	week, err := acct.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	days, err := parseWeek(week)
	if err != nil {
		return nil, err
	}
	registered, err := acct.RegisteredSubjects(ctx)
	if err != nil {
		return nil, err
	}
	info, err := acct.SubjectsInfo(ctx)
	if err != nil {
		return nil, err
	}

	s := &Schedule{
		acct:       acct,
		days:       days,
		registered: registered,
		info:       info,
	}
	s.baseline = cloneDays(s.days)
	s.Filter(ctx)
	return s, nil
}

// parseWeek rebuilds the day buckets from their stored ids. A class filed under another
// day or sharing a start time with another class of its day makes the record malformed.
func parseWeek(week entity.Week) (map[string][]entity.Class, error) {
	days := make(map[string][]entity.Class, len(entity.Weekdays))
	for _, day := range entity.Weekdays {
		classes := make([]entity.Class, 0, len(week[day]))
		starts := make(map[string]bool, len(week[day]))
		for _, id := range week[day] {
			c, err := entity.ParseClassID(id)
			if err != nil {
				return nil, err
			}
			if c.Day != day {
				return nil, fmt.Errorf("%w: class %s stored under %s", ErrMalformedIdentifier, id, day)
			}
			if starts[c.Start] {
				return nil, fmt.Errorf("%w: two %s classes start at %s", ErrMalformedIdentifier, day, c.Start)
			}
			starts[c.Start] = true
			classes = append(classes, c)
		}
		sortClasses(classes)
		days[day] = classes
	}
	return days, nil
}

func cloneDays(days map[string][]entity.Class) map[string][]entity.Class {
	out := make(map[string][]entity.Class, len(days))
	for day, classes := range days {
		out[day] = slices.Clone(classes)
	}
	return out
}

// Filter keeps only classes whose registration code is registered, re-takes the
// baseline and persists the result. A failed write is logged; the next save or load
// repairs the stored record again.
func (s *Schedule) Filter(ctx context.Context) {
	for day, classes := range s.days {
		s.days[day] = slices.DeleteFunc(classes, func(c entity.Class) bool {
			_, ok := s.registered[c.RegistrationCode()]
			return !ok
		})
	}
	s.baseline = cloneDays(s.days)

	if err := s.acct.UpdateSchedule(ctx, s.Week()); err != nil {
		s.acct.logger().Printf("[schedule] filter write failed student_id=%s err=%v", s.acct.StudentID, err)
	}
}

// ReloadSubjects picks up registration changes saved since the schedule was loaded.
func (s *Schedule) ReloadSubjects(ctx context.Context) error {
	registered, err := s.acct.RegisteredSubjects(ctx)
	if err != nil {
		return err
	}
	s.registered = registered
	s.Filter(ctx)
	return nil
}

// Add inserts c into its day. When replacing is set that class is removed first, so
// an edit never conflicts with the class it replaces. Only equal start times count as
// a conflict; a class starting inside another one's interval is accepted.
func (s *Schedule) Add(c entity.Class, replacing *entity.Class) error {
	if _, err := entity.ParseClassID(c.ID()); err != nil {
		return err
	}

	if replacing != nil {
		if err := s.Delete(*replacing); err != nil {
			return err
		}
	}

	for _, existing := range s.days[c.Day] {
		if existing.Start == c.Start {
			if replacing != nil {
				s.insert(*replacing)
			}
			return fmt.Errorf("%w: there is already a %s class at this time", ErrTimeSlotConflict, s.nameOrCode(existing))
		}
	}

	s.insert(c)
	return nil
}

func (s *Schedule) insert(c entity.Class) {
	s.days[c.Day] = append(s.days[c.Day], c)
	s.sortDay(c.Day)
}

func (s *Schedule) Delete(c entity.Class) error {
	classes := s.days[c.Day]
	i := slices.Index(classes, c)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID())
	}
	s.days[c.Day] = slices.Delete(classes, i, i+1)
	s.sortDay(c.Day)
	return nil
}

func (s *Schedule) sortDay(day string) {
	sortClasses(s.days[day])
}

func sortClasses(classes []entity.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].StartOffset() < classes[j].StartOffset()
	})
}

// ClassInfo resolves the current and next class for day index 0 (Monday) to 6 at time
// of day t. A class is current from Lookahead before its start up to and including its
// end. Before the first window the day's first class is reported as next.
func (s *Schedule) ClassInfo(dayIndex int, t time.Time) (current, next *entity.Class) {
	day, ok := entity.DayName(dayIndex)
	if !ok {
		return nil, nil
	}
	classes := s.days[day]
	if len(classes) == 0 {
		return nil, nil
	}

	now := entity.SinceMidnight(t)
	first, last := classes[0], classes[len(classes)-1]
	if now < first.StartOffset()-Lookahead {
		return nil, &first
	}
	if now > last.EndOffset() {
		return nil, nil
	}

	for i, c := range classes {
		if c.StartOffset()-Lookahead <= now && now <= c.EndOffset() {
			cur := c
			if i+1 < len(classes) {
				nxt := classes[i+1]
				return &cur, &nxt
			}
			return &cur, nil
		}
	}
	return nil, nil
}

// Current is ClassInfo for the weekday and wall-clock time of now.
func (s *Schedule) Current(now time.Time) (current, next *entity.Class) {
	return s.ClassInfo(entity.WeekdayIndex(now.Weekday()), now)
}

func (s *Schedule) Changed() bool {
	for _, day := range entity.Weekdays {
		if !slices.Equal(s.days[day], s.baseline[day]) {
			return true
		}
	}
	return false
}

// Save writes the in-memory timetable. It fails with ErrSessionExpired once the
// session is no longer the one on record.
func (s *Schedule) Save(ctx context.Context) error {
	if err := s.acct.UpdateSchedule(ctx, s.Week()); err != nil {
		return err
	}
	s.baseline = cloneDays(s.days)
	return nil
}

// Clear stores an empty week. The in-memory timetable is left untouched.
func (s *Schedule) Clear(ctx context.Context) error {
	return s.acct.UpdateSchedule(ctx, entity.EmptyWeek())
}

// Week returns the stored form of the timetable.
func (s *Schedule) Week() entity.Week {
	week := make(entity.Week, len(entity.Weekdays))
	for _, day := range entity.Weekdays {
		ids := make([]string, 0, len(s.days[day]))
		for _, c := range s.days[day] {
			ids = append(ids, c.ID())
		}
		week[day] = ids
	}
	return week
}

// IsRegistered reports whether classes of regCode may be added.
func (s *Schedule) IsRegistered(regCode string) bool {
	_, ok := s.registered[regCode]
	return ok
}

func (s *Schedule) Day(day string) []entity.Class {
	return slices.Clone(s.days[day])
}

func (s *Schedule) ClassName(c entity.Class) (string, error) {
	return displayName(s.info, c.RegistrationCode())
}

func (s *Schedule) nameOrCode(c entity.Class) string {
	if name, err := s.ClassName(c); err == nil {
		return name
	}
	return c.RegistrationCode()
}

func DurationLabel(c entity.Class) string {
	return c.Span()
}
