package timetable

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"classplan/internal/entity"
)

// Subjects is an edit session over the subjects an account registered. Changes stay
// in memory until Save.
type Subjects struct {
	acct       *Account
	registered map[string]string
	saved      map[string]string
	info       map[string]string
}

func LoadSubjects(ctx context.Context, acct *Account) (*Subjects, error) {
	registered, err := acct.RegisteredSubjects(ctx)
	if err != nil {
		return nil, err
	}
	info, err := acct.SubjectsInfo(ctx)
	if err != nil {
		return nil, err
	}
	return &Subjects{
		acct:       acct,
		registered: registered,
		saved:      maps.Clone(registered),
		info:       info,
	}, nil
}

func RegistrationCode(subjectCode, classType string) string {
	return subjectCode + "_" + classType
}

// Register adds subjectCode/classType with its join link. With a non-empty replace
// code the old entry is removed first, which turns the call into an edit.
func (s *Subjects) Register(subjectCode, classType, link, replace string) error {
	if subjectCode == "" || strings.Contains(subjectCode, "_") {
		return fmt.Errorf("%w: subject code %q", ErrMalformedIdentifier, subjectCode)
	}
	if classType != entity.Lecture && classType != entity.Tutorial {
		return fmt.Errorf("%w: class type %q", ErrMalformedIdentifier, classType)
	}
	code := RegistrationCode(subjectCode, classType)
	if replace == "" {
		if _, ok := s.registered[code]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRegistration, code)
		}
	} else if err := s.Unregister(replace); err != nil {
		return err
	}
	s.registered[code] = link
	return nil
}

func (s *Subjects) Unregister(regCode string) error {
	if _, ok := s.registered[regCode]; !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, regCode)
	}
	delete(s.registered, regCode)
	return nil
}

// DisplayName renders "EMT1016_Lecture" as "<catalog name> Lecture".
func (s *Subjects) DisplayName(regCode string) (string, error) {
	return displayName(s.info, regCode)
}

func displayName(info map[string]string, regCode string) (string, error) {
	subjectCode, classType, ok := strings.Cut(regCode, "_")
	if !ok {
		return "", fmt.Errorf("%w: registration code %q", ErrMalformedIdentifier, regCode)
	}
	name, ok := info[subjectCode]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSubject, subjectCode)
	}
	return name + " " + classType, nil
}

func (s *Subjects) Link(regCode string) (string, error) {
	link, ok := s.registered[regCode]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, regCode)
	}
	return link, nil
}

func (s *Subjects) JoinURL(regCode string) (string, error) {
	link, err := s.Link(regCode)
	if err != nil {
		return "", err
	}
	return s.acct.JoinURL(link), nil
}

func (s *Subjects) IsRegistered(regCode string) bool {
	_, ok := s.registered[regCode]
	return ok
}

// Codes returns the registered codes in sorted order.
func (s *Subjects) Codes() []string {
	return slices.Sorted(maps.Keys(s.registered))
}

func (s *Subjects) Registered() map[string]string {
	return maps.Clone(s.registered)
}

func (s *Subjects) Catalog() map[string]string {
	return maps.Clone(s.info)
}

func (s *Subjects) Changed() bool {
	return !maps.Equal(s.registered, s.saved)
}

func (s *Subjects) Save(ctx context.Context) error {
	if err := s.acct.UpdateSubjects(ctx, s.registered); err != nil {
		return err
	}
	s.saved = maps.Clone(s.registered)
	return nil
}
