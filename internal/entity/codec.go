package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const codecVersion = 1

// Week is the stored form of a schedule: day name -> class ids.
type Week map[string][]string

func EmptyWeek() Week {
	w := make(Week, len(Weekdays))
	for _, day := range Weekdays {
		w[day] = []string{}
	}
	return w
}

type weekEnvelope struct {
	Version int                 `json:"version"`
	Days    map[string][]string `json:"days"`
}

type subjectsEnvelope struct {
	Version  int               `json:"version"`
	Subjects map[string]string `json:"subjects"`
}

func EncodeWeek(w Week) string {
	env := weekEnvelope{Version: codecVersion, Days: make(map[string][]string, len(Weekdays))}
	for _, day := range Weekdays {
		ids := w[day]
		if ids == nil {
			ids = []string{}
		}
		env.Days[day] = ids
	}
	b, _ := json.Marshal(env)
	return string(b)
}

func DecodeWeek(s string) (Week, error) {
	var env weekEnvelope
	if err := decodeStrict(s, &env); err != nil {
		return nil, fmt.Errorf("%w: schedule: %v", ErrMalformedIdentifier, err)
	}
	if env.Version != codecVersion {
		return nil, fmt.Errorf("%w: schedule version %d", ErrMalformedIdentifier, env.Version)
	}

	w := EmptyWeek()
	for day, ids := range env.Days {
		if DayIndex(day) < 0 {
			return nil, fmt.Errorf("%w: schedule has unknown day %q", ErrMalformedIdentifier, day)
		}
		if ids != nil {
			w[day] = ids
		}
	}
	return w, nil
}

func EncodeSubjects(subjects map[string]string) string {
	if subjects == nil {
		subjects = map[string]string{}
	}
	b, _ := json.Marshal(subjectsEnvelope{Version: codecVersion, Subjects: subjects})
	return string(b)
}

func DecodeSubjects(s string) (map[string]string, error) {
	var env subjectsEnvelope
	if err := decodeStrict(s, &env); err != nil {
		return nil, fmt.Errorf("%w: subjects: %v", ErrMalformedIdentifier, err)
	}
	if env.Version != codecVersion {
		return nil, fmt.Errorf("%w: subjects version %d", ErrMalformedIdentifier, env.Version)
	}
	if env.Subjects == nil {
		env.Subjects = map[string]string{}
	}
	return env.Subjects, nil
}

func decodeStrict(s string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after record")
	}
	return nil
}
