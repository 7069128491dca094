// Package catalog loads the list of subjects offered for registration.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"classplan/internal/entity"
)

var (
	ErrFileNotFound = errors.New("subjects info file not found")
	ErrCorrupted    = errors.New("subjects info file corrupted")
)

const (
	codeColumn = "sub_code"
	nameColumn = "sub_name"
)

type Store interface {
	InsertSubjects(ctx context.Context, subjects []entity.SubjectInfo) (int, error)
}

// Parse reads a CSV with a sub_code,sub_name header. Codes are upper-cased and extra
// columns are ignored.
func Parse(r io.Reader) ([]entity.SubjectInfo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupted)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	codeIdx, nameIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")) {
		case codeColumn:
			codeIdx = i
		case nameColumn:
			nameIdx = i
		}
	}
	if codeIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("%w: header must contain %s and %s", ErrCorrupted, codeColumn, nameColumn)
	}

	// Subject codes are matched upper-case everywhere.
	upper := cases.Upper(language.English)
	var subjects []entity.SubjectInfo
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
		if codeIdx >= len(record) || nameIdx >= len(record) {
			return nil, fmt.Errorf("%w: line %d is missing a column", ErrCorrupted, line)
		}
		code := upper.String(strings.TrimSpace(record[codeIdx]))
		if code == "" {
			continue
		}
		if strings.Contains(code, "_") {
			return nil, fmt.Errorf("%w: line %d: subject code %q contains '_'", ErrCorrupted, line, code)
		}
		subjects = append(subjects, entity.SubjectInfo{
			Code: code,
			Name: strings.TrimSpace(record[nameIdx]),
		})
	}
	return subjects, nil
}

// Import merges the subjects read from r into store. Codes already present keep their
// stored name. It returns how many subjects were added.
func Import(ctx context.Context, r io.Reader, store Store) (int, error) {
	subjects, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if len(subjects) == 0 {
		return 0, nil
	}
	n, err := store.InsertSubjects(ctx, subjects)
	if err != nil {
		return 0, fmt.Errorf("store subjects: %w", err)
	}
	return n, nil
}

func ImportFile(ctx context.Context, path string, store Store) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Import(ctx, f, store)
}
