package repository

import (
	"context"
	"sort"
	"sync"

	"classplan/internal/entity"
)

// MemoryStore keeps accounts and the subject catalog in process memory. It backs
// STORAGE=memory runs and tests.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]entity.Account
	subjects map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: map[string]entity.Account{},
		subjects: map[string]string{},
	}
}

func (s *MemoryStore) GetField(_ context.Context, studentID string, field entity.Field) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[studentID]
	if !ok {
		return "", entity.ErrRecordNotFound
	}
	value, ok := account.Get(field)
	if !ok {
		return "", &RepositoryError{"unknown field " + string(field)}
	}
	return value, nil
}

func (s *MemoryStore) SetField(_ context.Context, studentID string, field entity.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[studentID]
	if !ok {
		return entity.ErrRecordNotFound
	}
	if !account.Set(field, value) {
		return &RepositoryError{"field not writable " + string(field)}
	}
	s.accounts[studentID] = account
	return nil
}

func (s *MemoryStore) InsertAccount(_ context.Context, account entity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.StudentID]; ok {
		return entity.ErrDuplicateKey
	}
	s.accounts[account.StudentID] = account
	return nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.accounts, studentID)
	return nil
}

func (s *MemoryStore) ListSubjects(_ context.Context) ([]entity.SubjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjects := make([]entity.SubjectInfo, 0, len(s.subjects))
	for code, name := range s.subjects {
		subjects = append(subjects, entity.SubjectInfo{Code: code, Name: name})
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects, nil
}

func (s *MemoryStore) InsertSubjects(_ context.Context, subjects []entity.SubjectInfo) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, sub := range subjects {
		if _, ok := s.subjects[sub.Code]; ok {
			continue
		}
		s.subjects[sub.Code] = sub.Name
		inserted++
	}
	return inserted, nil
}
