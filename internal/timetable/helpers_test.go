package timetable

import (
	"context"
	"io"
	"log"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"classplan/internal/entity"
	"classplan/internal/repository"
)

const (
	testStudentID = "1234567890"
	testPassword  = "pw"
)

func newTestManager(t *testing.T) (*SessionManager, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	_, err := store.InsertSubjects(context.Background(), []entity.SubjectInfo{
		{Code: "EMT1016", Name: "Engineering Mathematics I"},
		{Code: "EMT1026", Name: "Engineering Mathematics II"},
		{Code: "EEL1116", Name: "Electric Circuits"},
	})
	if err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	m := NewSessionManager(store, store, NewBcryptHasher(bcrypt.MinCost),
		WithLogger(log.New(io.Discard, "", 0)))
	return m, store
}

func loginTestAccount(t *testing.T, m *SessionManager) *Account {
	t.Helper()
	ctx := context.Background()
	if err := m.SignUp(ctx, testStudentID, testPassword, testPassword); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	acct, err := m.Login(ctx, testStudentID, testPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return acct
}

// registerSubjects saves the given registration codes with placeholder links.
func registerSubjects(t *testing.T, acct *Account, codes ...string) {
	t.Helper()
	subs := map[string]string{}
	for _, code := range codes {
		subs[code] = "link-" + code
	}
	if err := acct.UpdateSubjects(context.Background(), subs); err != nil {
		t.Fatalf("update subjects: %v", err)
	}
}

func mustClass(t *testing.T, id string) entity.Class {
	t.Helper()
	c, err := entity.ParseClassID(id)
	if err != nil {
		t.Fatalf("parse %q: %v", id, err)
	}
	return c
}
