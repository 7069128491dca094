package timetable

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"classplan/internal/entity"
	"classplan/internal/generator"
)

const DefaultMeetBaseURL = "https://meet.google.com/"

type SessionManager struct {
	accounts    AccountStore
	catalog     CatalogStore
	hasher      Hasher
	tokens      *generator.Generator
	logger      *log.Logger
	meetBaseURL string
}

type Option func(*SessionManager)

func WithLogger(logger *log.Logger) Option {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithTokenGenerator(g *generator.Generator) Option {
	return func(m *SessionManager) {
		if g != nil {
			m.tokens = g
		}
	}
}

// WithMeetBaseURL sets the prefix joined to stored class links that are not
// absolute URLs.
func WithMeetBaseURL(base string) Option {
	return func(m *SessionManager) {
		if strings.TrimSpace(base) != "" {
			m.meetBaseURL = base
		}
	}
}

func NewSessionManager(accounts AccountStore, catalog CatalogStore, hasher Hasher, opts ...Option) *SessionManager {
	m := &SessionManager{
		accounts:    accounts,
		catalog:     catalog,
		hasher:      hasher,
		tokens:      generator.NewGenerator(),
		logger:      log.Default(),
		meetBaseURL: DefaultMeetBaseURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func validateStudentID(studentID string) error {
	if studentID == "" {
		return fmt.Errorf("%w: student id cannot be empty", ErrInvalidIdentifier)
	}
	if len(studentID) != 10 {
		return fmt.Errorf("%w: student id must have exactly 10 digits", ErrInvalidIdentifier)
	}
	for _, r := range studentID {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: student id must contain only numbers", ErrInvalidIdentifier)
		}
	}
	return nil
}

func (m *SessionManager) exists(ctx context.Context, studentID string) (bool, error) {
	if err := validateStudentID(studentID); err != nil {
		return false, err
	}
	_, err := m.accounts.GetField(ctx, studentID, entity.FieldStudentID)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageError("query account", err)
	}
	return true, nil
}

// checkIdentity validates the id, makes sure the account exists and that password
// matches the stored digest.
func (m *SessionManager) checkIdentity(ctx context.Context, studentID, password string) error {
	ok, err := m.exists(ctx, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownAccount
	}

	digest, err := m.accounts.GetField(ctx, studentID, entity.FieldPasswordHash)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return ErrUnknownAccount
	}
	if err != nil {
		return storageError("query password", err)
	}
	if !m.hasher.Verify(password, digest) {
		return ErrWrongPassword
	}
	return nil
}

func (m *SessionManager) SignUp(ctx context.Context, studentID, password, confirmPassword string) error {
	ok, err := m.exists(ctx, studentID)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyRegistered
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	digest, err := m.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = m.accounts.InsertAccount(ctx, entity.Account{
		StudentID:    studentID,
		PasswordHash: digest,
		Schedule:     entity.EncodeWeek(entity.EmptyWeek()),
		Subjects:     entity.EncodeSubjects(nil),
		SessionID:    entity.NoSession,
	})
	if errors.Is(err, entity.ErrDuplicateKey) {
		return ErrAlreadyRegistered
	}
	if err != nil {
		return storageError("create account", err)
	}

	m.logger.Printf("[session] account created student_id=%s", studentID)
	return nil
}

// Login starts a new session. It fails with ErrAlreadyLoggedIn while another session
// holds the account; the caller may LogoutRemote and retry.
func (m *SessionManager) Login(ctx context.Context, studentID, password string) (*Account, error) {
	if err := m.checkIdentity(ctx, studentID, password); err != nil {
		return nil, err
	}

	current, err := m.accounts.GetField(ctx, studentID, entity.FieldSessionID)
	if err != nil {
		return nil, storageError("query session", err)
	}
	if current != entity.NoSession {
		return nil, ErrAlreadyLoggedIn
	}

	token, err := m.tokens.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	if err := m.accounts.SetField(ctx, studentID, entity.FieldSessionID, token); err != nil {
		return nil, storageError("store session", err)
	}

	m.logger.Printf("[session] login student_id=%s", studentID)
	return m.Resume(studentID, token), nil
}

// Resume binds a context to a token obtained earlier. It does not mean the session is
// still current; every account operation checks that again.
func (m *SessionManager) Resume(studentID, token string) *Account {
	return &Account{StudentID: studentID, Token: token, m: m}
}

// LogoutRemote ends whatever session holds the account, without a token check.
func (m *SessionManager) LogoutRemote(ctx context.Context, studentID string) error {
	if err := validateStudentID(studentID); err != nil {
		return err
	}
	err := m.accounts.SetField(ctx, studentID, entity.FieldSessionID, entity.NoSession)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return ErrUnknownAccount
	}
	if err != nil {
		return storageError("clear session", err)
	}
	m.logger.Printf("[session] remote logout student_id=%s", studentID)
	return nil
}

// ChangePassword replaces the stored digest. The active session, if any, stays valid.
func (m *SessionManager) ChangePassword(ctx context.Context, studentID, oldPassword, newPassword, confirmPassword string) error {
	if err := m.checkIdentity(ctx, studentID, oldPassword); err != nil {
		return err
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	digest, err := m.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := m.accounts.SetField(ctx, studentID, entity.FieldPasswordHash, digest); err != nil {
		return storageError("update password", err)
	}
	m.logger.Printf("[session] password changed student_id=%s", studentID)
	return nil
}

// SubjectsInfo returns the catalog as subject code -> subject name.
func (m *SessionManager) SubjectsInfo(ctx context.Context) (map[string]string, error) {
	rows, err := m.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, storageError("list subjects", err)
	}
	info := make(map[string]string, len(rows))
	for _, row := range rows {
		info[row.Code] = row.Name
	}
	return info, nil
}

// Account is the bound context of one login: a student id plus the session token it
// was issued. Holding it does not imply being logged in.
type Account struct {
	StudentID string
	Token     string

	m *SessionManager
}

// Bound reports whether the context still holds a token.
func (a *Account) Bound() bool {
	return a != nil && a.Token != "" && a.Token != entity.NoSession
}

// LoggedIn compares the held token with the one on record.
func (a *Account) LoggedIn(ctx context.Context) (bool, error) {
	if !a.Bound() {
		return false, nil
	}
	stored, err := a.m.accounts.GetField(ctx, a.StudentID, entity.FieldSessionID)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storageError("query session", err)
	}
	return stored == a.Token, nil
}

func (a *Account) ensureLoggedIn(ctx context.Context) error {
	ok, err := a.LoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionExpired
	}
	return nil
}

// Logout clears the stored session only while it is still ours, so a stale context
// can not end a newer session.
func (a *Account) Logout(ctx context.Context) error {
	ok, err := a.LoggedIn(ctx)
	if err != nil {
		return err
	}
	if ok {
		if err := a.m.accounts.SetField(ctx, a.StudentID, entity.FieldSessionID, entity.NoSession); err != nil {
			return storageError("clear session", err)
		}
		a.m.logger.Printf("[session] logout student_id=%s", a.StudentID)
	}
	a.Token = ""
	return nil
}

func (a *Account) Delete(ctx context.Context) error {
	if err := a.ensureLoggedIn(ctx); err != nil {
		return err
	}
	if err := a.m.accounts.DeleteAccount(ctx, a.StudentID); err != nil {
		return storageError("delete account", err)
	}
	a.m.logger.Printf("[session] account deleted student_id=%s", a.StudentID)
	a.Token = ""
	return nil
}

func (a *Account) readField(ctx context.Context, field entity.Field) (string, error) {
	if err := a.ensureLoggedIn(ctx); err != nil {
		return "", err
	}
	value, err := a.m.accounts.GetField(ctx, a.StudentID, field)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", storageError("query "+string(field), err)
	}
	return value, nil
}

func (a *Account) writeField(ctx context.Context, field entity.Field, value string) error {
	if err := a.ensureLoggedIn(ctx); err != nil {
		return err
	}
	err := a.m.accounts.SetField(ctx, a.StudentID, field, value)
	if errors.Is(err, entity.ErrRecordNotFound) {
		return ErrSessionExpired
	}
	return storageError("update "+string(field), err)
}

func (a *Account) Schedule(ctx context.Context) (entity.Week, error) {
	raw, err := a.readField(ctx, entity.FieldSchedule)
	if err != nil {
		return nil, err
	}
	return entity.DecodeWeek(raw)
}

func (a *Account) UpdateSchedule(ctx context.Context, week entity.Week) error {
	return a.writeField(ctx, entity.FieldSchedule, entity.EncodeWeek(week))
}

func (a *Account) RegisteredSubjects(ctx context.Context) (map[string]string, error) {
	raw, err := a.readField(ctx, entity.FieldSubjects)
	if err != nil {
		return nil, err
	}
	return entity.DecodeSubjects(raw)
}

func (a *Account) UpdateSubjects(ctx context.Context, subjects map[string]string) error {
	return a.writeField(ctx, entity.FieldSubjects, entity.EncodeSubjects(subjects))
}

func (a *Account) SubjectsInfo(ctx context.Context) (map[string]string, error) {
	return a.m.SubjectsInfo(ctx)
}

// ClassLink returns the stored join link of a registered subject.
func (a *Account) ClassLink(ctx context.Context, regCode string) (string, error) {
	subjects, err := a.RegisteredSubjects(ctx)
	if err != nil {
		return "", err
	}
	link, ok := subjects[regCode]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, regCode)
	}
	return link, nil
}

// JoinURL resolves a stored link for display. Absolute http(s) links are kept.
func (a *Account) JoinURL(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	base := a.m.meetBaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(link, "/")
}

func (a *Account) logger() *log.Logger {
	return a.m.logger
}
