package timetable

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"classplan/internal/entity"
)

// AccountStore is the record store holding one row per student id. Missing rows are
// reported with entity.ErrRecordNotFound, an existing primary key on insert with
// entity.ErrDuplicateKey.
type AccountStore interface {
	GetField(ctx context.Context, studentID string, field entity.Field) (string, error)
	SetField(ctx context.Context, studentID string, field entity.Field, value string) error
	InsertAccount(ctx context.Context, account entity.Account) error
	DeleteAccount(ctx context.Context, studentID string) error
}

// CatalogStore holds the subjects that can be registered.
type CatalogStore interface {
	ListSubjects(ctx context.Context) ([]entity.SubjectInfo, error)
	// InsertSubjects adds the rows whose code is not stored yet and returns how many
	// were added.
	InsertSubjects(ctx context.Context, subjects []entity.SubjectInfo) (int, error)
}

type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
