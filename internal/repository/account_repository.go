package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"classplan/internal/entity"
)

const uniqueViolation = "23505"

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// column maps a field to its column name; only these names ever reach the SQL text.
func column(field entity.Field) (string, error) {
	switch field {
	case entity.FieldStudentID, entity.FieldPasswordHash, entity.FieldSchedule,
		entity.FieldSubjects, entity.FieldSessionID:
		return string(field), nil
	}
	return "", &RepositoryError{"unknown field " + string(field)}
}

func (r *AccountRepository) GetField(ctx context.Context, studentID string, field entity.Field) (string, error) {
	col, err := column(field)
	if err != nil {
		return "", err
	}

	var value string
	err = r.db.QueryRowContext(ctx, `
		SELECT `+col+` FROM accounts WHERE student_id = $1
	`, studentID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", entity.ErrRecordNotFound
	}
	return value, err
}

func (r *AccountRepository) SetField(ctx context.Context, studentID string, field entity.Field, value string) error {
	col, err := column(field)
	if err != nil {
		return err
	}
	if field == entity.FieldStudentID {
		return &RepositoryError{"student id is not writable"}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET `+col+` = $1 WHERE student_id = $2
	`, value, studentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}

func (r *AccountRepository) InsertAccount(ctx context.Context, account entity.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (student_id, password_hash, schedule, reg_subjects, session_id)
		VALUES ($1, $2, $3, $4, $5)
	`, account.StudentID, account.PasswordHash, account.Schedule, account.Subjects, account.SessionID)
	if isUniqueViolation(err) {
		return entity.ErrDuplicateKey
	}
	return err
}

func (r *AccountRepository) DeleteAccount(ctx context.Context, studentID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE student_id = $1
	`, studentID)
	return err
}

// isUniqueViolation understands errors from both supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

type RepositoryError struct {
	Message string
}

func (e *RepositoryError) Error() string {
	return "repository error: " + e.Message
}
