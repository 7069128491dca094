package repository

import (
	"context"
	"database/sql"

	"classplan/internal/entity"
)

type SubjectRepository struct {
	db *sql.DB
}

func NewSubjectRepository(db *sql.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListSubjects returns the whole catalog ordered by code.
func (r *SubjectRepository) ListSubjects(ctx context.Context) ([]entity.SubjectInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subject_code, subject_name
		FROM subjects
		ORDER BY subject_code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := make([]entity.SubjectInfo, 0)
	for rows.Next() {
		var s entity.SubjectInfo
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subjects, nil
}

// InsertSubjects adds catalog rows in one transaction. Existing codes keep their name.
func (r *SubjectRepository) InsertSubjects(ctx context.Context, subjects []entity.SubjectInfo) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, s := range subjects {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO subjects (subject_code, subject_name)
			VALUES ($1, $2)
			ON CONFLICT (subject_code) DO NOTHING
		`, s.Code, s.Name)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}
