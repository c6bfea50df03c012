package record

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists records in an attendance_records table. Rows carry
// a serial position so RecordsFor preserves insertion order.
//
// Schema:
//
//	CREATE TABLE attendance_records (
//	    position       BIGSERIAL PRIMARY KEY,
//	    date           TEXT NOT NULL,
//	    student_id     TEXT NOT NULL,
//	    student_name   TEXT NOT NULL DEFAULT '',
//	    first_name     TEXT NOT NULL DEFAULT '',
//	    last_name      TEXT NOT NULL DEFAULT '',
//	    middle_initial TEXT NOT NULL DEFAULT '',
//	    email          TEXT NOT NULL DEFAULT '',
//	    marked_at      TEXT NOT NULL
//	);
//	CREATE INDEX attendance_records_date_idx ON attendance_records (date);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// RecordsFor returns the day's records in insertion order.
func (s *PostgresStore) RecordsFor(ctx context.Context, date string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_id, student_name, first_name, last_name, middle_initial, email, marked_at, date
		FROM attendance_records
		WHERE date = $1
		ORDER BY position
	`, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.StudentID, &r.StudentName, &r.FirstName, &r.LastName, &r.MiddleInitial, &r.Email, &r.MarkedAt, &r.Date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return recs, nil
}

// Append inserts rec under date.
func (s *PostgresStore) Append(ctx context.Context, date string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records (date, student_id, student_name, first_name, last_name, middle_initial, email, marked_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, date, rec.StudentID, rec.StudentName, rec.FirstName, rec.LastName, rec.MiddleInitial, rec.Email, rec.MarkedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
