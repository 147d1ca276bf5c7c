package store

import (
	"context"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/registrar/internal/record"
)

// CreateCourse inserts a new course row.
// Returns ErrAlreadyExists if a course with the same name exists.
func (s *Store) CreateCourse(ctx context.Context, c record.Course) error {
	roster, err := marshalRoster(c.Enrolled)
	if err != nil {
		return fmt.Errorf("create course %q: %w", c.Name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO courses (name, capacity, schedule, roster)
		VALUES (?, ?, ?, ?)
	`, c.Name, c.Capacity, c.Schedule, roster)
	if isConstraintErr(err) {
		return fmt.Errorf("create course %q: %w", c.Name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create course %q: %w", c.Name, err)
	}
	return nil
}

// CreateStudent inserts a new student row.
// Returns ErrAlreadyExists if a student with the same username exists.
func (s *Store) CreateStudent(ctx context.Context, st record.Student) error {
	registered, err := marshalRoster(st.Registered)
	if err != nil {
		return fmt.Errorf("create student %q: %w", st.Username, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO students (username, credential, registered)
		VALUES (?, ?, ?)
	`, st.Username, st.Credential, registered)
	if isConstraintErr(err) {
		return fmt.Errorf("create student %q: %w", st.Username, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create student %q: %w", st.Username, err)
	}
	return nil
}

// CreateAdmin inserts a new admin row.
// Returns ErrAlreadyExists if an admin with the same username exists.
func (s *Store) CreateAdmin(ctx context.Context, a record.Admin) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (username, credential)
		VALUES (?, ?)
	`, a.Username, a.Credential)
	if isConstraintErr(err) {
		return fmt.Errorf("create admin %q: %w", a.Username, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create admin %q: %w", a.Username, err)
	}
	return nil
}

// PutCourse updates an existing course row in full.
// Returns ErrNotFound if the course does not exist.
func (s *Store) PutCourse(ctx context.Context, c record.Course) error {
	roster, err := marshalRoster(c.Enrolled)
	if err != nil {
		return fmt.Errorf("put course %q: %w", c.Name, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE courses
		SET capacity = ?, schedule = ?, roster = ?
		WHERE name = ?
	`, c.Capacity, c.Schedule, roster, c.Name)
	if err != nil {
		return fmt.Errorf("put course %q: %w", c.Name, err)
	}
	return checkUpdated(result, fmt.Sprintf("put course %q", c.Name))
}

// PutStudent updates an existing student row in full.
// Returns ErrNotFound if the student does not exist.
func (s *Store) PutStudent(ctx context.Context, st record.Student) error {
	registered, err := marshalRoster(st.Registered)
	if err != nil {
		return fmt.Errorf("put student %q: %w", st.Username, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE students
		SET credential = ?, registered = ?
		WHERE username = ?
	`, st.Credential, registered, st.Username)
	if err != nil {
		return fmt.Errorf("put student %q: %w", st.Username, err)
	}
	return checkUpdated(result, fmt.Sprintf("put student %q", st.Username))
}

// ApplyEnrollment commits a course row and a student row in a single
// transaction. This is the store half of the enrollment atomicity
// contract: both views of a registration change land together or not
// at all, even if the caller dies between the two writes.
//
// Returns ErrNotFound if either record does not exist; in that case
// neither row is modified.
func (s *Store) ApplyEnrollment(ctx context.Context, c record.Course, st record.Student) error {
	roster, err := marshalRoster(c.Enrolled)
	if err != nil {
		return fmt.Errorf("apply enrollment: %w", err)
	}
	registered, err := marshalRoster(st.Registered)
	if err != nil {
		return fmt.Errorf("apply enrollment: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply enrollment: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		UPDATE courses
		SET capacity = ?, roster = ?
		WHERE name = ?
	`, c.Capacity, roster, c.Name)
	if err != nil {
		return fmt.Errorf("apply enrollment: update course: %w", err)
	}
	if err := checkUpdated(result, fmt.Sprintf("apply enrollment: course %q", c.Name)); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE students
		SET registered = ?
		WHERE username = ?
	`, registered, st.Username)
	if err != nil {
		return fmt.Errorf("apply enrollment: update student: %w", err)
	}
	if err := checkUpdated(result, fmt.Sprintf("apply enrollment: student %q", st.Username)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply enrollment: commit: %w", err)
	}
	return nil
}

type execResult interface {
	RowsAffected() (int64, error)
}

// checkUpdated maps a zero-rows-affected update to ErrNotFound.
func checkUpdated(result execResult, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// isConstraintErr reports whether err is a SQLite constraint violation
// (primary key or CHECK).
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
