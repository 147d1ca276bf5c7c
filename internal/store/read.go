package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/registrar/internal/record"
)

// GetCourse returns the course with the given name.
// Returns ErrNotFound if no such course exists.
func (s *Store) GetCourse(ctx context.Context, name string) (record.Course, error) {
	var (
		c      record.Course
		roster string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, capacity, schedule, roster
		FROM courses
		WHERE name = ?
	`, name).Scan(&c.Name, &c.Capacity, &c.Schedule, &roster)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Course{}, fmt.Errorf("get course %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return record.Course{}, fmt.Errorf("get course %q: %w", name, err)
	}

	c.Enrolled, err = unmarshalRoster(roster)
	if err != nil {
		return record.Course{}, fmt.Errorf("get course %q: %w", name, err)
	}
	return c, nil
}

// GetStudent returns the student with the given username.
// Returns ErrNotFound if no such student exists.
func (s *Store) GetStudent(ctx context.Context, username string) (record.Student, error) {
	var (
		st         record.Student
		registered string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT username, credential, registered
		FROM students
		WHERE username = ?
	`, username).Scan(&st.Username, &st.Credential, &registered)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Student{}, fmt.Errorf("get student %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return record.Student{}, fmt.Errorf("get student %q: %w", username, err)
	}

	st.Registered, err = unmarshalRoster(registered)
	if err != nil {
		return record.Student{}, fmt.Errorf("get student %q: %w", username, err)
	}
	return st, nil
}

// GetAdmin returns the admin with the given username.
// Returns ErrNotFound if no such admin exists.
func (s *Store) GetAdmin(ctx context.Context, username string) (record.Admin, error) {
	var a record.Admin
	err := s.db.QueryRowContext(ctx, `
		SELECT username, credential
		FROM admins
		WHERE username = ?
	`, username).Scan(&a.Username, &a.Credential)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Admin{}, fmt.Errorf("get admin %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return record.Admin{}, fmt.Errorf("get admin %q: %w", username, err)
	}
	return a, nil
}

// ListCourses returns all courses ordered by name.
//
// The name ordering is for deterministic output only; callers must not
// attach meaning to it. Returns an empty slice (not nil) when the
// courses table is empty.
func (s *Store) ListCourses(ctx context.Context) ([]record.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, capacity, schedule, roster
		FROM courses
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := []record.Course{}
	for rows.Next() {
		var (
			c      record.Course
			roster string
		)
		if err := rows.Scan(&c.Name, &c.Capacity, &c.Schedule, &roster); err != nil {
			return nil, fmt.Errorf("list courses: scan: %w", err)
		}
		c.Enrolled, err = unmarshalRoster(roster)
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: iterate: %w", err)
	}
	return courses, nil
}

// HasUser reports whether username exists as a student or an admin.
// Used to keep the two account namespaces from colliding.
func (s *Store) HasUser(ctx context.Context, username string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students WHERE username = ?) +
			(SELECT COUNT(*) FROM admins WHERE username = ?)
	`, username, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check user %q: %w", username, err)
	}
	return count > 0, nil
}

// HasCourse reports whether a course with the given name exists.
func (s *Store) HasCourse(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM courses WHERE name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check course %q: %w", name, err)
	}
	return count > 0, nil
}
