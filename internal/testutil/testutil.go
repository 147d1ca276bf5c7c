// Package testutil provides shared fixtures for registrar tests:
// temp-file stores and pre-seeded engines.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/registrar/internal/registrar"
	"github.com/roach88/registrar/internal/store"
)

// OpenStore opens a fresh SQLite store under t.TempDir and closes it
// when the test finishes.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "registrar.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewEngine creates an engine over a fresh store.
func NewEngine(t *testing.T, opts ...registrar.Option) *registrar.Engine {
	t.Helper()
	return registrar.New(OpenStore(t), opts...)
}

// Seed is a convenience initial state for integration tests.
type Seed struct {
	Students []string
	Courses  []SeedCourse
}

// SeedCourse describes one course to create.
type SeedCourse struct {
	Name     string
	Capacity int
	Schedule string
}

// NewSeededEngine creates an engine and populates it. All students
// get the password "pw".
func NewSeededEngine(t *testing.T, seed Seed, opts ...registrar.Option) *registrar.Engine {
	t.Helper()
	eng := NewEngine(t, opts...)
	ctx := context.Background()
	for _, username := range seed.Students {
		if err := eng.AddStudent(ctx, username, "pw"); err != nil {
			t.Fatalf("seed student %q: %v", username, err)
		}
	}
	for _, c := range seed.Courses {
		if err := eng.CreateCourse(ctx, c.Name, c.Capacity, c.Schedule); err != nil {
			t.Fatalf("seed course %q: %v", c.Name, err)
		}
	}
	return eng
}
