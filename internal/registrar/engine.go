package registrar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/registrar/internal/record"
	"github.com/roach88/registrar/internal/store"
)

// DefaultMaxRegistrations is the per-student course limit.
const DefaultMaxRegistrations = 5

// Engine enforces enrollment rules over the record store.
//
// All writes to course and student records go through the engine; the
// transport layer never touches the store directly. Every operation is
// a short, synchronous call safe for concurrent use from any number of
// connection goroutines.
type Engine struct {
	store            *store.Store
	locks            *lockTable
	maxRegistrations int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithMaxRegistrations overrides the per-student course limit.
//
// Default: 5 (DefaultMaxRegistrations).
// Use WithMaxRegistrations(1) for testing limit enforcement.
func WithMaxRegistrations(n int) Option {
	return func(e *Engine) {
		e.maxRegistrations = n
	}
}

// New creates an Engine over the given store.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:            s,
		locks:            newLockTable(),
		maxRegistrations: DefaultMaxRegistrations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authenticate verifies a username/password pair.
// Admins are checked before students, matching the account namespaces'
// precedence. Returns the account role, or an OpError with
// CodeInvalidCredentials. No side effects.
func (e *Engine) Authenticate(ctx context.Context, username, password string) (record.Role, error) {
	admin, err := e.store.GetAdmin(ctx, username)
	if err == nil {
		if admin.Credential.Verify(password) {
			return record.RoleAdmin, nil
		}
		return "", E(CodeInvalidCredentials, "Invalid credentials")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", internalErr("authenticate", err)
	}

	student, err := e.store.GetStudent(ctx, username)
	if err == nil {
		if student.Credential.Verify(password) {
			return record.RoleStudent, nil
		}
		return "", E(CodeInvalidCredentials, "Invalid credentials")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", internalErr("authenticate", err)
	}

	return "", E(CodeInvalidCredentials, "Invalid credentials")
}

// CreateCourse creates a course with an empty roster.
// Fails with CodeInvalidCapacity for non-positive capacities and
// CodeAlreadyExists for duplicate names.
func (e *Engine) CreateCourse(ctx context.Context, name string, capacity int, schedule string) error {
	if capacity <= 0 {
		return E(CodeInvalidCapacity, fmt.Sprintf("capacity must be positive, got %d", capacity))
	}

	release := e.locks.acquire(courseKey(name))
	defer release()

	err := e.store.CreateCourse(ctx, record.Course{
		Name:     name,
		Capacity: capacity,
		Schedule: schedule,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return E(CodeAlreadyExists, "Course already exists")
	}
	if err != nil {
		return internalErr("create course", err)
	}

	slog.Debug("course created", "course", name, "capacity", capacity, "schedule", schedule)
	return nil
}

// UpdateCourseCapacity raises a course's capacity.
// Shrinking is disallowed - seats already filled cannot be revoked -
// so any newCapacity below the current capacity fails with
// CodeInvalidCapacity and leaves the course unchanged.
func (e *Engine) UpdateCourseCapacity(ctx context.Context, name string, newCapacity int) error {
	release := e.locks.acquire(courseKey(name))
	defer release()

	course, err := e.store.GetCourse(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return E(CodeNotFound, "Course does not exist")
	}
	if err != nil {
		return internalErr("update course capacity", err)
	}

	if newCapacity < course.Capacity {
		return E(CodeInvalidCapacity, fmt.Sprintf(
			"capacity may only grow: %d is below current %d", newCapacity, course.Capacity))
	}

	course.Capacity = newCapacity
	if err := e.store.PutCourse(ctx, course); err != nil {
		return internalErr("update course capacity", err)
	}

	slog.Debug("course capacity updated", "course", name, "capacity", newCapacity)
	return nil
}

// AddStudent creates a student account with an empty registration set.
// Fails with CodeAlreadyExists if the username is taken by a student
// or an admin; the existing record is left untouched.
func (e *Engine) AddStudent(ctx context.Context, username, password string) error {
	release := e.locks.acquire(studentKey(username))
	defer release()

	taken, err := e.store.HasUser(ctx, username)
	if err != nil {
		return internalErr("add student", err)
	}
	if taken {
		return E(CodeAlreadyExists, "Student already exists")
	}

	cred, err := record.NewCredential(password)
	if err != nil {
		return internalErr("add student", err)
	}

	err = e.store.CreateStudent(ctx, record.Student{
		Username:   username,
		Credential: cred,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return E(CodeAlreadyExists, "Student already exists")
	}
	if err != nil {
		return internalErr("add student", err)
	}

	slog.Debug("student added", "student", username)
	return nil
}

// Register enrolls a student in a course.
//
// The whole read-check-write sequence runs under the course and
// student keys, so a seat can never be double-sold and the course
// roster and student registration list move together.
func (e *Engine) Register(ctx context.Context, username, courseName string) error {
	release := e.locks.acquire(courseKey(courseName), studentKey(username))
	defer release()

	student, err := e.store.GetStudent(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return E(CodeNotFound, "Student does not exist")
	}
	if err != nil {
		return internalErr("register", err)
	}

	course, err := e.store.GetCourse(ctx, courseName)
	if errors.Is(err, store.ErrNotFound) {
		return E(CodeNotFound, "Course does not exist")
	}
	if err != nil {
		return internalErr("register", err)
	}

	// Re-registering a held course is an explicit failure, not a
	// silent set no-op.
	if student.HasCourse(courseName) {
		return E(CodeAlreadyExists, "Already registered for course")
	}

	if course.Remaining() <= 0 {
		return E(CodeCapacityExceeded, "Course is full")
	}

	if len(student.Registered) >= e.maxRegistrations {
		return E(CodeRegistrationLimitExceeded, fmt.Sprintf(
			"registration limit of %d courses reached", e.maxRegistrations))
	}

	if err := e.checkScheduleConflict(ctx, student, course.Schedule); err != nil {
		return err
	}

	course.Enrolled = append(course.Enrolled, username)
	student.Registered = append(student.Registered, courseName)
	if err := e.store.ApplyEnrollment(ctx, course, student); err != nil {
		return internalErr("register", err)
	}

	slog.Debug("registered", "student", username, "course", courseName, "remaining", course.Remaining())
	return nil
}

// Withdraw removes a student from a course, restoring one seat.
func (e *Engine) Withdraw(ctx context.Context, username, courseName string) error {
	release := e.locks.acquire(courseKey(courseName), studentKey(username))
	defer release()

	student, err := e.store.GetStudent(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return E(CodeNotFound, "Student does not exist")
	}
	if err != nil {
		return internalErr("withdraw", err)
	}

	course, err := e.store.GetCourse(ctx, courseName)
	if errors.Is(err, store.ErrNotFound) {
		return E(CodeNotFound, "Course does not exist")
	}
	if err != nil {
		return internalErr("withdraw", err)
	}

	if !student.HasCourse(courseName) {
		return E(CodeNotRegistered, "Not registered for course")
	}

	course.Enrolled = record.Remove(course.Enrolled, username)
	student.Registered = record.Remove(student.Registered, courseName)
	if err := e.store.ApplyEnrollment(ctx, course, student); err != nil {
		return internalErr("withdraw", err)
	}

	slog.Debug("withdrawn", "student", username, "course", courseName, "remaining", course.Remaining())
	return nil
}

// ListCourses returns every course. Read-only.
func (e *Engine) ListCourses(ctx context.Context) ([]record.Course, error) {
	courses, err := e.store.ListCourses(ctx)
	if err != nil {
		return nil, internalErr("list courses", err)
	}
	return courses, nil
}

// ListRegistered returns the names of the courses the student holds.
// Fails with CodeNotFound for an unknown student.
func (e *Engine) ListRegistered(ctx context.Context, username string) ([]string, error) {
	student, err := e.store.GetStudent(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, E(CodeNotFound, "Student does not exist")
	}
	if err != nil {
		return nil, internalErr("list registered", err)
	}
	return student.Registered, nil
}

// checkScheduleConflict fails if any course the student holds carries
// the given schedule tag. Schedules are immutable after creation, so
// reading the held courses here without their locks is safe.
func (e *Engine) checkScheduleConflict(ctx context.Context, student record.Student, schedule string) error {
	for _, held := range student.Registered {
		heldCourse, err := e.store.GetCourse(ctx, held)
		if err != nil {
			// A held course that cannot be read means the two record
			// views diverged; surface it rather than guessing.
			return internalErr("check schedule conflict", err)
		}
		if heldCourse.Schedule == schedule {
			return E(CodeScheduleConflict, fmt.Sprintf(
				"schedule conflict with registered course %s", held))
		}
	}
	return nil
}
