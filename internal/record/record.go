// Package record defines the three record kinds held by the store:
// courses, students, and admins. These types are shared by the store
// (which persists them) and the registrar engine (which owns all
// writes to them). The package itself carries no business rules.
package record

// Role identifies the account kind returned by authentication.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Course is a capacity-limited, schedule-tagged course.
//
// Remaining seats are always derived from Capacity and Enrolled,
// never stored. Name and Schedule are immutable once the course is
// created; Capacity may only grow.
type Course struct {
	Name     string
	Capacity int
	Schedule string
	Enrolled []string
}

// Remaining returns the number of open seats.
func (c Course) Remaining() int {
	return c.Capacity - len(c.Enrolled)
}

// HasStudent reports whether username holds a seat in the course.
func (c Course) HasStudent(username string) bool {
	return contains(c.Enrolled, username)
}

// Student is an enrollable account.
type Student struct {
	Username   string
	Credential Credential
	Registered []string
}

// HasCourse reports whether the student holds a seat in courseName.
func (s Student) HasCourse(courseName string) bool {
	return contains(s.Registered, courseName)
}

// Admin is a distinguished account with no enrollment state. At least
// one admin record exists for the lifetime of the store.
type Admin struct {
	Username   string
	Credential Credential
}

func contains(set []string, v string) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

// Remove returns set without v. The input slice is not modified.
func Remove(set []string, v string) []string {
	out := make([]string, 0, len(set))
	for _, e := range set {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}
