package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/registrar/internal/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_BootstrapsDefaultAdmin(t *testing.T) {
	s := openTestStore(t)

	admin, err := s.GetAdmin(context.Background(), defaultAdminUsername)
	if err != nil {
		t.Fatalf("GetAdmin() failed: %v", err)
	}
	if !admin.Credential.Verify(defaultAdminPassword) {
		t.Error("default admin credential does not verify")
	}
	if admin.Credential.Verify("wrong") {
		t.Error("default admin credential verified a wrong password")
	}
}

func TestOpen_BootstrapRunsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Errorf("admins = %d, want 1", count)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"courses", "students", "admins"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestCourse_CreateGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := record.Course{
		Name:     "CS101",
		Capacity: 30,
		Schedule: "MWF-9",
		Enrolled: []string{"alice", "bob"},
	}
	if err := s.CreateCourse(ctx, want); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	got, err := s.GetCourse(ctx, "CS101")
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if got.Name != want.Name || got.Capacity != want.Capacity || got.Schedule != want.Schedule {
		t.Errorf("GetCourse() = %+v, want %+v", got, want)
	}
	if len(got.Enrolled) != 2 || got.Enrolled[0] != "alice" || got.Enrolled[1] != "bob" {
		t.Errorf("Enrolled = %v, want [alice bob]", got.Enrolled)
	}
	if got.Remaining() != 28 {
		t.Errorf("Remaining() = %d, want 28", got.Remaining())
	}
}

func TestCourse_CreateDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := record.Course{Name: "CS101", Capacity: 10, Schedule: "MWF-9"}
	if err := s.CreateCourse(ctx, c); err != nil {
		t.Fatalf("first CreateCourse() failed: %v", err)
	}

	err := s.CreateCourse(ctx, c)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate CreateCourse() = %v, want ErrAlreadyExists", err)
	}
}

func TestCourse_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetCourse(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCourse(missing) = %v, want ErrNotFound", err)
	}
}

func TestPutCourse_Missing(t *testing.T) {
	s := openTestStore(t)

	err := s.PutCourse(context.Background(), record.Course{Name: "ghost", Capacity: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("PutCourse(missing) = %v, want ErrNotFound", err)
	}
}

func TestStudent_CreateGetPut(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cred, err := record.NewCredential("pw")
	if err != nil {
		t.Fatalf("NewCredential() failed: %v", err)
	}
	st := record.Student{Username: "alice", Credential: cred}
	if err := s.CreateStudent(ctx, st); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}

	got, err := s.GetStudent(ctx, "alice")
	if err != nil {
		t.Fatalf("GetStudent() failed: %v", err)
	}
	if !got.Credential.Verify("pw") {
		t.Error("stored credential does not verify")
	}
	if len(got.Registered) != 0 {
		t.Errorf("Registered = %v, want empty", got.Registered)
	}

	got.Registered = []string{"CS101"}
	if err := s.PutStudent(ctx, got); err != nil {
		t.Fatalf("PutStudent() failed: %v", err)
	}

	got, err = s.GetStudent(ctx, "alice")
	if err != nil {
		t.Fatalf("GetStudent() after put failed: %v", err)
	}
	if len(got.Registered) != 1 || got.Registered[0] != "CS101" {
		t.Errorf("Registered = %v, want [CS101]", got.Registered)
	}
}

func TestStudent_CreateDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cred, _ := record.NewCredential("pw")
	st := record.Student{Username: "alice", Credential: cred}
	if err := s.CreateStudent(ctx, st); err != nil {
		t.Fatalf("first CreateStudent() failed: %v", err)
	}

	err := s.CreateStudent(ctx, st)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate CreateStudent() = %v, want ErrAlreadyExists", err)
	}
}

func TestHasUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cred, _ := record.NewCredential("pw")
	if err := s.CreateStudent(ctx, record.Student{Username: "alice", Credential: cred}); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}

	cases := []struct {
		username string
		want     bool
	}{
		{"alice", true},
		{defaultAdminUsername, true},
		{"ghost", false},
	}
	for _, tc := range cases {
		got, err := s.HasUser(ctx, tc.username)
		if err != nil {
			t.Fatalf("HasUser(%q) failed: %v", tc.username, err)
		}
		if got != tc.want {
			t.Errorf("HasUser(%q) = %v, want %v", tc.username, got, tc.want)
		}
	}
}

func TestListCourses_OrderedByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"CS102", "CS101", "MATH201"} {
		if err := s.CreateCourse(ctx, record.Course{Name: name, Capacity: 5, Schedule: "TTh-10"}); err != nil {
			t.Fatalf("CreateCourse(%q) failed: %v", name, err)
		}
	}

	courses, err := s.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses() failed: %v", err)
	}
	want := []string{"CS101", "CS102", "MATH201"}
	if len(courses) != len(want) {
		t.Fatalf("ListCourses() returned %d courses, want %d", len(courses), len(want))
	}
	for i, name := range want {
		if courses[i].Name != name {
			t.Errorf("courses[%d].Name = %q, want %q", i, courses[i].Name, name)
		}
	}
}

func TestListCourses_Empty(t *testing.T) {
	s := openTestStore(t)

	courses, err := s.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses() failed: %v", err)
	}
	if courses == nil {
		t.Error("ListCourses() returned nil, want empty slice")
	}
	if len(courses) != 0 {
		t.Errorf("ListCourses() = %v, want empty", courses)
	}
}

func TestApplyEnrollment_CommitsBothRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cred, _ := record.NewCredential("pw")
	if err := s.CreateStudent(ctx, record.Student{Username: "alice", Credential: cred}); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if err := s.CreateCourse(ctx, record.Course{Name: "CS101", Capacity: 2, Schedule: "MWF-9"}); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	course, _ := s.GetCourse(ctx, "CS101")
	student, _ := s.GetStudent(ctx, "alice")
	course.Enrolled = append(course.Enrolled, "alice")
	student.Registered = append(student.Registered, "CS101")

	if err := s.ApplyEnrollment(ctx, course, student); err != nil {
		t.Fatalf("ApplyEnrollment() failed: %v", err)
	}

	course, _ = s.GetCourse(ctx, "CS101")
	student, _ = s.GetStudent(ctx, "alice")
	if !course.HasStudent("alice") {
		t.Error("course roster missing alice after ApplyEnrollment")
	}
	if !student.HasCourse("CS101") {
		t.Error("student registration missing CS101 after ApplyEnrollment")
	}
}

func TestApplyEnrollment_MissingStudentRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.CreateCourse(ctx, record.Course{Name: "CS101", Capacity: 2, Schedule: "MWF-9"}); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	course, _ := s.GetCourse(ctx, "CS101")
	course.Enrolled = append(course.Enrolled, "ghost")
	ghost := record.Student{Username: "ghost", Registered: []string{"CS101"}}

	err := s.ApplyEnrollment(ctx, course, ghost)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ApplyEnrollment(missing student) = %v, want ErrNotFound", err)
	}

	// The course update must have been rolled back with it.
	course, _ = s.GetCourse(ctx, "CS101")
	if len(course.Enrolled) != 0 {
		t.Errorf("course roster = %v after failed enrollment, want empty", course.Enrolled)
	}
}
