package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/registrar/internal/protocol"
	"github.com/roach88/registrar/internal/server"
	"github.com/roach88/registrar/internal/testutil"
)

// startServer serves a seeded engine on an ephemeral port.
func startServer(t *testing.T, seed testutil.Seed) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(server.Config{}, testutil.NewSeededEngine(t, seed))

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return ln.Addr().String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRequest_LoginJSON(t *testing.T) {
	addr := startServer(t, testutil.Seed{})

	out, err := execute(t,
		"request", "login",
		"--addr", addr,
		"--args", `{"username":"admin","password":"admin123"}`,
		"--format", "json",
	)
	require.NoError(t, err)

	var resp protocol.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, protocol.StatusSuccess, resp.Status)
	assert.Equal(t, "admin", resp.Role)
}

func TestRequest_FailedLoginExitsNonzero(t *testing.T) {
	addr := startServer(t, testutil.Seed{})

	out, err := execute(t,
		"request", "login",
		"--addr", addr,
		"--args", `{"username":"admin","password":"wrong"}`,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "INVALID_CREDENTIALS")
}

func TestRequest_InvalidArgsJSON(t *testing.T) {
	_, err := execute(t, "request", "login", "--args", "{not json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRequest_UnreachableServer(t *testing.T) {
	_, err := execute(t, "request", "list_courses", "--addr", "127.0.0.1:1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCourses_Table(t *testing.T) {
	addr := startServer(t, testutil.Seed{
		Students: []string{"alice"},
		Courses: []testutil.SeedCourse{
			{Name: "CS101", Capacity: 30, Schedule: "MWF-9"},
			{Name: "CS102", Capacity: 25, Schedule: "TTh-10"},
		},
	})

	out, err := execute(t, "courses", "--addr", addr)
	require.NoError(t, err)
	assert.Contains(t, out, "COURSE")
	assert.Contains(t, out, "CS101")
	assert.Contains(t, out, "MWF-9")
	assert.Contains(t, out, "CS102")
}

func TestRequest_RegisterFlow(t *testing.T) {
	addr := startServer(t, testutil.Seed{
		Students: []string{"alice"},
		Courses:  []testutil.SeedCourse{{Name: "CS101", Capacity: 1, Schedule: "MWF-9"}},
	})

	out, err := execute(t,
		"request", "register_course",
		"--addr", addr,
		"--args", `{"username":"alice","course_name":"CS101"}`,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Course registered successfully")

	// The seat is gone now; a second student cannot take it.
	out, err = execute(t,
		"request", "add_student",
		"--addr", addr,
		"--args", `{"student_username":"bob","student_password":"pw"}`,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Student added successfully")

	out, err = execute(t,
		"request", "register_course",
		"--addr", addr,
		"--args", `{"username":"bob","course_name":"CS101"}`,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "CAPACITY_EXCEEDED")
}
