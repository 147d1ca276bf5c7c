package protocol

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequest_Frame(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(
		`{"command":"register_course","username":"alice","course_name":"CS101"}` + "\n"))

	req, err := ReadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, CmdRegisterCourse, req.Command)
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "CS101", req.CourseName)
}

func TestReadRequest_IgnoresUnknownKeys(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(
		`{"command":"login","username":"admin","password":"pw","shoe_size":42}` + "\n"))

	req, err := ReadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, CmdLogin, req.Command)
}

func TestReadRequest_FinalFrameWithoutNewline(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(`{"command":"list_courses"}`))

	req, err := ReadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, CmdListCourses, req.Command)

	_, err = ReadRequest(r)
	assert.Equal(t, io.EOF, err)
}

func TestReadRequest_MalformedKeepsReaderUsable(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(
		"this is not json\n" + `{"command":"list_courses"}` + "\n"))

	_, err := ReadRequest(r)
	require.ErrorIs(t, err, ErrMalformed)

	req, err := ReadRequest(r)
	require.NoError(t, err)
	assert.Equal(t, CmdListCourses, req.Command)
}

func TestReadRequest_EOF(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(""))

	_, err := ReadRequest(r)
	assert.Equal(t, io.EOF, err)
}

func TestRequestResponse_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteRequest(&buf, Request{Command: CmdLogin, Username: "admin", Password: "admin123"}))
	req, err := ReadRequest(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "admin", req.Username)

	buf.Reset()
	resp := Response{
		Status: StatusSuccess,
		Courses: []CourseSummary{
			{CourseName: "CS101", Capacity: 30, Remaining: 29, Schedule: "MWF-9", Students: []string{"alice"}},
		},
	}
	require.NoError(t, WriteResponse(&buf, resp))

	got, err := ReadResponse(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Len(t, got.Courses, 1)
	assert.Equal(t, "CS101", got.Courses[0].CourseName)
	assert.Equal(t, 29, got.Courses[0].Remaining)
}

func TestWriteResponse_ErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResponse(&buf, Err("CAPACITY_EXCEEDED", "Course is full")))

	got, err := ReadResponse(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "CAPACITY_EXCEEDED", got.Code)
	assert.Equal(t, "Course is full", got.Message)
}
