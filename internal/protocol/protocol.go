// Package protocol defines the registrar wire protocol: one JSON
// object per request and per response, newline-delimited, over a
// persistent TCP connection.
//
// Unknown request keys are ignored; a missing required key is a
// request-level error, answered with a MALFORMED_REQUEST envelope.
// An undecodable frame gets the same envelope and the connection
// stays open.
//
// The protocol carries no session token: the asserted username is
// trusted on every request. That is a documented weakness of the wire
// format, kept for compatibility, not a guarantee of this package.
package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Command tags recognized by the dispatcher.
const (
	CmdLogin                = "login"
	CmdListCourses          = "list_courses"
	CmdGetRegisteredCourses = "get_registered_courses"
	CmdRegisterCourse       = "register_course"
	CmdWithdrawCourse       = "withdraw_course"
	CmdCreateCourse         = "create_course"
	CmdUpdateCourse         = "update_course"
	CmdAddStudent           = "add_student"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrMalformed indicates a frame that could not be decoded as a
// request object.
var ErrMalformed = errors.New("malformed request")

// Request is a single client request. Extra keys are ignored by
// decoding; which fields are required depends on the command.
type Request struct {
	Command         string `json:"command"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	CourseName      string `json:"course_name,omitempty"`
	Capacity        *int   `json:"capacity,omitempty"`
	NewCapacity     *int   `json:"new_capacity,omitempty"`
	Schedule        string `json:"schedule,omitempty"`
	StudentUsername string `json:"student_username,omitempty"`
	StudentPassword string `json:"student_password,omitempty"`
}

// CourseSummary is one entry of a list_courses response. Field names
// match the stored record shape; students is an unordered set.
type CourseSummary struct {
	CourseName string   `json:"course_name"`
	Capacity   int      `json:"capacity"`
	Remaining  int      `json:"remaining"`
	Schedule   string   `json:"schedule"`
	Students   []string `json:"students"`
}

// Response is the uniform success/error envelope.
type Response struct {
	Status            string          `json:"status"`
	Message           string          `json:"message,omitempty"`
	Code              string          `json:"code,omitempty"`
	Role              string          `json:"role,omitempty"`
	Courses           []CourseSummary `json:"courses,omitempty"`
	RegisteredCourses []string        `json:"registered_courses,omitempty"`
}

// OK builds a success envelope with a human-readable message.
func OK(message string) Response {
	return Response{Status: StatusSuccess, Message: message}
}

// Err builds an error envelope with a stable code and message.
func Err(code, message string) Response {
	return Response{Status: StatusError, Code: code, Message: message}
}

// ReadRequest reads one newline-delimited request frame.
//
// Returns io.EOF when the peer has closed the connection. A frame
// that is not a JSON object yields an error wrapping ErrMalformed;
// the reader stays usable for the next frame.
func ReadRequest(r *bufio.Reader) (Request, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return Request{}, fmt.Errorf("read frame: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		if err == io.EOF {
			return Request{}, io.EOF
		}
		// Blank line between frames; tolerate it.
		return Request{}, fmt.Errorf("%w: empty frame", ErrMalformed)
	}

	var req Request
	if jsonErr := json.Unmarshal([]byte(line), &req); jsonErr != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, jsonErr)
	}
	if err == io.EOF {
		// Final frame without a trailing newline; deliver it and let
		// the next read report EOF.
		return req, nil
	}
	return req, nil
}

// WriteResponse writes one newline-delimited response frame.
func WriteResponse(w io.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// WriteRequest writes one newline-delimited request frame.
// Used by the client side of the protocol.
func WriteRequest(w io.Writer, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// ReadResponse reads one newline-delimited response frame.
// Used by the client side of the protocol.
func ReadResponse(r *bufio.Reader) (Response, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return Response{}, fmt.Errorf("read frame: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return Response{}, io.EOF
	}

	var resp Response
	if jsonErr := json.Unmarshal([]byte(line), &resp); jsonErr != nil {
		return Response{}, fmt.Errorf("decode response: %w", jsonErr)
	}
	return resp, nil
}
