package server

import (
	"context"
	"fmt"

	"github.com/roach88/registrar/internal/protocol"
	"github.com/roach88/registrar/internal/registrar"
)

// Dispatcher maps a command tag to one engine operation and shapes the
// result into the wire envelope. It validates the presence of required
// fields before calling the engine and enforces no business rules of
// its own.
type Dispatcher struct {
	eng *registrar.Engine
}

// NewDispatcher creates a dispatcher over the given engine.
func NewDispatcher(eng *registrar.Engine) *Dispatcher {
	return &Dispatcher{eng: eng}
}

// Dispatch handles a single request. Every failure, including an
// unknown command, comes back as an error envelope; Dispatch never
// returns an error to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, req protocol.Request) protocol.Response {
	switch req.Command {
	case protocol.CmdLogin:
		return d.login(ctx, req)
	case protocol.CmdListCourses:
		return d.listCourses(ctx)
	case protocol.CmdGetRegisteredCourses:
		return d.getRegisteredCourses(ctx, req)
	case protocol.CmdRegisterCourse:
		return d.registerCourse(ctx, req)
	case protocol.CmdWithdrawCourse:
		return d.withdrawCourse(ctx, req)
	case protocol.CmdCreateCourse:
		return d.createCourse(ctx, req)
	case protocol.CmdUpdateCourse:
		return d.updateCourse(ctx, req)
	case protocol.CmdAddStudent:
		return d.addStudent(ctx, req)
	default:
		return protocol.Err(string(registrar.CodeInvalidCommand), "Invalid command")
	}
}

func (d *Dispatcher) login(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(field{"username", req.Username}, field{"password", req.Password}); !ok {
		return resp
	}
	role, err := d.eng.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return errEnvelope(err)
	}
	return protocol.Response{Status: protocol.StatusSuccess, Role: string(role)}
}

func (d *Dispatcher) listCourses(ctx context.Context) protocol.Response {
	courses, err := d.eng.ListCourses(ctx)
	if err != nil {
		return errEnvelope(err)
	}
	summaries := make([]protocol.CourseSummary, len(courses))
	for i, c := range courses {
		summaries[i] = protocol.CourseSummary{
			CourseName: c.Name,
			Capacity:   c.Capacity,
			Remaining:  c.Remaining(),
			Schedule:   c.Schedule,
			Students:   c.Enrolled,
		}
	}
	return protocol.Response{Status: protocol.StatusSuccess, Courses: summaries}
}

func (d *Dispatcher) getRegisteredCourses(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(field{"username", req.Username}); !ok {
		return resp
	}
	registered, err := d.eng.ListRegistered(ctx, req.Username)
	if err != nil {
		return errEnvelope(err)
	}
	return protocol.Response{Status: protocol.StatusSuccess, RegisteredCourses: registered}
}

func (d *Dispatcher) registerCourse(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(field{"username", req.Username}, field{"course_name", req.CourseName}); !ok {
		return resp
	}
	if err := d.eng.Register(ctx, req.Username, req.CourseName); err != nil {
		return errEnvelope(err)
	}
	return protocol.OK("Course registered successfully")
}

func (d *Dispatcher) withdrawCourse(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(field{"username", req.Username}, field{"course_name", req.CourseName}); !ok {
		return resp
	}
	if err := d.eng.Withdraw(ctx, req.Username, req.CourseName); err != nil {
		return errEnvelope(err)
	}
	return protocol.OK("Course withdrawn successfully")
}

func (d *Dispatcher) createCourse(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(
		field{"course_name", req.CourseName},
		field{"capacity", req.Capacity},
		field{"schedule", req.Schedule},
	); !ok {
		return resp
	}
	if err := d.eng.CreateCourse(ctx, req.CourseName, *req.Capacity, req.Schedule); err != nil {
		return errEnvelope(err)
	}
	return protocol.OK("Course created successfully")
}

func (d *Dispatcher) updateCourse(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(
		field{"course_name", req.CourseName},
		field{"new_capacity", req.NewCapacity},
	); !ok {
		return resp
	}
	if err := d.eng.UpdateCourseCapacity(ctx, req.CourseName, *req.NewCapacity); err != nil {
		return errEnvelope(err)
	}
	return protocol.OK("Course capacity updated")
}

func (d *Dispatcher) addStudent(ctx context.Context, req protocol.Request) protocol.Response {
	if resp, ok := requireFields(
		field{"student_username", req.StudentUsername},
		field{"student_password", req.StudentPassword},
	); !ok {
		return resp
	}
	if err := d.eng.AddStudent(ctx, req.StudentUsername, req.StudentPassword); err != nil {
		return errEnvelope(err)
	}
	return protocol.OK("Student added successfully")
}

// field pairs a wire key with its decoded value for presence checks.
// An empty string or nil pointer counts as absent; numeric fields are
// pointers so an explicit zero still reaches the engine's validation.
type field struct {
	key   string
	value any
}

// requireFields checks that every field is present, returning a
// MALFORMED_REQUEST envelope naming the first missing key.
func requireFields(fields ...field) (protocol.Response, bool) {
	for _, f := range fields {
		missing := false
		switch v := f.value.(type) {
		case string:
			missing = v == ""
		case *int:
			missing = v == nil
		}
		if missing {
			return protocol.Err(
				string(registrar.CodeMalformedRequest),
				fmt.Sprintf("missing required field: %s", f.key),
			), false
		}
	}
	return protocol.Response{}, true
}

// errEnvelope converts an engine failure into the wire envelope.
func errEnvelope(err error) protocol.Response {
	return protocol.Err(string(registrar.CodeOf(err)), registrar.MessageOf(err))
}
