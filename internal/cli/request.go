package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/registrar/internal/protocol"
)

// RequestOptions holds flags for the request command.
type RequestOptions struct {
	*RootOptions
	Addr string
	Args string
}

// NewRequestCommand creates the request command.
func NewRequestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RequestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "request <command>",
		Short: "Send one command to a running registrar server",
		Long: `Send a single protocol command to a running server and print the
response. Request fields are given as a JSON object via --args.

Example:
  registrar request login --args '{"username":"admin","password":"admin123"}'
  registrar request create_course --args '{"course_name":"CS101","capacity":30,"schedule":"MWF-9"}'
  registrar request register_course --args '{"username":"alice","course_name":"CS101"}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "localhost:7070", "server address")
	cmd.Flags().StringVar(&opts.Args, "args", "{}", "request fields as JSON")

	return cmd
}

func runRequest(opts *RequestOptions, command string, cmd *cobra.Command) error {
	var req protocol.Request
	if err := json.Unmarshal([]byte(opts.Args), &req); err != nil {
		return WrapExitError(ExitCommandError, "invalid --args JSON", err)
	}
	req.Command = command

	resp, err := sendRequest(opts.Addr, req)
	if err != nil {
		return WrapExitError(ExitCommandError, "request failed", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := printResponse(out, resp); err != nil {
		return err
	}

	if resp.Status != protocol.StatusSuccess {
		return NewExitError(ExitFailure, fmt.Sprintf("server returned %s: %s", resp.Code, resp.Message))
	}
	return nil
}

// sendRequest dials the server, performs one request/response
// exchange, and closes the connection.
func sendRequest(addr string, req protocol.Request) (protocol.Response, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := protocol.WriteRequest(conn, req); err != nil {
		return protocol.Response{}, err
	}
	return protocol.ReadResponse(bufio.NewReader(conn))
}

// printResponse renders a response envelope in the configured format.
func printResponse(out *OutputFormatter, resp protocol.Response) error {
	if out.Format == "json" {
		return out.JSON(resp)
	}

	if resp.Status != protocol.StatusSuccess {
		return out.Error(resp.Code, resp.Message)
	}

	switch {
	case resp.Role != "":
		fmt.Fprintf(out.Writer, "Logged in as %s\n", resp.Role)
	case resp.Courses != nil:
		printCourseTable(out, resp.Courses)
	case resp.RegisteredCourses != nil:
		for _, name := range resp.RegisteredCourses {
			fmt.Fprintln(out.Writer, name)
		}
	default:
		fmt.Fprintln(out.Writer, resp.Message)
	}
	return nil
}

// printCourseTable renders course summaries as a fixed-width table.
func printCourseTable(out *OutputFormatter, courses []protocol.CourseSummary) {
	fmt.Fprintf(out.Writer, "%-12s %8s %9s %-10s %s\n", "COURSE", "CAPACITY", "REMAINING", "SCHEDULE", "STUDENTS")
	for _, c := range courses {
		fmt.Fprintf(out.Writer, "%-12s %8d %9d %-10s %s\n",
			c.CourseName, c.Capacity, c.Remaining, c.Schedule, strings.Join(c.Students, ","))
	}
}
