package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/registrar/internal/protocol"
)

// CoursesOptions holds flags for the courses command.
type CoursesOptions struct {
	*RootOptions
	Addr string
}

// NewCoursesCommand creates the courses command, a shorthand for
// `request list_courses` with table output.
func NewCoursesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoursesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses on a running registrar server",
		Example: `  registrar courses
  registrar courses --addr registrar.example.edu:7070 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendRequest(opts.Addr, protocol.Request{Command: protocol.CmdListCourses})
			if err != nil {
				return WrapExitError(ExitCommandError, "request failed", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if err := printResponse(out, resp); err != nil {
				return err
			}
			if resp.Status != protocol.StatusSuccess {
				return NewExitError(ExitFailure, resp.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "localhost:7070", "server address")

	return cmd
}
