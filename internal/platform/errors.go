package platform

import "fmt"

// CommandError reports an external command that could not be run or exited
// with an unexpected code.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Command, e.ExitCode, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError reports command output that could not be understood.
type ParseError struct {
	Command string
	Line    string
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s in %q", e.Command, e.Msg, e.Line)
}
