// Package shelltest provides a recording shell.Runner for tests.
package shelltest

import (
	"context"
	"strings"

	"github.com/1broseidon/wsorg/internal/shell"
)

// Handler produces the outcome for a matched command.
type Handler func(args []string) (shell.Result, error)

type route struct {
	prefix  string
	handler Handler
}

// Fake is a shell.Runner that records every command line and answers from
// registered routes. Unmatched commands succeed with empty output.
type Fake struct {
	Calls  []string
	routes []route
}

var _ shell.Runner = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{}
}

// On answers commands whose rendered line starts with prefix. Later routes
// take precedence over earlier ones.
func (f *Fake) On(prefix string, res shell.Result) *Fake {
	return f.OnFunc(prefix, func([]string) (shell.Result, error) { return res, nil })
}

// OnOutput is shorthand for a successful command printing stdout.
func (f *Fake) OnOutput(prefix, stdout string) *Fake {
	return f.On(prefix, shell.Result{OK: true, Stdout: stdout})
}

// OnFail makes matching commands exit with code 1 and the given stderr.
func (f *Fake) OnFail(prefix, stderr string) *Fake {
	return f.On(prefix, shell.Result{ExitCode: 1, Stderr: stderr})
}

// OnFunc registers a dynamic handler.
func (f *Fake) OnFunc(prefix string, h Handler) *Fake {
	f.routes = append(f.routes, route{prefix: prefix, handler: h})
	return f
}

func (f *Fake) Run(_ context.Context, expected int, name string, args ...string) (shell.Result, error) {
	line := shell.Join(name, args...)
	f.Calls = append(f.Calls, line)
	for i := len(f.routes) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, f.routes[i].prefix) {
			res, err := f.routes[i].handler(append([]string{name}, args...))
			if err == nil && !res.OK && res.ExitCode == expected {
				res.OK = true
			}
			return res, err
		}
	}
	return shell.Result{OK: expected == 0, ExitCode: 0}, nil
}

// CallsWithPrefix returns the recorded command lines starting with prefix.
func (f *Fake) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps routes.
func (f *Fake) Reset() {
	f.Calls = nil
}
