package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/1broseidon/wsorg/internal/shell"
)

const (
	// gravity passed through to wmctrl -e; 0 keeps the window's own gravity.
	gravity = 0

	tokenMaxVert = "maximized_vert"
	// wmctrl spells the horizontal state "horz", not "horiz".
	tokenMaxHorz = "maximized_horz"
)

// WmctrlBackend drives the window manager through the wmctrl and xrandr
// command line tools.
type WmctrlBackend struct {
	runner shell.Runner
	Wmctrl string
	Xrandr string
}

var _ Backend = (*WmctrlBackend)(nil)

// NewWmctrlBackend creates a backend using the tools found on PATH.
func NewWmctrlBackend(runner shell.Runner) *WmctrlBackend {
	return &WmctrlBackend{
		runner: runner,
		Wmctrl: "wmctrl",
		Xrandr: "xrandr",
	}
}

// Windows lists all managed windows (wmctrl -lxG).
func (b *WmctrlBackend) Windows(ctx context.Context) ([]Window, error) {
	out, err := b.query(ctx, b.Wmctrl, "-lxG")
	if err != nil {
		return nil, err
	}
	return ParseWindows(out)
}

// Desktops lists all virtual desktops (wmctrl -d).
func (b *WmctrlBackend) Desktops(ctx context.Context) ([]Desktop, error) {
	out, err := b.query(ctx, b.Wmctrl, "-d")
	if err != nil {
		return nil, err
	}
	return ParseDesktops(out)
}

// Monitors lists connected monitors (xrandr --props).
func (b *WmctrlBackend) Monitors(ctx context.Context) ([]Monitor, error) {
	out, err := b.query(ctx, b.Xrandr, "--props")
	if err != nil {
		return nil, err
	}
	return ParseMonitors(out)
}

// SetDesktop reassigns a window to another desktop.
func (b *WmctrlBackend) SetDesktop(ctx context.Context, h Handle, desktop int) error {
	return b.exec(ctx, b.Wmctrl, "-i", "-r", string(h), "-t", strconv.Itoa(desktop))
}

// MoveResize applies geom in a single command. Unset axes are passed as -1,
// which wmctrl treats as "leave unchanged".
func (b *WmctrlBackend) MoveResize(ctx context.Context, h Handle, geom Rect) error {
	mvarg := fmt.Sprintf("%d,%d,%d,%d,%d", gravity, geom.X, geom.Y, geom.Width, geom.Height)
	return b.exec(ctx, b.Wmctrl, "-i", "-r", string(h), "-e", mvarg)
}

// AddMaximized sets the requested maximize bits.
func (b *WmctrlBackend) AddMaximized(ctx context.Context, h Handle, state MaxState) error {
	return b.setState(ctx, h, "add", state)
}

// RemoveMaximized clears the requested maximize bits.
func (b *WmctrlBackend) RemoveMaximized(ctx context.Context, h Handle, state MaxState) error {
	return b.setState(ctx, h, "remove", state)
}

func (b *WmctrlBackend) setState(ctx context.Context, h Handle, verb string, state MaxState) error {
	tokens := StateTokens(state)
	if len(tokens) == 0 {
		return nil
	}
	prop := verb + "," + strings.Join(tokens, ",")
	return b.exec(ctx, b.Wmctrl, "-i", "-r", string(h), "-b", prop)
}

// StateTokens returns the wmctrl property names for the set bits.
func StateTokens(state MaxState) []string {
	var tokens []string
	if state.Vertical {
		tokens = append(tokens, tokenMaxVert)
	}
	if state.Horizontal {
		tokens = append(tokens, tokenMaxHorz)
	}
	return tokens
}

func (b *WmctrlBackend) query(ctx context.Context, name string, args ...string) (string, error) {
	res, err := b.runner.Run(ctx, 0, name, args...)
	if err != nil {
		return "", &CommandError{Command: shell.Join(name, args...), ExitCode: -1, Err: err}
	}
	if !res.OK {
		return "", &CommandError{
			Command:  shell.Join(name, args...),
			ExitCode: res.ExitCode,
			Stderr:   strings.TrimSpace(res.Stderr),
		}
	}
	return res.Stdout, nil
}

func (b *WmctrlBackend) exec(ctx context.Context, name string, args ...string) error {
	_, err := b.query(ctx, name, args...)
	return err
}

// ParseWindows parses wmctrl -lxG output. Each line is
// "handle desktop x y w h class host [title]"; dialogs may have no title.
func ParseWindows(out string) ([]Window, error) {
	var windows []Window
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line, 9)
		if len(fields) < 7 {
			return nil, &ParseError{Command: "wmctrl -lxG", Line: line, Msg: "too few fields"}
		}
		nums, err := atoiAll(fields[1:6])
		if err != nil {
			return nil, &ParseError{Command: "wmctrl -lxG", Line: line, Msg: err.Error()}
		}
		w := Window{
			Handle:  Handle(fields[0]),
			Desktop: nums[0],
			Geometry: Rect{
				X:      nums[1],
				Y:      nums[2],
				Width:  nums[3],
				Height: nums[4],
			},
			Type: fields[6],
		}
		if len(fields) > 8 {
			w.Title = strings.TrimRightFunc(fields[8], unicode.IsSpace)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// ParseDesktops parses wmctrl -d output. The name is the last
// whitespace-separated field, so names containing spaces are truncated.
func ParseDesktops(out string) ([]Desktop, error) {
	var desktops []Desktop
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 {
			return nil, &ParseError{Command: "wmctrl -d", Line: line, Msg: "too few fields"}
		}
		index, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &ParseError{Command: "wmctrl -d", Line: line, Msg: "bad desktop index"}
		}
		width, height, err := parseSize(fields[3])
		if err != nil {
			return nil, &ParseError{Command: "wmctrl -d", Line: line, Msg: err.Error()}
		}
		desktops = append(desktops, Desktop{
			Index:  index,
			Name:   fields[len(fields)-1],
			Width:  width,
			Height: height,
		})
	}
	return desktops, nil
}

// splitFields splits on runs of whitespace into at most n fields; the last
// field keeps the remainder of the line, inner whitespace included.
func splitFields(s string, n int) []string {
	var fields []string
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for s != "" {
		if len(fields) == n-1 {
			fields = append(fields, s)
			break
		}
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			fields = append(fields, s)
			break
		}
		fields = append(fields, s[:end])
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	return fields
}

func atoiAll(fields []string) ([]int, error) {
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		nums[i] = n
	}
	return nums, nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("bad size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("bad size %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("bad size %q", s)
	}
	return width, height, nil
}
