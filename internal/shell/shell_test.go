//go:build !windows

package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "stub")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExecRunnerCapturesStdout(t *testing.T) {
	stub := writeStub(t, `printf '%s\n' "$@"`)

	res, err := NewExecRunner(0).Run(context.Background(), 0, stub, "-d", "x")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got %+v", res)
	}
	if res.Stdout != "-d\nx\n" {
		t.Fatalf("stdout = %q", res.Stdout)
	}
}

func TestExecRunnerReportsUnexpectedExitCode(t *testing.T) {
	stub := writeStub(t, `echo "Cannot open display." 1>&2; exit 1`)

	res, err := NewExecRunner(0).Run(context.Background(), 0, stub)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OK {
		t.Fatal("expected failure for exit code 1")
	}
	if res.ExitCode != 1 {
		t.Fatalf("exit code = %d", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "Cannot open display") {
		t.Fatalf("stderr = %q", res.Stderr)
	}
}

func TestExecRunnerHonoursExpectedExitCode(t *testing.T) {
	stub := writeStub(t, `exit 3`)

	res, err := NewExecRunner(0).Run(context.Background(), 3, stub)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected exit code 3 to be OK, got %+v", res)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-tool")

	if _, err := NewExecRunner(0).Run(context.Background(), 0, missing); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	stub := writeStub(t, `exec sleep 5`)

	start := time.Now()
	_, err := NewExecRunner(100*time.Millisecond).Run(context.Background(), 0, stub)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}
}

func TestJoin(t *testing.T) {
	if got := Join("wmctrl", "-i", "-r", "0x1", "-t", "2"); got != "wmctrl -i -r 0x1 -t 2" {
		t.Fatalf("Join = %q", got)
	}
	if got := Join("xrandr"); got != "xrandr" {
		t.Fatalf("Join = %q", got)
	}
}
