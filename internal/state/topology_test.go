package state

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/wsorg/internal/platform"
	"github.com/1broseidon/wsorg/internal/shell/shelltest"
)

const desktopListing = `0  * DG: 1920x1080  VP: 0,0  WA: 0,27 1920x1053  Main
1  - DG: 1200x800  VP: N/A  WA: 0,27 1200x773  Web
2  - DG: 1920x1080  VP: N/A  WA: 0,27 1920x1053  web
`

func TestLoadDesktopsAndResolve(t *testing.T) {
	fake := shelltest.New().OnOutput("wmctrl -d", desktopListing)

	desktops, err := LoadDesktops(context.Background(), platform.NewWmctrlBackend(fake))
	if err != nil {
		t.Fatalf("LoadDesktops: %v", err)
	}
	if len(desktops) != 3 {
		t.Fatalf("expected 3 desktops, got %d", len(desktops))
	}
	if d := desktops[1]; d.Width != 1200 || d.Height != 800 || d.Name != "Web" {
		t.Fatalf("unexpected desktop 1: %+v", d)
	}

	if idx, ok := desktops.Resolve("web"); !ok || idx != 2 {
		t.Fatalf("Resolve(web) = %d, %v", idx, ok)
	}
	if idx, ok := desktops.Resolve("Web"); !ok || idx != 1 {
		t.Fatalf("Resolve(Web) = %d, %v", idx, ok)
	}
	if _, ok := desktops.Resolve("Games"); ok {
		t.Fatal("resolved unknown desktop")
	}
	if !desktops.Has(0) || desktops.Has(7) {
		t.Fatal("Has mismatch")
	}
}

func TestLoadDesktopsFailure(t *testing.T) {
	fake := shelltest.New().OnFail("wmctrl -d", "Cannot get current desktop properties.")

	_, err := LoadDesktops(context.Background(), platform.NewWmctrlBackend(fake))
	var cerr *platform.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
}
