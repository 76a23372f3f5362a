package cli

import (
	"testing"

	"github.com/dmitrijs2005/gophnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

func TestIsLoggedIn(t *testing.T) {
	app := &App{}
	if app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == false without a session")
	}
	app.session = &metadata.Session{Username: "u"}
	if !app.isLoggedIn() {
		t.Fatalf("expected isLoggedIn() == true with a session")
	}
}

func TestSetMode_Changes(t *testing.T) {
	app := &App{logger: logging.NewNop()}

	app.setMode(ModeOnline)
	if app.mode() != ModeOnline {
		t.Fatalf("expected mode to be %q, got %q", ModeOnline, app.mode())
	}

	app.setMode(ModeOffline)
	if app.mode() != ModeOffline {
		t.Fatalf("expected mode to be %q, got %q", ModeOffline, app.mode())
	}
}

func TestGetStatus(t *testing.T) {
	app := &App{logger: logging.NewNop()}
	if got := app.getStatus(); got != "" {
		t.Fatalf("expected empty status, got %q", got)
	}

	app.session = &metadata.Session{Username: "alice"}
	app.setMode(ModeOnline)
	if got := app.getStatus(); got != "(alice online)" {
		t.Fatalf("unexpected status %q", got)
	}
}
