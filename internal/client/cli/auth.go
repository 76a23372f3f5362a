package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/notestore"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to create
// a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials, signs in and starts note syncing for the
// new session. A session that was already active is replaced.
//
// The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
			return fmt.Errorf("server unavailable: %w", err)
		}
		return fmt.Errorf("login unsuccessful: %w", err)
	}

	// the previous poller must be gone before its keys are dropped
	a.emit(notestore.SessionEvent{Active: false})
	a.keys.Reset()
	a.session = s
	a.setMode(ModeOnline)
	a.emit(notestore.SessionEvent{
		Active:  true,
		Session: notestore.Session{Remote: a.remote, Crypto: a.keys},
	})

	fmt.Fprintf(a.out, "Signed in as %s\n", s.Username)
	return nil
}

// Logout stops note syncing, forgets cached note keys and the remembered
// session. Keys are reset only after the poller has exited.
func (a *App) Logout(ctx context.Context) error {
	a.emit(notestore.SessionEvent{Active: false})
	a.keys.Reset()
	a.session = nil

	return a.authService.Logout(ctx)
}

// Whoami prints the identity the server knows the user by. Grants to other
// users name them by this identity.
func (a *App) Whoami(ctx context.Context) error {
	fmt.Fprintf(a.out, "%s (%s)\n", a.session.Identity, a.session.Username)
	return nil
}
