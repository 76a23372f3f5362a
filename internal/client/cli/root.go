package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if a.session != nil {
		s = a.session.Username + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, offers to sign in and runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to gophnotes (type 'help' for commands)")

	if last, err := a.authService.LastSession(ctx); err == nil && last != nil {
		fmt.Fprintf(a.out, "Last signed in as %s\n", last.Username)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
