package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/notestore"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

const summaryLen = 60

// nowFn is a test seam for the clock used to stamp edits.
var nowFn = time.Now

var errUsage = errors.New("usage")

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

func parseID(args []string, text string) (uint64, error) {
	if len(args) == 0 {
		return 0, usage(text)
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, usage(text)
	}
	return id, nil
}

// optionalIdentity maps a missing argument or the reserved word "everyone"
// to nil.
func optionalIdentity(args []string, i int) *string {
	if len(args) <= i || args[i] == common.Everyone {
		return nil
	}
	v := args[i]
	return &v
}

// loadedNote looks a note up in the latest synced list. It returns a copy
// the caller may edit.
func (a *App) loadedNote(id uint64) (*models.Note, error) {
	snap := a.notes.Snapshot()
	switch snap.State {
	case notestore.Loading, notestore.Uninitialized:
		return nil, errors.New("notes are still loading")
	case notestore.Error:
		return nil, fmt.Errorf("notes are not available: %w", snap.Err)
	}
	n, ok := snap.Find(id)
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, common.ErrorNotFound)
	}
	return n.Clone(), nil
}

// refresh pulls the list right away so the user sees their own change.
func (a *App) refresh(ctx context.Context) {
	if err := a.notes.Refresh(ctx); err != nil {
		a.logger.Error(ctx, "refresh after edit failed", "error", err)
	}
}

func (a *App) List(ctx context.Context) error {
	snap := a.notes.Snapshot()
	switch snap.State {
	case notestore.Uninitialized, notestore.Loading:
		fmt.Fprintln(a.out, "Loading...")
		return nil
	case notestore.Error:
		return fmt.Errorf("notes are not available: %w", snap.Err)
	}

	if len(snap.List) == 0 {
		fmt.Fprintln(a.out, "No notes yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUMMARY\tTAGS\tFLAGS")
	for _, n := range snap.List {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", n.ID, models.Summarize(n, summaryLen), strings.Join(n.Tags, ","), a.flags(n))
	}
	return tw.Flush()
}

func (a *App) flags(n *models.Note) string {
	var f []string
	if !n.IsOwnedBy(a.session.Identity) {
		f = append(f, "shared")
	}
	if n.Locked {
		f = append(f, "locked")
	}
	return strings.Join(f, ",")
}

func (a *App) Sync(ctx context.Context) error {
	if err := a.notes.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d notes\n", len(a.notes.Snapshot().List))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}
	n, err := a.loadedNote(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "# %s\n", n.Title)
	fmt.Fprintf(a.out, "owner:   %s\n", n.Owner)
	fmt.Fprintf(a.out, "tags:    %s\n", strings.Join(n.Tags, ", "))
	fmt.Fprintf(a.out, "created: %s\n", formatMs(n.CreatedAt))
	fmt.Fprintf(a.out, "updated: %s\n", formatMs(n.UpdatedAt))
	if n.Locked {
		fmt.Fprintln(a.out, "locked:  yes")
	}
	if len(n.Users) > 0 {
		fmt.Fprintln(a.out, "shared with:")
		for _, identity := range slices.Sorted(maps.Keys(n.Users)) {
			fmt.Fprintf(a.out, "  %s%s\n", identity, describeRule(n.Users[identity]))
		}
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, n.Content)
	return nil
}

func (a *App) Add(ctx context.Context) error {
	content, err := GetMultiline(a.reader, "Enter note text (HTML allowed):", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		return usage("a note needs some text")
	}
	tags, err := GetTags(a.reader, a.out)
	if err != nil {
		return err
	}

	n, err := a.noteService.Add(ctx, a.session.Identity, content, tags)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created note %d\n", n.ID)
	a.refresh(ctx)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit <id>")
	if err != nil {
		return err
	}
	n, err := a.loadedNote(id)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Enter new note text:", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		return usage("a note needs some text")
	}

	n.SetContent(content, nowFn())
	if err := a.noteService.Save(ctx, n); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	a.refresh(ctx)
	return nil
}

func (a *App) Tag(ctx context.Context, args []string) error {
	id, err := parseID(args, "tag <id> [tag,...]")
	if err != nil {
		return err
	}
	n, err := a.loadedNote(id)
	if err != nil {
		return err
	}

	n.SetTags(splitTags(strings.Join(args[1:], ",")), nowFn())
	if err := a.noteService.Save(ctx, n); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	a.refresh(ctx)
	return nil
}

// Share grants access. The optional third argument is an RFC 3339 time
// before which the grant is not effective.
func (a *App) Share(ctx context.Context, args []string) error {
	const text = "share <id> [user|everyone] [from RFC3339]"
	id, err := parseID(args, text)
	if err != nil {
		return err
	}

	var when *time.Time
	if len(args) > 2 {
		t, err := time.Parse(time.RFC3339, args[2])
		if err != nil {
			return usage(text)
		}
		when = &t
	}

	if err := a.noteService.Grant(ctx, id, optionalIdentity(args, 1), when); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Shared.")
	a.refresh(ctx)
	return nil
}

func (a *App) Unshare(ctx context.Context, args []string) error {
	id, err := parseID(args, "unshare <id> [user|everyone]")
	if err != nil {
		return err
	}
	if err := a.noteService.Revoke(ctx, id, optionalIdentity(args, 1)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Unshared.")
	a.refresh(ctx)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}
	if err := a.noteService.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	a.refresh(ctx)
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	id, err := parseID(args, "history <id>")
	if err != nil {
		return err
	}
	n, err := a.loadedNote(id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tUSER\tRULE")
	for _, h := range n.History {
		rule := ""
		if h.Rule != nil {
			rule = h.Rule.Identity + describeRule(models.AccessRule{When: h.Rule.When})
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", formatNs(h.CreatedAt), h.Action, h.User, rule)
	}
	return tw.Flush()
}

func describeRule(r models.AccessRule) string {
	var parts []string
	if r.When != nil {
		parts = append(parts, "from "+formatNs(*r.When))
	}
	if r.WasRead {
		parts = append(parts, "read")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).Format(time.DateTime)
}

func formatNs(ns uint64) string {
	return formatMs(models.NsToMs(ns))
}
