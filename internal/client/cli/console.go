package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/syncer"
)

const previewLen = 48

func (a *App) console(ctx context.Context) {
	printlnFn("Welcome to clipkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in))
}

func (a *App) getStatus() string {
	parts := make([]string, 0, 2)
	if a.isSignedIn() {
		parts = append(parts, "signed-in")
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) isSignedIn() bool {
	return a.session.IsSignedIn()
}

func (a *App) SignIn(ctx context.Context) error {
	if err := a.session.SignIn(ctx); err != nil {
		printlnFn("Sign-in failed:", err)
		return err
	}
	printlnFn("Signed in")
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		printlnFn("Sign-out incomplete:", err)
		return err
	}
	printlnFn("Signed out")
	return nil
}

// Clips prints the history, newest first.
func (a *App) Clips(context.Context) error {
	cs := a.store.Clips()
	if len(cs) == 0 {
		printlnFn("No clips")
		return nil
	}
	for i, c := range cs {
		printlnFn(fmt.Sprintf("%3d  %s  %-5s  %s", i+1, c.CapturedAt.Format(time.DateTime), c.Type, preview(c)))
	}
	return nil
}

// Files prints the remote objects added since the last listing.
func (a *App) Files(ctx context.Context) error {
	if !a.isSignedIn() {
		printlnFn("Sign in first")
		return common.ErrNotSignedIn
	}
	files, err := a.remote.ListFiles(ctx)
	if err != nil {
		printlnFn("Listing failed:", err)
		return err
	}
	if len(files) == 0 {
		printlnFn("No new files")
		return nil
	}
	for _, f := range files {
		printlnFn(fmt.Sprintf("%s  %8d  %s", f.LastModified.Format(time.DateTime), f.Size, f.Key))
	}
	return nil
}

// Sync uploads the whole local history.
func (a *App) Sync(ctx context.Context) error {
	if !a.isSignedIn() {
		printlnFn("Sign in first")
		return common.ErrNotSignedIn
	}
	results, err := a.remote.UploadClips(ctx, a.store.Clips())
	if errors.Is(err, syncer.ErrNoClips) {
		printlnFn("Nothing to sync")
		return nil
	}
	if err != nil {
		printlnFn("Sync failed:", err)
		return err
	}

	uploaded, skipped := 0, 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		} else {
			uploaded++
		}
	}
	printlnFn(fmt.Sprintf("Uploaded %d, skipped %d over the size limit", uploaded, skipped))
	return nil
}

func preview(c clips.Clip) string {
	var s string
	switch {
	case c.Type == clips.TypeImage:
		return fmt.Sprintf("[image, %d bytes]", len(c.DataURI))
	case c.PlainText != "":
		s = c.PlainText
	case c.HTMLText != "":
		s = "[html] " + c.HTMLText
	default:
		s = "[rtf] " + c.RichText
	}

	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > previewLen {
		s = string(r[:previewLen-1]) + "…"
	}
	return s
}
