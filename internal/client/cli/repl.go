package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the console dispatches to.
type execIface interface {
	isSignedIn() bool
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	Clips(ctx context.Context) error
	Files(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL reads one command per line and dispatches it until EOF, "exit"
// or "quit", or until ctx is done.
//
//	Signed out: help, clips, signin, exit
//	Signed in:  help, clips, files, sync, signout, exit
//
// Handlers report their own errors; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("clipkeeper %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isSignedIn() {
				printlnFn("Available commands: (l)ist clips, files, sync, signout, exit")
			} else {
				printlnFn("Available commands: (l)ist clips, signin, exit")
			}

		case "l", "clips":
			_ = a.Clips(ctx)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "signout", "logout":
			_ = a.SignOut(ctx)

		case "files":
			_ = a.Files(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
