package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/editor"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errUnknownCommand = errors.New("unknown command")

// command is a REPL handler; args are the whitespace-separated words after
// the command name.
type command func(ctx context.Context, args []string) error

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	inEditor() bool
	execute(ctx context.Context, cmd string, args []string) error
	exit(ctx context.Context) error
	pendingRedirect() (models.Navigation, bool)
	// abandon is called when input ends or ctx is cancelled without an exit
	// command; there is no way left to ask the user anything.
	abandon(ctx context.Context)
}

const pickerHelp = "Available commands: list, new <name>, open <id>, rename <id> <name>, delete <id>, " +
	"info <id>, download <id> [path], usage, recent, whoami, logout, exit"

const editorHelp = "Editor commands: show, text, set, append [text], replace <from> <to>, find <term>, " +
	"stats, outline, save, name <new>, export <html|txt|ty|pdf> [path], back\n" +
	"Search options for find and replace: --case, --word\n" + pickerHelp

// runREPL reads one command per line from reader and dispatches it to a.
//
// The loop ends on EOF, on cancellation of ctx, on "exit" or "quit" once the
// user agrees to leave, or when a redirect to the login portal is pending. Command errors are
// printed and the loop continues; authentication failures print nothing
// because the redirect that follows explains them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if nav, ok := a.pendingRedirect(); ok {
			printlnFn("Your session has ended. Please sign in at the login portal:")
			printlnFn(nav.Target)
			return
		}

		printlnFn(fmt.Sprintf("eutype %s> ", statusFn()))
		line, err := readLine(ctx, reader)
		if err != nil && line == "" {
			a.abandon(ctx)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.inEditor() {
				printlnFn(editorHelp)
			} else {
				printlnFn(pickerHelp)
			}

		case "exit", "quit":
			if err := a.exit(ctx); err != nil {
				printlnFn(describe(err))
				continue
			}
			printlnFn("Bye!")
			return

		default:
			err := a.execute(ctx, cmd, args)
			switch {
			case err == nil:
			case errors.Is(err, errUnknownCommand):
				printlnFn("Unknown command:", cmd)
			default:
				if _, ok := a.pendingRedirect(); ok {
					continue
				}
				printlnFn("Error:", describe(err))
			}
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLine reads one line from reader, giving up when ctx is done. The read
// itself cannot be interrupted; its goroutine finishes when input arrives or
// stdin closes.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

// describe turns an error into a message for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, editor.ErrNavigationCancelled):
		return "Cancelled. Your changes are still unsaved."
	case errors.Is(err, editor.ErrSaveInFlight):
		return "A save is already in progress."
	case errors.Is(err, editor.ErrNoDocument):
		return "No document is open."
	case errors.Is(err, services.ErrNotAuthenticated):
		return "You are not signed in."
	}
	return client.FormatError(err)
}
