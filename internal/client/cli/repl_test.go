package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	signedIn bool
	calls    []string
}

func (f *fakeExec) isSignedIn() bool { return f.signedIn }
func (f *fakeExec) SignIn(context.Context) error {
	f.calls = append(f.calls, "signin")
	f.signedIn = true
	return nil
}
func (f *fakeExec) SignOut(context.Context) error {
	f.calls = append(f.calls, "signout")
	f.signedIn = false
	return nil
}
func (f *fakeExec) Clips(context.Context) error { f.calls = append(f.calls, "clips"); return nil }
func (f *fakeExec) Files(context.Context) error { f.calls = append(f.calls, "files"); return nil }
func (f *fakeExec) Sync(context.Context) error  { f.calls = append(f.calls, "sync"); return nil }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommandsInOrder(t *testing.T) {
	capturePrints(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"signin",
		"",
		"clips",
		"l",
		"files",
		"sync",
		"signout",
		"exit",
		"clips",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"signin", "clips", "clips", "files", "sync", "signout"}, exec.calls)
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrints(t)

	input := strings.NewReader("help\nsignin\nhelp\nquit\n")
	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewScanner(input))

	var helps []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands:") {
			helps = append(helps, l)
		}
	}
	require.Len(t, helps, 2)
	assert.Contains(t, helps[0], "signin")
	assert.NotContains(t, helps[0], "signout")
	assert.Contains(t, helps[1], "signout")
}

func TestRunREPL_UnknownCommandAndEOF(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{signedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader("foobar\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.NotContains(t, *lines, "Bye!")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	capturePrints(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("signin\n")))

	assert.Empty(t, exec.calls)
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	lines := capturePrints(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "(online)" }, bufio.NewScanner(strings.NewReader("exit\n")))

	require.NotEmpty(t, *lines)
	assert.Equal(t, "clipkeeper (online)>", (*lines)[0])
}
