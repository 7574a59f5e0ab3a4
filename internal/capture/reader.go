package capture

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Content holds every representation the clipboard exposes at one moment.
// Empty fields are absent.
type Content struct {
	PlainText string
	RichText  string
	HTMLText  string
	PNG       []byte
}

// Empty reports whether nothing is on the clipboard.
func (c Content) Empty() bool {
	return c.PlainText == "" && c.RichText == "" && c.HTMLText == "" && len(c.PNG) == 0
}

// Reader reads the current clipboard content.
type Reader interface {
	Read(ctx context.Context) (Content, error)
}

// textClipboard is the plain-text clipboard backend.
type textClipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemText struct{}

func (systemText) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", nil
	}
	return clipboard.ReadAll()
}

func (systemText) WriteAll(text string) error { return clipboard.WriteAll(text) }

// command is one way of reading or writing a MIME type with a platform tool.
type command struct {
	name string
	args []string
}

type runFunc func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

type lookPathFunc func(file string) (string, error)

func runCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = strings.NewReader(string(stdin))
	}
	return cmd.Output()
}

const (
	mimeHTML = "text/html"
	mimeRTF  = "text/rtf"
	mimePNG  = "image/png"
)

// pasteCommands lists the tools able to read a given MIME type, in order
// of preference (Wayland first, then X11).
func pasteCommands(mime string) []command {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return nil
	}
	return []command{
		{name: "wl-paste", args: []string{"--no-newline", "--type", mime}},
		{name: "xclip", args: []string{"-selection", "clipboard", "-t", mime, "-o"}},
	}
}

func copyCommands(mime string) []command {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return nil
	}
	return []command{
		{name: "wl-copy", args: []string{"--type", mime}},
		{name: "xclip", args: []string{"-selection", "clipboard", "-t", mime, "-i"}},
	}
}

// OSReader reads plain text through atotto/clipboard and the richer
// representations through wl-paste or xclip when they are installed.
// Representations no tool can provide are left empty.
type OSReader struct {
	text     textClipboard
	run      runFunc
	lookPath lookPathFunc
	commands func(mime string) []command
}

func NewOSReader() *OSReader {
	return &OSReader{text: systemText{}, run: runCommand, lookPath: exec.LookPath, commands: pasteCommands}
}

func (r *OSReader) Read(ctx context.Context) (Content, error) {
	var c Content

	plain, err := r.text.ReadAll()
	if err != nil {
		return Content{}, err
	}
	c.PlainText = plain

	c.HTMLText = string(r.paste(ctx, mimeHTML))
	c.RichText = string(r.paste(ctx, mimeRTF))
	c.PNG = r.paste(ctx, mimePNG)
	return c, nil
}

// paste returns the first successful read of mime, or nil. A tool that
// fails is usually one whose clipboard does not hold that type.
func (r *OSReader) paste(ctx context.Context, mime string) []byte {
	for _, cand := range r.commands(mime) {
		path, err := r.lookPath(cand.name)
		if err != nil {
			continue
		}
		out, err := r.run(ctx, nil, path, cand.args...)
		if err != nil || len(out) == 0 {
			continue
		}
		return out
	}
	return nil
}
