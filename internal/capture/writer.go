package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
)

// ErrUnsupportedType is returned for copy requests of an unknown kind.
var ErrUnsupportedType = errors.New("unsupported clipboard type")

// ErrNoClipboardTool means no installed tool could take the content.
var ErrNoClipboardTool = errors.New("no clipboard tool available")

// Copy kinds accepted by Writer.Copy. "text" and "image" match clip types;
// "html" and "rtf" select a rich representation.
const (
	KindText  = string(clips.TypeText)
	KindImage = string(clips.TypeImage)
	KindHTML  = "html"
	KindRTF   = "rtf"
)

// Writer puts content on the system clipboard.
type Writer struct {
	text     textClipboard
	run      runFunc
	lookPath lookPathFunc
	commands func(mime string) []command
}

func NewWriter() *Writer {
	return &Writer{text: systemText{}, run: runCommand, lookPath: exec.LookPath, commands: copyCommands}
}

// Copy writes content of the given kind. Image content is a data URI.
func (w *Writer) Copy(ctx context.Context, kind, content string) error {
	switch kind {
	case KindText:
		return w.text.WriteAll(content)
	case KindHTML:
		return w.pipe(ctx, mimeHTML, []byte(content))
	case KindRTF:
		return w.pipe(ctx, mimeRTF, []byte(content))
	case KindImage:
		png, err := DecodeDataURI(content)
		if err != nil {
			return err
		}
		return w.pipe(ctx, mimePNG, png)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}
}

func (w *Writer) pipe(ctx context.Context, mime string, data []byte) error {
	var lastErr error
	for _, cand := range w.commands(mime) {
		path, err := w.lookPath(cand.name)
		if err != nil {
			continue
		}
		if _, err := w.run(ctx, data, path, cand.args...); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("copy %s: %w", mime, lastErr)
	}
	return fmt.Errorf("copy %s: %w", mime, ErrNoClipboardTool)
}

// EncodeDataURI renders PNG bytes as a data URI.
func EncodeDataURI(png []byte) string {
	return "data:" + mimePNG + ";base64," + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURI extracts the payload of a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data uri is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(payload)
}
