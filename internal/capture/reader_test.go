package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memText struct {
	value   string
	readErr error
	written []string
}

func (m *memText) ReadAll() (string, error) { return m.value, m.readErr }
func (m *memText) WriteAll(s string) error {
	m.written = append(m.written, s)
	return nil
}

type call struct {
	name  string
	args  []string
	stdin []byte
}

type fakeTools struct {
	installed map[string]bool
	outputs   map[string][]byte // keyed by mime, last arg group
	fail      map[string]error
	calls     []call
}

func (f *fakeTools) lookPath(name string) (string, error) {
	if f.installed[name] {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func (f *fakeTools) run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args, stdin: stdin})
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	for _, a := range args {
		if out, ok := f.outputs[a]; ok {
			return out, nil
		}
	}
	return nil, nil
}

func testCommands(mime string) []command {
	return []command{
		{name: "wl-paste", args: []string{"--type", mime}},
		{name: "xclip", args: []string{"-t", mime, "-o"}},
	}
}

func TestOSReader_ReadsAllRepresentations(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"xclip": true},
		outputs: map[string][]byte{
			mimeHTML: []byte("<p>hi</p>"),
			mimePNG:  {1, 2, 3},
		},
	}
	r := &OSReader{text: &memText{value: "hi"}, run: tools.run, lookPath: tools.lookPath, commands: testCommands}

	c, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Content{PlainText: "hi", HTMLText: "<p>hi</p>", PNG: []byte{1, 2, 3}}, c)

	for _, cl := range tools.calls {
		assert.Equal(t, "/usr/bin/xclip", cl.name)
	}
}

func TestOSReader_FallsBackToNextTool(t *testing.T) {
	tools := &fakeTools{
		installed: map[string]bool{"wl-paste": true, "xclip": true},
		outputs:   map[string][]byte{mimeRTF: []byte("{\\rtf1}")},
		fail:      map[string]error{"/usr/bin/wl-paste": errors.New("no wayland")},
	}
	r := &OSReader{text: &memText{}, run: tools.run, lookPath: tools.lookPath, commands: testCommands}

	c, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "{\\rtf1}", c.RichText)
}

func TestOSReader_TextError(t *testing.T) {
	tools := &fakeTools{}
	r := &OSReader{text: &memText{readErr: errors.New("denied")}, run: tools.run, lookPath: tools.lookPath, commands: testCommands}

	_, err := r.Read(context.Background())
	assert.Error(t, err)
}

func TestContent_Empty(t *testing.T) {
	assert.True(t, Content{}.Empty())
	assert.False(t, Content{PNG: []byte{0}}.Empty())
}
