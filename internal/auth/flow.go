package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/clipkeeper/internal/client/models"
	"github.com/dmitrijs2005/clipkeeper/internal/common"
	"github.com/dmitrijs2005/clipkeeper/internal/cryptox"
)

// Prompter supplies a username and password. The caller wipes the
// password when done.
type Prompter interface {
	Prompt(ctx context.Context) (username string, password []byte, err error)
}

// LoginService is the part of the token service a password login needs.
type LoginService interface {
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (models.Credentials, error)
}

// PasswordFlow signs in with a password without ever sending it: the
// password and the account salt derive a master key, and only the
// verifier of that key goes over the wire.
type PasswordFlow struct {
	service  LoginService
	prompter Prompter
}

func NewPasswordFlow(service LoginService, prompter Prompter) *PasswordFlow {
	return &PasswordFlow{service: service, prompter: prompter}
}

func (f *PasswordFlow) Authorize(ctx context.Context) (models.Credentials, error) {
	username, password, err := f.prompter.Prompt(ctx)
	if err != nil {
		return models.Credentials{}, err
	}
	defer common.WipeByteArray(password)

	if username == "" || len(password) == 0 {
		return models.Credentials{}, errors.New("username and password are required")
	}

	salt, err := f.service.GetSalt(ctx, username)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("get salt error: %w", err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	c, err := f.service.Login(ctx, username, cryptox.MakeVerifier(key))
	if err != nil {
		return models.Credentials{}, fmt.Errorf("login error: %w", err)
	}
	return c, nil
}

// StaticPrompter returns fixed values, e.g. from an IPC request body.
type StaticPrompter struct {
	Username string
	Password string
}

func (p StaticPrompter) Prompt(context.Context) (string, []byte, error) {
	return p.Username, []byte(p.Password), nil
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// TerminalPrompter asks on the controlling terminal; the password is read
// without echo.
type TerminalPrompter struct {
	In  *bufio.Reader
	Out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{In: bufio.NewReader(in), Out: out}
}

func (p *TerminalPrompter) Prompt(context.Context) (string, []byte, error) {
	if _, err := fmt.Fprint(p.Out, "Enter username\n> "); err != nil {
		return "", nil, err
	}
	line, err := p.In.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", nil, err
	}
	username := strings.TrimSpace(line)

	fmt.Fprint(p.Out, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", nil, err
	}
	return username, pw, nil
}
