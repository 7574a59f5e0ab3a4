// Package shortcut normalizes global shortcut specs and tracks the active
// binding.
package shortcut

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/clipkeeper/internal/logging"
)

var (
	ErrEmpty           = errors.New("empty shortcut")
	ErrNoKey           = errors.New("shortcut has no key")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrInvalidKey      = errors.New("invalid key")
)

// canonical modifier names, in output order
var modifierOrder = []string{"CommandOrControl", "Command", "Control", "Alt", "Shift", "Super"}

var modifierAliases = map[string]string{
	"commandorcontrol": "CommandOrControl",
	"cmdorctrl":        "CommandOrControl",
	"mod":              "CommandOrControl",
	"command":          "Command",
	"cmd":              "CommandOrControl",
	"control":          "Control",
	"ctrl":             "CommandOrControl",
	"alt":              "Alt",
	"option":           "Alt",
	"opt":              "Alt",
	"shift":            "Shift",
	"super":            "Super",
	"meta":             "Super",
	"win":              "Super",
}

var namedKeys = map[string]string{
	"space":     "Space",
	"tab":       "Tab",
	"enter":     "Enter",
	"return":    "Enter",
	"esc":       "Escape",
	"escape":    "Escape",
	"backspace": "Backspace",
	"delete":    "Delete",
	"del":       "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pagedown":  "PageDown",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"plus":      "Plus",
}

// Normalize turns a loosely written spec such as "ctrl + shift + v" into
// the canonical accelerator "CommandOrControl+Shift+V". A spec needs
// exactly one non-modifier key.
func Normalize(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", ErrEmpty
	}

	mods := map[string]bool{}
	var key string
	for _, part := range strings.Split(spec, "+") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		if m, ok := modifierAliases[p]; ok {
			mods[m] = true
			continue
		}
		k, err := normalizeKey(p)
		if err != nil {
			return "", err
		}
		if key != "" {
			return "", fmt.Errorf("%w: %q and %q", ErrUnknownModifier, key, part)
		}
		key = k
	}
	if key == "" {
		return "", ErrNoKey
	}

	parts := make([]string, 0, len(mods)+1)
	for _, m := range modifierOrder {
		if mods[m] {
			parts = append(parts, m)
		}
	}
	return strings.Join(append(parts, key), "+"), nil
}

func normalizeKey(p string) (string, error) {
	if k, ok := namedKeys[p]; ok {
		return k, nil
	}
	if len(p) == 1 {
		c := p[0]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			return strings.ToUpper(p), nil
		}
		if strings.ContainsRune("`-=[];',./\\", rune(c)) {
			return p, nil
		}
	}
	if len(p) >= 2 && len(p) <= 3 && p[0] == 'f' {
		if n, err := strconv.Atoi(p[1:]); err == nil && n >= 1 && n <= 24 {
			return fmt.Sprintf("F%d", n), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKey, p)
}

// Binder installs a global shortcut with the platform.
type Binder interface {
	Bind(accelerator string, fn func()) error
	Unbind(accelerator string) error
}

// Registrar keeps at most one active binding and swaps it on Register.
type Registrar struct {
	binder Binder
	logger logging.Logger

	mu     sync.Mutex
	active string
}

func NewRegistrar(b Binder, logger logging.Logger) *Registrar {
	return &Registrar{binder: b, logger: logger}
}

// Register normalizes spec and binds it to fn, releasing the previous
// binding. On failure the previous binding stays active.
func (r *Registrar) Register(ctx context.Context, spec string, fn func()) (string, error) {
	acc, err := Normalize(spec)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if acc == r.active {
		return acc, nil
	}
	if err := r.binder.Bind(acc, fn); err != nil {
		return "", fmt.Errorf("bind %s: %w", acc, err)
	}
	if r.active != "" {
		if err := r.binder.Unbind(r.active); err != nil {
			r.logger.Warn(ctx, "release shortcut", "shortcut", r.active, "error", err)
		}
	}
	r.active = acc
	r.logger.Info(ctx, "shortcut registered", "shortcut", acc)
	return acc, nil
}

// Active returns the bound accelerator, or "" when none is bound.
func (r *Registrar) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// LogBinder only records bindings. It stands in where no platform hotkey
// support is available.
type LogBinder struct {
	Logger logging.Logger
}

func (b LogBinder) Bind(accelerator string, _ func()) error {
	b.Logger.Debug(context.Background(), "bind shortcut", "shortcut", accelerator)
	return nil
}

func (b LogBinder) Unbind(accelerator string) error {
	b.Logger.Debug(context.Background(), "unbind shortcut", "shortcut", accelerator)
	return nil
}
