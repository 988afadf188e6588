// Package ui is the terminal face of the client. It implements the
// notification host and the toaster, and renders conversations as tables.
package ui

import (
	"chat-dm/notify"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gookit/color"
)

var (
	notificationStyle = color.New(color.BgBlack, color.FgCyan, color.OpBold)
	toastStyle        = color.New(color.FgRed, color.OpBold)
	mutedStyle        = color.New(color.FgGray)
)

// Terminal is a notify.Host writing to out. A terminal has no permission
// prompt: a default permission is granted on request.
type Terminal struct {
	mu         sync.Mutex
	out        io.Writer
	colours    bool
	permission notify.Permission
	hidden     bool
	onFocus    func()
	open       []*Notification
}

type TerminalOption func(*Terminal)

func WithColours(enabled bool) TerminalOption {
	return func(t *Terminal) { t.colours = enabled }
}

func WithPermission(p notify.Permission) TerminalOption {
	return func(t *Terminal) { t.permission = p }
}

// WithFocusHandler runs fn every time the terminal gets the focus back.
func WithFocusHandler(fn func()) TerminalOption {
	return func(t *Terminal) { t.onFocus = fn }
}

func NewTerminal(out io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		out:        out,
		colours:    true,
		permission: notify.PermissionDefault,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) Supported() bool { return true }

func (t *Terminal) Permission() notify.Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permission
}

func (t *Terminal) RequestPermission(ctx context.Context) (notify.Permission, error) {
	if err := ctx.Err(); err != nil {
		return notify.PermissionDefault, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.permission == notify.PermissionDefault {
		t.permission = notify.PermissionGranted
	}
	return t.permission, nil
}

func (t *Terminal) Post(title string, opts notify.Options) (notify.Notification, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := &Notification{terminal: t}
	t.open = append(t.open, n)
	t.println(notificationStyle, fmt.Sprintf("🔔 %s: %s", title, opts.Body))
	return n, nil
}

// Focus brings the terminal back to the foreground.
func (t *Terminal) Focus() {
	t.mu.Lock()
	t.hidden = false
	fn := t.onFocus
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (t *Terminal) Hidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hidden
}

// Hide marks the terminal as in the background.
func (t *Terminal) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hidden = true
}

// ClickLatest clicks the most recent notification still open.
// It returns false when there is none.
func (t *Terminal) ClickLatest() bool {
	t.mu.Lock()
	if len(t.open) == 0 {
		t.mu.Unlock()
		return false
	}
	n := t.open[len(t.open)-1]
	t.mu.Unlock()
	n.click()
	return true
}

// OpenNotifications returns the number of notifications not closed yet.
func (t *Terminal) OpenNotifications() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}

// Toast prints a user-facing error.
func (t *Terminal) Toast(title, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(toastStyle, fmt.Sprintf("✖ %s: %s", title, description))
}

// Info prints a secondary line.
func (t *Terminal) Info(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(mutedStyle, fmt.Sprintf(format, args...))
}

func (t *Terminal) println(style color.Style, line string) {
	if t.colours {
		line = style.Render(line)
	}
	_, _ = fmt.Fprintln(t.out, line)
}

func (t *Terminal) remove(n *Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, open := range t.open {
		if open == n {
			t.open = append(t.open[:i], t.open[i+1:]...)
			return
		}
	}
}

// Notification is a line printed by Terminal.Post, clickable until closed.
type Notification struct {
	terminal *Terminal
	mu       sync.Mutex
	onClick  func()
	closed   bool
}

func (n *Notification) OnClick(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onClick = fn
}

func (n *Notification) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()
	n.terminal.remove(n)
}

func (n *Notification) click() {
	n.mu.Lock()
	fn := n.onClick
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}
