// Package notify raises desktop notifications for incoming messages through
// an injectable Host, so the process-wide capability can be faked in tests.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	Title            = "Nova mensagem"
	Icon             = "/favicon.ico"
	DefaultAutoClose = 5 * time.Second
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type Options struct {
	Body  string
	Icon  string
	Badge string
}

// Notification is a notification currently displayed by the host.
type Notification interface {
	OnClick(fn func())
	Close()
}

// Host is the notification capability and window of the environment.
type Host interface {
	Supported() bool
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Post(title string, opts Options) (Notification, error)
	Focus()
	Hidden() bool
}

type Notifier struct {
	host      Host
	log       *slog.Logger
	autoClose time.Duration
	after     func(d time.Duration, fn func())
}

type Option func(*Notifier)

func WithAutoClose(d time.Duration) Option {
	return func(n *Notifier) { n.autoClose = d }
}

// WithTimer replaces time.AfterFunc.
func WithTimer(after func(d time.Duration, fn func())) Option {
	return func(n *Notifier) { n.after = after }
}

func New(host Host, log *slog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		host:      host,
		log:       log,
		autoClose: DefaultAutoClose,
		after:     func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show posts content as a notification when the host allows it.
// Failures, including panics of the host, are logged and swallowed.
func (n *Notifier) Show(ctx context.Context, content string) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Warn("Notification failed", "error", fmt.Sprint(r))
		}
	}()
	if n.host == nil || !n.host.Supported() {
		return
	}

	permission := n.host.Permission()
	if permission == PermissionDefault {
		var err error
		if permission, err = n.host.RequestPermission(ctx); err != nil {
			n.log.Warn("Notification permission request failed", "error", err)
			return
		}
	}
	if permission != PermissionGranted {
		n.log.Debug("Notification not allowed", "permission", permission)
		return
	}

	notification, err := n.host.Post(Title, Options{Body: content, Icon: Icon, Badge: Icon})
	if err != nil {
		n.log.Warn("Notification failed", "error", err)
		return
	}
	notification.OnClick(func() {
		n.host.Focus()
		notification.Close()
	})
	n.after(n.autoClose, notification.Close)
}

// Hidden reports whether the host window is hidden. Without a host, it is.
func (n *Notifier) Hidden() bool {
	if n.host == nil {
		return true
	}
	return n.host.Hidden()
}
