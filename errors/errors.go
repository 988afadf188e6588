package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrUnauthenticated = fmt.Errorf("user not authenticated")
	ErrStore           = fmt.Errorf("store rejected the request")
	ErrRPC             = fmt.Errorf("rpc rejected the request")
	ErrTransport       = fmt.Errorf("realtime connection lost")
	ErrInvalidMessage  = fmt.Errorf("invalid message")
	ErrInvalidToken    = fmt.Errorf("invalid auth token")
	ErrUnknownBackend  = fmt.Errorf("unknown backend")
)

// Is and As forward to the standard library so callers only import this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// Store wraps a backend failure of a read or write on a table.
func Store(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// RPC wraps a backend failure of a remote procedure.
func RPC(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRPC, name, err)
}
