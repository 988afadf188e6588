//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-dm/domain"
	"chat-dm/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IStore is the typed accessor over the messages and profiles tables and their RPCs.
type IStore interface {
	FetchConversation(ctx context.Context, selfID, peerID, search string) ([]domain.StoredMessage, error)
	FetchProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, error)
	FetchChatUsers(ctx context.Context, selfID string) ([]domain.ChatUser, error)
	InsertMessage(ctx context.Context, msg domain.NewMessage) (domain.StoredMessage, error)
	MarkConversationRead(ctx context.Context, selfID, peerID string) error
	ClearConversation(ctx context.Context, selfID, peerID string) error
}

// IIdentity supplies the signed-in user. ok is false when nobody is signed in.
type IIdentity interface {
	CurrentUserID() (id string, ok bool)
}

// IToaster shows a short user-facing message.
type IToaster interface {
	Toast(title, description string)
}

// INotifier raises a desktop notification for an incoming message.
// Implementations must not fail into the caller.
type INotifier interface {
	Show(ctx context.Context, content string)
	Hidden() bool
}

// IRealtime is the realtime channel as the controller drives it.
type IRealtime interface {
	Rescope(peerID string)
	IsConnected() bool
	OnConnectionChange(fn func(connected bool)) func()
}

// ChangeSource streams the message changes that involve selfID.
// The returned channel is closed when the transport is lost.
type ChangeSource interface {
	Listen(ctx context.Context, selfID string) (<-chan event.MessageChange, error)
}

// ChangePublisher broadcasts a message change to both parties of the message.
type ChangePublisher interface {
	Publish(ctx context.Context, change event.MessageChange) error
}
