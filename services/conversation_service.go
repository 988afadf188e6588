package services

import (
	"chat-dm/cache"
	"chat-dm/contract"
	"chat-dm/domain"
	"chat-dm/domain/chat"
	"chat-dm/domain/event"
	"chat-dm/errors"
	"chat-dm/projection"
	"context"
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// User-facing messages of failed writes.
const (
	ToastTitle          = "Erro"
	SendFailed          = "Não foi possível enviar a mensagem. Tente novamente."
	MarkReadFailed      = "Não foi possível marcar a conversa como lida."
	ClearFailed         = "Não foi possível limpar a conversa."
	SettingsFailed      = "Não foi possível atualizar as configurações."
	InvalidMessageToast = "Não foi possível enviar a mensagem: conteúdo inválido."
)

type IConversationService interface {
	SetActiveConversation(peerID string)
	ActiveConversation() (string, bool)
	IsConnected() bool
	ObserveConversation(peerID, search string) *cache.Observation[[]domain.Message]
	ObserveChatUsers() *cache.Observation[[]domain.ChatUser]
	Send(ctx context.Context, cmd chat.SendMessageCommand) (domain.Message, error)
	MarkRead(ctx context.Context, peerID string) error
	Clear(ctx context.Context, peerID string) error
	ToggleReaction(ctx context.Context, messageID, reaction string) error
	GetSettings(ctx context.Context, peerID string) (*domain.ConversationSettings, error)
	UpdateSettings(ctx context.Context, peerID string, patch domain.SettingsPatch) error
}

// ConversationService is the controller between the UI and the store.
// Local writes never patch the cache: the realtime echo and the refetches it
// triggers are what the UI ends up showing.
type ConversationService struct {
	store    contract.IStore
	identity contract.IIdentity
	cache    *cache.Cache
	toaster  contract.IToaster
	notifier contract.INotifier
	log      *slog.Logger
	opts     cache.Options

	ctx           context.Context
	cancel        context.CancelFunc
	notifications sync.WaitGroup

	mu       sync.RWMutex
	realtime contract.IRealtime
	active   string
	nextID   int
	watchers map[int]func(peerID string)
}

type Option func(*ConversationService)

// WithQueryOptions replaces the options of the conversation queries.
func WithQueryOptions(opts cache.Options) Option {
	return func(s *ConversationService) { s.opts = opts }
}

func NewConversationService(
	store contract.IStore,
	identity contract.IIdentity,
	c *cache.Cache,
	toaster contract.IToaster,
	notifier contract.INotifier,
	log *slog.Logger,
	opts ...Option,
) *ConversationService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &ConversationService{
		store:    store,
		identity: identity,
		cache:    c,
		toaster:  toaster,
		notifier: notifier,
		log:      log,
		opts:     cache.ConversationOptions(),
		ctx:      ctx,
		cancel:   cancel,
		watchers: make(map[int]func(string)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AttachRealtime plugs the channel built with this service as its handler.
// The channel is scoped to the current active conversation right away.
func (s *ConversationService) AttachRealtime(r contract.IRealtime) {
	s.mu.Lock()
	s.realtime = r
	active := s.active
	s.mu.Unlock()
	if active != "" {
		r.Rescope(active)
	}
}

// SetActiveConversation sets the foregrounded peer; "" clears it.
func (s *ConversationService) SetActiveConversation(peerID string) {
	s.mu.Lock()
	if s.active == peerID {
		s.mu.Unlock()
		return
	}
	s.active = peerID
	realtime := s.realtime
	watchers := lo.Values(s.watchers)
	s.mu.Unlock()

	s.log.Debug("Active conversation changed", "peer", peerID)
	if realtime != nil {
		realtime.Rescope(peerID)
	}
	for _, fn := range watchers {
		fn(peerID)
	}
}

func (s *ConversationService) ActiveConversation() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

// OnActiveConversationChange registers fn and returns its unregister function.
func (s *ConversationService) OnActiveConversationChange(fn func(peerID string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *ConversationService) IsConnected() bool {
	s.mu.RLock()
	realtime := s.realtime
	s.mu.RUnlock()
	return realtime != nil && realtime.IsConnected()
}

// ObserveConversation observes one page of the conversation with peerID.
// Without a signed-in user the page is empty.
func (s *ConversationService) ObserveConversation(peerID, search string) *cache.Observation[[]domain.Message] {
	return cache.Observe(s.cache, cache.ConversationKey(peerID, search), s.opts,
		func(ctx context.Context) ([]domain.Message, error) {
			selfID, ok := s.identity.CurrentUserID()
			if !ok {
				return []domain.Message{}, nil
			}
			return projection.Fetch(ctx, s.store, s.log, selfID, peerID, search)
		})
}

// ObserveChatUsers observes the conversation list of the signed-in user.
func (s *ConversationService) ObserveChatUsers() *cache.Observation[[]domain.ChatUser] {
	opts := s.opts
	opts.RefetchOnFocus = true
	return cache.Observe(s.cache, cache.ChatUsersKey, opts,
		func(ctx context.Context) ([]domain.ChatUser, error) {
			selfID, ok := s.identity.CurrentUserID()
			if !ok {
				return []domain.ChatUser{}, nil
			}
			return s.store.FetchChatUsers(ctx, selfID)
		})
}

// Send inserts a message. The returned message is the stored row; the
// conversation itself refreshes on the realtime echo.
func (s *ConversationService) Send(ctx context.Context, cmd chat.SendMessageCommand) (domain.Message, error) {
	selfID, ok := s.identity.CurrentUserID()
	if !ok {
		return domain.Message{}, errors.ErrUnauthenticated
	}
	if err := cmd.Validate(); err != nil {
		s.toaster.Toast(ToastTitle, InvalidMessageToast)
		return domain.Message{}, err
	}

	stored, err := s.store.InsertMessage(ctx, cmd.ToNewMessage(selfID))
	if err != nil {
		s.log.Error("Message not sent", "recipient", cmd.RecipientID, "error", err)
		s.toaster.Toast(ToastTitle, SendFailed)
		return domain.Message{}, err
	}
	s.log.Debug("Message sent", "id", stored.ID, "recipient", stored.RecipientID)

	m := projection.Message(stored, nil)
	m.Type = cmd.Type
	m.FileName, m.FileSize, m.Duration = cmd.FileName, cmd.FileSize, cmd.Duration
	return m, nil
}

func (s *ConversationService) MarkRead(ctx context.Context, peerID string) error {
	selfID, ok := s.identity.CurrentUserID()
	if !ok {
		return errors.ErrUnauthenticated
	}
	if err := s.store.MarkConversationRead(ctx, selfID, peerID); err != nil {
		s.log.Error("Conversation not marked as read", "peer", peerID, "error", err)
		s.toaster.Toast(ToastTitle, MarkReadFailed)
		return err
	}
	s.cache.Invalidate(cache.ChatUsersKey)
	return nil
}

func (s *ConversationService) Clear(ctx context.Context, peerID string) error {
	selfID, ok := s.identity.CurrentUserID()
	if !ok {
		return errors.ErrUnauthenticated
	}
	if err := s.store.ClearConversation(ctx, selfID, peerID); err != nil {
		s.log.Error("Conversation not cleared", "peer", peerID, "error", err)
		s.toaster.Toast(ToastTitle, ClearFailed)
		return err
	}
	s.cache.Invalidate(cache.ChatUsersKey)
	if active, ok := s.ActiveConversation(); ok && active == peerID {
		s.cache.Invalidate(cache.ConversationPrefix(peerID))
	}
	return nil
}

// ToggleReaction is accepted but reactions are not stored yet.
func (s *ConversationService) ToggleReaction(_ context.Context, messageID, reaction string) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.ErrUnauthenticated
	}
	s.log.Debug("Reaction toggled", "message", messageID, "reaction", reaction)
	return nil
}

// GetSettings returns the settings of the conversation with peerID, nil
// without a signed-in user. Settings are not stored yet: they are the defaults.
func (s *ConversationService) GetSettings(ctx context.Context, peerID string) (*domain.ConversationSettings, error) {
	return cache.Fetch(ctx, s.cache, cache.SettingsKey(peerID), s.settingsOptions(), s.fetchSettings)
}

func (s *ConversationService) ObserveSettings(peerID string) *cache.Observation[*domain.ConversationSettings] {
	return cache.Observe(s.cache, cache.SettingsKey(peerID), s.settingsOptions(), s.fetchSettings)
}

// UpdateSettings is accepted but not stored yet.
func (s *ConversationService) UpdateSettings(_ context.Context, peerID string, patch domain.SettingsPatch) error {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return errors.ErrUnauthenticated
	}
	if peerID == "" {
		s.toaster.Toast(ToastTitle, SettingsFailed)
		return errors.ErrInvalidMessage
	}
	s.log.Debug("Conversation settings updated", "peer", peerID, "empty", patch.IsEmpty())
	s.cache.Invalidate(cache.SettingsPrefix)
	return nil
}

func (s *ConversationService) settingsOptions() cache.Options {
	opts := s.opts
	opts.RefetchOnFocus = true
	return opts
}

func (s *ConversationService) fetchSettings(context.Context) (*domain.ConversationSettings, error) {
	if _, ok := s.identity.CurrentUserID(); !ok {
		return nil, nil
	}
	return lo.ToPtr(domain.DefaultSettings()), nil
}

// Focus tells the cache the host window is focused again.
func (s *ConversationService) Focus() {
	s.cache.Focus()
}

// OnNewMessage notifies when the message is not already on screen, then
// refreshes the conversation list and, when it belongs to it, the active
// conversation.
func (s *ConversationService) OnNewMessage(change event.MessageChange) {
	selfID, ok := s.identity.CurrentUserID()
	if !ok {
		return
	}
	m := change.Message
	active, hasActive := s.ActiveConversation()

	if m.SenderID != selfID && (!hasActive || m.SenderID != active || s.notifier.Hidden()) {
		s.notify(m.Content)
	}
	s.cache.Invalidate(cache.ChatUsersKey)
	if hasActive && m.Involves(selfID, active) {
		s.cache.Invalidate(cache.ConversationPrefix(active))
	}
}

// OnMessageUpdate refreshes the conversation the message belongs to.
func (s *ConversationService) OnMessageUpdate(change event.MessageChange) {
	selfID, ok := s.identity.CurrentUserID()
	if !ok {
		return
	}
	s.cache.Invalidate(cache.ConversationPrefix(change.Message.Counterpart(selfID)))
}

// notify runs in the background so the realtime goroutine never waits on a
// permission prompt.
func (s *ConversationService) notify(content string) {
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		s.notifier.Show(s.ctx, content)
	}()
}

// Close cancels pending notifications and waits for them.
func (s *ConversationService) Close() {
	s.cancel()
	s.notifications.Wait()
}
