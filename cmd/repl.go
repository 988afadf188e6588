package main

import (
	"bufio"
	"chat-dm/cache"
	"chat-dm/domain"
	"chat-dm/domain/chat"
	"chat-dm/errors"
	"chat-dm/services"
	"chat-dm/ui"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const help = `commands:
  /open <user>      open the conversation with user
  /close            close the active conversation
  /search <text>    search the active conversation
  /users            list conversations
  /read             mark the active conversation as read
  /clear            clear the active conversation
  /hide             put the terminal in the background
  /focus            click the last notification, or refocus
  /quit
anything else is sent to the active conversation`

var errQuit = fmt.Errorf("quit")

// repl reads commands line by line and renders the observed queries.
type repl struct {
	service  *services.ConversationService
	terminal *ui.Terminal
	out      io.Writer
	selfID   string
	wait     time.Duration

	mu           sync.Mutex
	conversation *cache.Observation[[]domain.Message]
	rendering    sync.WaitGroup
}

func newREPL(service *services.ConversationService, terminal *ui.Terminal, out io.Writer, selfID string) *repl {
	return &repl{service: service, terminal: terminal, out: out, selfID: selfID, wait: 10 * time.Second}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	defer r.closeConversation()
	fmt.Fprintln(r.out, help)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := r.handle(ctx, strings.TrimSpace(line)); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				r.terminal.Info("%v", err)
			}
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return r.send(ctx, line)
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/open":
		if arg == "" {
			return fmt.Errorf("usage: /open <user>")
		}
		return r.open(ctx, arg, "")
	case "/close":
		r.closeConversation()
		r.service.SetActiveConversation("")
		return nil
	case "/search":
		peerID, ok := r.service.ActiveConversation()
		if !ok {
			return fmt.Errorf("no active conversation")
		}
		return r.open(ctx, peerID, arg)
	case "/users":
		return r.users(ctx)
	case "/read":
		peerID, ok := r.service.ActiveConversation()
		if !ok {
			return fmt.Errorf("no active conversation")
		}
		return r.service.MarkRead(ctx, peerID)
	case "/clear":
		peerID, ok := r.service.ActiveConversation()
		if !ok {
			return fmt.Errorf("no active conversation")
		}
		return r.service.Clear(ctx, peerID)
	case "/hide":
		r.terminal.Hide()
		return nil
	case "/focus":
		if !r.terminal.ClickLatest() {
			r.terminal.Focus()
		}
		return nil
	case "/help":
		fmt.Fprintln(r.out, help)
		return nil
	case "/quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %s", command)
	}
}

func (r *repl) send(ctx context.Context, content string) error {
	peerID, ok := r.service.ActiveConversation()
	if !ok {
		return fmt.Errorf("no active conversation, use /open <user>")
	}
	_, err := r.service.Send(ctx, chat.SendMessageCommand{RecipientID: peerID, Content: content})
	return err
}

// open makes peerID the active conversation and renders every settled page
// of it until another conversation is opened.
func (r *repl) open(ctx context.Context, peerID, search string) error {
	r.closeConversation()
	r.service.SetActiveConversation(peerID)
	o := r.service.ObserveConversation(peerID, search)

	r.mu.Lock()
	r.conversation = o
	r.mu.Unlock()

	r.rendering.Add(1)
	go func() {
		defer r.rendering.Done()
		for s := range o.Updates() {
			switch {
			case s.Fetching:
			case s.Err != nil:
				r.terminal.Info("conversation unavailable: %v", s.Err)
			case s.HasValue:
				ui.RenderConversation(r.out, r.selfID, s.Value)
			}
		}
	}()

	if search == "" {
		return r.service.MarkRead(ctx, peerID)
	}
	return nil
}

func (r *repl) closeConversation() {
	r.mu.Lock()
	o := r.conversation
	r.conversation = nil
	r.mu.Unlock()
	if o != nil {
		o.Close()
	}
	r.rendering.Wait()
}

func (r *repl) users(ctx context.Context) error {
	o := r.service.ObserveChatUsers()
	defer o.Close()
	ctx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()
	s, err := o.WaitFor(ctx, func(s cache.Snapshot[[]domain.ChatUser]) bool { return s.Settled() })
	if err != nil {
		return err
	}
	if s.Err != nil {
		return s.Err
	}
	ui.RenderChatUsers(r.out, s.Value)
	return nil
}
