// Package auth supplies the identity of the signed-in user.
package auth

import (
	"sync"
)

// Session is the signed-in state of the client.
type Session struct {
	mu     sync.RWMutex
	userID string
}

// SignIn validates token and makes its user the current one.
func SignIn(signer Signer, token string) (*Session, error) {
	claims, err := signer.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Session{userID: claims.UserID}, nil
}

// Static returns a session signed in as userID without a token.
// An empty userID gives a signed-out session.
func Static(userID string) *Session {
	return &Session{userID: userID}
}

func (s *Session) CurrentUserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
}
