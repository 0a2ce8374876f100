package session

import (
	"net/url"
	"sync"
)

const tokenParam = "sessionToken"

// Store holds the session token handed over by the portal. The token is kept
// in memory only; restarting the client requires going through the portal
// again.
type Store struct {
	mu    sync.RWMutex
	token string
}

func NewStore() *Store { return &Store{} }

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear drops the token, typically after the server reports it expired.
func (s *Store) Clear() {
	s.Set("")
}

func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// TokenFromLaunchURL extracts the portal's sessionToken parameter from the
// launch URL and returns the token together with the URL stripped of it, so
// the credential does not linger in addresses or history.
func TokenFromLaunchURL(raw string) (token, stripped string, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	query := parsed.Query()
	token = query.Get(tokenParam)
	if token == "" {
		return "", raw, nil
	}
	query.Del(tokenParam)
	parsed.RawQuery = query.Encode()
	return token, parsed.String(), nil
}
