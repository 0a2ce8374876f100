package session

import "context"

// Session is the identity attached to a request after a token verifies. The
// gateway never inspects the token itself; everything here comes from the
// portal's verification response.
type Session struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
	// Offline marks sessions admitted under the fail-open policy while the
	// portal was unreachable.
	Offline bool `json:"offline,omitempty"`
}

// Verifier validates an opaque session token by delegation.
//
// Verify returns the session identity for a valid token, ErrInvalid for a
// token the portal rejected, and ErrUnreachable when the portal could not be
// consulted at all. Callers decide the unreachable policy; Verifier never
// does.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
}
