package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"transportadoras-server-go/internal/platform/logging"
)

var (
	// ErrInvalid means the portal saw the token and rejected it.
	ErrInvalid = errors.New("session token invalid")
	// ErrUnreachable means the portal could not be consulted (timeout or
	// connection failure). Policy branch, not a verdict on the token.
	ErrUnreachable = errors.New("session portal unreachable")
)

// PortalVerifier delegates token validation to the external portal via a
// server-to-server call with a bounded timeout.
type PortalVerifier struct {
	portalURL string
	client    *http.Client
	logger    *logging.Logger
}

// PortalOptions configures a PortalVerifier.
type PortalOptions struct {
	PortalURL string
	Timeout   time.Duration
	Logger    *logging.Logger
}

func NewPortalVerifier(opts PortalOptions) (*PortalVerifier, error) {
	if opts.PortalURL == "" {
		return nil, fmt.Errorf("portal url is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PortalVerifier{
		portalURL: strings.TrimRight(opts.PortalURL, "/"),
		client:    &http.Client{Timeout: timeout},
		logger:    opts.Logger,
	}, nil
}

type verifyRequest struct {
	SessionToken string `json:"sessionToken"`
}

type verifyResponse struct {
	Valid   bool     `json:"valid"`
	Session *Session `json:"session"`
}

func (v *PortalVerifier) Verify(ctx context.Context, token string) (*Session, error) {
	body, err := json.Marshal(verifyRequest{SessionToken: token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		v.portalURL+"/api/verify-session", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		if isUnreachable(err) {
			v.logger.WarnTag("sessão", "portal unreachable: %v", err)
			return nil, ErrUnreachable
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.InfoTag("sessão", "portal rejected token (status %d)", resp.StatusCode)
		return nil, ErrInvalid
	}

	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode portal response: %w", err)
	}
	if !payload.Valid {
		return nil, ErrInvalid
	}

	sess := payload.Session
	if sess == nil {
		sess = &Session{}
	}
	return sess, nil
}

func isUnreachable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
