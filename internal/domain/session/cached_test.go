package session

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	platformtesting "transportadoras-server-go/internal/platform/testing"
)

type stubVerifier struct {
	calls int
	sess  *Session
	err   error
}

func (s *stubVerifier) Verify(context.Context, string) (*Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

func newCached(t *testing.T, inner Verifier) (*CachedVerifier, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cached, err := NewCachedVerifier(CacheOptions{
		Inner:  inner,
		Addr:   mr.Addr(),
		TTL:    time.Minute,
		Logger: platformtesting.SetupTestLogger(t),
	})
	if err != nil {
		t.Fatalf("NewCachedVerifier: %v", err)
	}
	t.Cleanup(func() { _ = cached.Close() })
	return cached, mr
}

func TestCachedVerifierCachesPositiveVerdicts(t *testing.T) {
	inner := &stubVerifier{sess: &Session{UserID: "u1"}}
	cached, _ := newCached(t, inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		sess, err := cached.Verify(ctx, "tok-1")
		if err != nil {
			t.Fatalf("Verify #%d: %v", i, err)
		}
		if sess.UserID != "u1" {
			t.Fatalf("unexpected session: %+v", sess)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("portal should be consulted once, got %d calls", inner.calls)
	}
}

func TestCachedVerifierDoesNotCacheFailures(t *testing.T) {
	inner := &stubVerifier{err: ErrInvalid}
	cached, _ := newCached(t, inner)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.Verify(ctx, "bad"); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid, got %v", err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("rejections must not be cached, got %d calls", inner.calls)
	}
}

func TestCachedVerifierExpiry(t *testing.T) {
	inner := &stubVerifier{sess: &Session{UserID: "u1"}}
	cached, mr := newCached(t, inner)
	ctx := context.Background()

	if _, err := cached.Verify(ctx, "tok"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cached.Verify(ctx, "tok"); err != nil {
		t.Fatalf("Verify after expiry: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expired entry should re-verify, got %d calls", inner.calls)
	}
}

func TestCachedVerifierInvalidate(t *testing.T) {
	inner := &stubVerifier{sess: &Session{UserID: "u1"}}
	cached, _ := newCached(t, inner)
	ctx := context.Background()

	if _, err := cached.Verify(ctx, "tok"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := cached.Invalidate(ctx, "tok"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := cached.Verify(ctx, "tok"); err != nil {
		t.Fatalf("Verify after invalidate: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("invalidated entry should re-verify, got %d calls", inner.calls)
	}
}
