package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"transportadoras-server-go/internal/client/api"
	"transportadoras-server-go/internal/client/cache"
	"transportadoras-server-go/internal/domain/carrier"
	platformtesting "transportadoras-server-go/internal/platform/testing"
)

type fixture struct {
	controller *Controller
	cache      *cache.Cache
	errorMsgs  *[]string
	expired    *atomic.Bool
}

// newFixture builds a controller against the given handler. A nil handler
// simulates an unreachable server by closing the listener up front.
func newFixture(t *testing.T, handler http.HandlerFunc) fixture {
	t.Helper()

	srv := httptest.NewServer(handler)
	if handler == nil {
		srv.Close()
	} else {
		t.Cleanup(srv.Close)
	}

	client, err := api.NewClient(api.Options{
		BaseURL: srv.URL,
		Token:   func() string { return "tok" },
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}

	store := cache.New()
	var msgs []string
	var expired atomic.Bool
	ctrl, err := New(Options{
		API:    client,
		Cache:  store,
		Logger: platformtesting.SetupTestLogger(t),
		Hooks: Hooks{
			OnError:          func(msg string) { msgs = append(msgs, msg) },
			OnSessionExpired: func() { expired.Store(true) },
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fixture{controller: ctrl, cache: store, errorMsgs: &msgs, expired: &expired}
}

func snapshot(t *testing.T, c *cache.Cache) []byte {
	t.Helper()
	data, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return data
}

func seeded() carrier.Carrier {
	return carrier.Carrier{
		ID:        "1",
		Name:      "ACME",
		Email:     "acme@x.com",
		Phones:    []string{"11 5555"},
		Mobiles:   []string{},
		Regions:   []string{"SUL"},
		States:    []string{"PARANÁ"},
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateRollbackLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t, nil)
	f.cache.ReplaceAll([]carrier.Carrier{seeded()})
	before := snapshot(t, f.cache)

	_, err := f.controller.Create(context.Background(), carrier.Carrier{Name: "NOVA"})
	if err == nil {
		t.Fatal("expected failure against a closed server")
	}

	after := snapshot(t, f.cache)
	if !bytes.Equal(before, after) {
		t.Errorf("cache differs after rollback:\nbefore %s\nafter  %s", before, after)
	}
	if len(*f.errorMsgs) == 0 {
		t.Error("failure must surface an error notification")
	}
}

func TestCreateConfirmedReplacesShadowInPlace(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		var in carrier.Carrier
		json.NewDecoder(r.Body).Decode(&in)
		in.ID = "server-42"
		in.Name = strings.ToUpper(strings.TrimSpace(in.Name))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in)
	})

	created, err := f.controller.Create(context.Background(), carrier.Carrier{Name: "nova"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "server-42" {
		t.Errorf("expected server id, got %q", created.ID)
	}
	if _, found := f.cache.Find("server-42"); !found {
		t.Error("confirmed record missing from cache")
	}
	for _, rec := range f.cache.All() {
		if strings.HasPrefix(rec.ID, localIDPrefix) {
			t.Errorf("shadow record leaked: %+v", rec)
		}
	}
}

func TestUpdateRollbackRestoresOriginal(t *testing.T) {
	f := newFixture(t, nil)
	original := seeded()
	f.cache.ReplaceAll([]carrier.Carrier{original})

	edit := original.Clone()
	edit.Name = "ACME LTD"
	if _, err := f.controller.Update(context.Background(), "1", edit); err == nil {
		t.Fatal("expected failure against a closed server")
	}

	restored, found := f.cache.Find("1")
	if !found {
		t.Fatal("record vanished after rollback")
	}
	if restored.Name != "ACME" {
		t.Errorf("expected original name restored, got %q", restored.Name)
	}
	if restored.UpdatedAt != original.UpdatedAt {
		t.Errorf("timestamp not restored: %v", restored.UpdatedAt)
	}
}

func TestDeleteRollbackReinsertsFullRecord(t *testing.T) {
	f := newFixture(t, nil)
	original := seeded()
	f.cache.ReplaceAll([]carrier.Carrier{original})

	if err := f.controller.Delete(context.Background(), "1"); err == nil {
		t.Fatal("expected failure against a closed server")
	}

	restored, found := f.cache.Find("1")
	if !found {
		t.Fatal("record not reinserted after rollback")
	}
	if restored.Email != original.Email || len(restored.Phones) != 1 ||
		len(restored.Regions) != 1 || len(restored.States) != 1 {
		t.Errorf("partial record reinserted: %+v", restored)
	}
}

func TestDeleteOptimisticallyRemoves(t *testing.T) {
	done := make(chan struct{})
	var observed atomic.Int64
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-done
		w.WriteHeader(http.StatusNoContent)
	})
	f.cache.ReplaceAll([]carrier.Carrier{seeded()})

	go func() {
		f.controller.Delete(context.Background(), "1")
		observed.Store(1)
	}()

	// The record must disappear before the request settles.
	deadline := time.Now().Add(2 * time.Second)
	for f.cache.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("optimistic removal did not happen")
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(done)

	for observed.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if f.cache.Len() != 0 {
		t.Error("confirmed delete must not reinsert")
	}
}

func TestSecondMutationOnSameIDRejected(t *testing.T) {
	done := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-done
		w.WriteHeader(http.StatusNoContent)
	})
	f.cache.ReplaceAll([]carrier.Carrier{seeded()})

	started := make(chan struct{})
	go func() {
		close(started)
		f.controller.Delete(context.Background(), "1")
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	err := f.controller.Delete(context.Background(), "1")
	if !errors.Is(err, ErrMutationPending) {
		t.Errorf("expected ErrMutationPending, got %v", err)
	}
	close(done)
}

func TestUnauthorizedSkipsRollbackAndExpiresSession(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": "Sessão inválida", "redirectToLogin": true})
	})
	f.cache.ReplaceAll([]carrier.Carrier{seeded()})

	err := f.controller.Delete(context.Background(), "1")
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !f.expired.Load() {
		t.Error("session-expired hook not invoked")
	}
	if len(*f.errorMsgs) != 0 {
		t.Error("auth failure is not a toast-style mutation failure")
	}
}

func TestRefreshReplacesCollection(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]carrier.Carrier{seeded()})
	})

	if err := f.controller.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if f.cache.Len() != 1 {
		t.Errorf("expected 1 record after refresh, got %d", f.cache.Len())
	}
}
