package carriers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"transportadoras-server-go/internal/domain/carrier"
	platformtesting "transportadoras-server-go/internal/platform/testing"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[string]carrier.Carrier
	fail    error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]carrier.Carrier)}
}

func (r *memoryRepo) List(context.Context) ([]carrier.Carrier, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]carrier.Carrier, 0, len(r.records))
	for _, c := range r.records {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (carrier.Carrier, error) {
	if r.fail != nil {
		return carrier.Carrier{}, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.records[id]
	if !ok {
		return carrier.Carrier{}, carrier.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *memoryRepo) Create(_ context.Context, c carrier.Carrier) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[c.ID] = c.Clone()
	return nil
}

func (r *memoryRepo) Update(_ context.Context, c carrier.Carrier) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[c.ID]; !ok {
		return carrier.ErrNotFound
	}
	r.records[c.ID] = c.Clone()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return carrier.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *memoryRepo) Count(context.Context) (int64, error) {
	if r.fail != nil {
		return 0, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *memoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemoryRepo()
	logger := platformtesting.SetupTestLogger(t)
	carrierSvc, err := carrier.NewService(carrier.Options{Repository: repo, Logger: logger})
	if err != nil {
		t.Fatalf("carrier.NewService: %v", err)
	}
	svc, err := NewService(carrierSvc, logger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	engine := gin.New()
	api := engine.Group("/api")
	if err := svc.Register(context.Background(), api, api); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return engine, repo
}

func request(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeCarrier(t *testing.T, w *httptest.ResponseRecorder) carrier.Carrier {
	t.Helper()
	var c carrier.Carrier
	if err := json.Unmarshal(w.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode carrier: %v (%s)", err, w.Body.String())
	}
	return c
}

func TestCreateReturns201WithServerID(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := request(t, engine, http.MethodPost, "/api/transportadoras", map[string]any{
		"nome":    "trans alfa",
		"email":   "X@Alfa.com",
		"regioes": []string{"SUL"},
		"estados": []string{"PARANÁ"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	created := decodeCarrier(t, w)
	if created.ID == "" {
		t.Error("created record must carry a server-assigned id")
	}
	if created.Name != "TRANS ALFA" || created.Email != "x@alfa.com" {
		t.Errorf("canonicalization missing: %+v", created)
	}
	if created.UpdatedAt.IsZero() {
		t.Error("created record must carry a server-assigned timestamp")
	}
}

func TestCreateMissingName(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := request(t, engine, http.MethodPost, "/api/transportadoras", map[string]any{
		"email": "x@alfa.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("validation failure must carry an error message")
	}
}

func TestListSortedByName(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, name := range []string{"ZETA", "ALFA"} {
		w := request(t, engine, http.MethodPost, "/api/transportadoras", map[string]any{"nome": name})
		if w.Code != http.StatusCreated {
			t.Fatalf("seed create failed: %d", w.Code)
		}
	}

	w := request(t, engine, http.MethodGet, "/api/transportadoras", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []carrier.Carrier
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "ALFA" || list[1].Name != "ZETA" {
		t.Fatalf("list not sorted: %+v", list)
	}
}

func TestGetRoundTripSets(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := request(t, engine, http.MethodPost, "/api/transportadoras", map[string]any{
		"nome":    "X",
		"regioes": []string{"SUL"},
		"estados": []string{"PARANÁ"},
	})
	created := decodeCarrier(t, w)

	w = request(t, engine, http.MethodGet, "/api/transportadoras/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decodeCarrier(t, w)
	if len(got.Regions) != 1 || got.Regions[0] != "SUL" {
		t.Errorf("regions round-trip mismatch: %v", got.Regions)
	}
	if len(got.States) != 1 || got.States[0] != "PARANÁ" {
		t.Errorf("states round-trip mismatch: %v", got.States)
	}
}

func TestGetMissingIs404(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := request(t, engine, http.MethodGet, "/api/transportadoras/absent", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	engine, _ := newTestEngine(t)

	created := decodeCarrier(t, request(t, engine, http.MethodPost, "/api/transportadoras",
		map[string]any{"nome": "ALFA", "telefones": []string{"11"}}))

	w := request(t, engine, http.MethodPut, "/api/transportadoras/"+created.ID, map[string]any{
		"nome": "alfa ltda",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decodeCarrier(t, w)
	if updated.ID != created.ID {
		t.Error("update must not change the id")
	}
	if updated.Name != "ALFA LTDA" {
		t.Errorf("update not applied: %s", updated.Name)
	}
	if len(updated.Phones) != 0 {
		t.Errorf("update replaces all mutable fields, got phones %v", updated.Phones)
	}
}

func TestUpdateMissingIs404(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := request(t, engine, http.MethodPut, "/api/transportadoras/absent", map[string]any{"nome": "X"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteReturns204(t *testing.T) {
	engine, _ := newTestEngine(t)

	created := decodeCarrier(t, request(t, engine, http.MethodPost, "/api/transportadoras",
		map[string]any{"nome": "ALFA"}))

	w := request(t, engine, http.MethodDelete, "/api/transportadoras/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("204 must carry an empty body")
	}

	w = request(t, engine, http.MethodDelete, "/api/transportadoras/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", w.Code)
	}
}

func TestStoreFailureWrappedAs500(t *testing.T) {
	engine, repo := newTestEngine(t)
	repo.fail = errors.New("database is locked")

	w := request(t, engine, http.MethodGet, "/api/transportadoras", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("store failure must produce a JSON envelope: %v", err)
	}
	if body["error"] == nil {
		t.Error("error envelope missing error field")
	}
}

func TestHeadProbe(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := request(t, engine, http.MethodHead, "/api/transportadoras", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
