package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

type memoryIdempotencyStore struct {
	data map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string]string)}
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	m.data[key] = str
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:idempotency:%s:%s", scope, id)
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// orderCreate posts to the order-create route with the chi pattern attached
// the way the real router would.
func orderCreate(handler http.Handler, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/restaurant/orders", strings.NewReader(body))
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/api/v1/restaurant/orders"}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"order create", http.MethodPost, "/api/v1/restaurant/orders", criticalIdempotencyTTL, true},
		{"payment notify", http.MethodPost, "/api/v1/restaurant/orders/123/payments/notify", criticalIdempotencyTTL, true},
		{"line item status", http.MethodPost, "/api/v1/supplier/orders/456/line-items/status", criticalIdempotencyTTL, true},
		{"payment confirm", http.MethodPost, "/api/v1/supplier/orders/456/payments/confirm", criticalIdempotencyTTL, true},
		{"product create", http.MethodPost, "/api/v1/supplier/products", defaultIdempotencyTTL, true},
		{"tier replace", http.MethodPut, "/api/v1/supplier/products/789/tiers", defaultIdempotencyTTL, true},
		{"user invite", http.MethodPost, "/api/v1/businesses/me/users/invite", defaultIdempotencyTTL, true},
		{"admin business action", http.MethodPost, "/api/admin/v1/businesses/42/approve", defaultIdempotencyTTL, true},
		{"admin subscription create", http.MethodPost, "/api/admin/v1/subscriptions", defaultIdempotencyTTL, true},
		{"non idempotent", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"get never idempotent", http.MethodGet, "/api/v1/restaurant/orders", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoute(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	var handled bool
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
		w.WriteHeader(http.StatusCreated)
	}))

	rec := orderCreate(handler, "", `{"supplier_id":"s1"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if handled {
		t.Fatal("order handler ran without an idempotency key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	var calls int
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// drain like a real handler so the middleware's body restore
		// is exercised
		_, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":"ord-1"}}`))
	}))

	first := orderCreate(handler, "key-ord-1", `{"supplier_id":"s1"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replay := orderCreate(handler, "key-ord-1", `{"supplier_id":"s1"}`)
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replay.Code)
	}
	if ct := replay.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type preserved, got %q", ct)
	}
	if got := strings.TrimSpace(replay.Body.String()); got != `{"data":{"order_id":"ord-1"}}` {
		t.Fatalf("expected stored body, got %s", got)
	}
	if calls != 1 {
		t.Fatalf("order handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	mw := Idempotency(newMemoryIdempotencyStore(), nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	orderCreate(handler, "key-ord-2", `{"supplier_id":"s1"}`)
	rec := orderCreate(handler, "key-ord-2", `{"supplier_id":"s2"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := Idempotency(store, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.c"}`))
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/api/v1/auth/login"}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through 200 got %d", rec.Code)
	}
	if len(store.data) != 0 {
		t.Fatalf("nothing should be stored for unguarded routes, got %d entries", len(store.data))
	}
}
