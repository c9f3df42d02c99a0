package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIPRateLimitDevolve429AposEstourarRajada(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	handler := IPRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var ultimo *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
		req.Header.Set("X-Real-IP", "10.0.0.7")
		ultimo = httptest.NewRecorder()
		handler.ServeHTTP(ultimo, req)
	}

	if ultimo.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 após estourar a rajada, got %d", ultimo.Code)
	}
	if ultimo.Header().Get("Retry-After") != "1" {
		t.Fatal("expected header Retry-After")
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(ultimo.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "RATE_LIMIT" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if !strings.Contains(body.Error.Message, "Muitas requisições") {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
}

func TestIPRateLimitIsolaChavesPorIP(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := IPRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	primeira := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	primeira.Header.Set("X-Real-IP", "10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, primeira)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 para o primeiro IP, got %d", rec.Code)
	}

	// Outro IP tem o próprio bucket e não é afetado.
	segunda := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	segunda.Header.Set("X-Real-IP", "10.0.0.2")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, segunda)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 para IP distinto, got %d", rec.Code)
	}
}

func TestUserRateLimitPassaDiretoSemSubject(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := UserRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("requisição sem subject não deve ser limitada, got %d", rec.Code)
		}
	}
}
