package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenVerifier_RoundTrip(t *testing.T) {
	v := NewTokenVerifier("test-secret")

	token, err := v.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := v.Verify(token); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestTokenVerifier_RejectsTamperedToken(t *testing.T) {
	v := NewTokenVerifier("test-secret")
	token, err := v.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other := NewTokenVerifier("other-secret")
	if err := other.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
	if err := v.Verify(token + "x"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
	if err := v.Verify(""); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestTokenVerifier_DisabledAcceptsAll(t *testing.T) {
	v := NewTokenVerifier("")
	if v.Enabled() {
		t.Fatalf("verifier with empty secret should be disabled")
	}
	if err := v.Verify("anything"); err != nil {
		t.Errorf("disabled verifier should accept, got %v", err)
	}
}

func TestAuthHandler_IssuesToken(t *testing.T) {
	v := NewTokenVerifier("test-secret")
	h := NewAuthHandler(v)

	req := httptest.NewRequest(http.MethodPost, "/auth", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := v.Verify(body.Token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}
}

func TestAuthHandler_RejectsGet(t *testing.T) {
	h := NewAuthHandler(NewTokenVerifier("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
