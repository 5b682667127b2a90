package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("pw1")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	if hash == "pw1" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !verifyPassword("pw1", hash) {
		t.Fatalf("expected original password to verify")
	}
	if verifyPassword("pw2", hash) {
		t.Fatalf("expected different password to fail verification")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := hashPassword("same")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	h2, err := hashPassword("same")
	if err != nil {
		t.Fatalf("hashPassword error: %v", err)
	}
	// bcrypt salts per call; both must still verify.
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for repeated hashing")
	}
	if !verifyPassword("same", h1) || !verifyPassword("same", h2) {
		t.Fatalf("expected both hashes to verify the password")
	}
}

func TestValidRole(t *testing.T) {
	if !validRole("ops") || !validRole("client") {
		t.Fatalf("expected ops and client to be valid roles")
	}
	for _, r := range []string{"", "admin", "OPS", "Client"} {
		if validRole(r) {
			t.Errorf("expected role %q to be invalid", r)
		}
	}
}

func TestSignupHandlerRejectsBadRequests(t *testing.T) {
	h := Config{}.signupHandler(nil)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed json", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing email", http.MethodPost, `{"password":"pw1","role":"ops"}`, http.StatusBadRequest},
		{"missing password", http.MethodPost, `{"email":"a@x.com","role":"ops"}`, http.StatusBadRequest},
		{"bad role", http.MethodPost, `{"email":"a@x.com","password":"pw1","role":"root"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/signup", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("got status %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestLoginHandlerRejectsBadRequests(t *testing.T) {
	h := Config{}.loginHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}

	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
