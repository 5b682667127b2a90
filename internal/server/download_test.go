package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDownloadHandlerInvalidMethod(t *testing.T) {
	h := Config{}.downloadHandler(nil, nil, "")

	req := httptest.NewRequest(http.MethodPost, "/download/some-token", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestDownloadHandlerEmptyToken(t *testing.T) {
	t.Setenv("DSH_DOWNLOAD_SECRET", "testsecret")
	h := Config{}.downloadHandler(nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/download/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestDownloadHandlerGarbageToken(t *testing.T) {
	t.Setenv("DSH_DOWNLOAD_SECRET", "testsecret")
	h := Config{}.downloadHandler(nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/download/not-a-real-token", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusForbidden)
	}
	if !strings.Contains(rr.Body.String(), "invalid or expired token") {
		t.Errorf("expected collapsed rejection message, got %q", rr.Body.String())
	}
}

func TestDownloadHandlerExpiredToken(t *testing.T) {
	t.Setenv("DSH_DOWNLOAD_SECRET", "testsecret")
	h := Config{}.downloadHandler(nil, nil, "")

	tok, err := signDownloadToken(1, time.Now().Add(-3700*time.Second))
	if err != nil {
		t.Fatalf("signDownloadToken error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/download/"+tok, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusForbidden)
	}

	// The response must not reveal whether the token expired or was forged.
	if strings.TrimSpace(rr.Body.String()) != "invalid or expired token" {
		t.Errorf("expected collapsed rejection message, got %q", rr.Body.String())
	}
}

func TestDownloadHandlerSecretMissing(t *testing.T) {
	t.Setenv("DSH_DOWNLOAD_SECRET", "")
	h := Config{}.downloadHandler(nil, nil, "")

	req := httptest.NewRequest(http.MethodGet, "/download/whatever", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
