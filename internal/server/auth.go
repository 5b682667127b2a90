// auth.go - Signup and login handlers.
//
// Login returns the user's role only; no session or cookie is issued.
// File access is granted solely through signed download tokens.
package server

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// signupRequest represents the JSON payload for user signup
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// loginRequest represents the JSON payload for user login
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// signupHandler handles POST /signup. Duplicate emails are rejected with
// 400 whether they are caught by the pre-check or by the unique index.
func (cfg Config) signupHandler(db *sql.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		req.Role = strings.TrimSpace(req.Role)

		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password required", http.StatusBadRequest)
			return
		}
		if !validRole(req.Role) {
			http.Error(w, "role must be ops or client", http.StatusBadRequest)
			return
		}

		passwordHash, err := hashPassword(req.Password)
		if err != nil {
			log.Printf("signup: hash failed: %v", err)
			http.Error(w, "failed to process password", http.StatusInternalServerError)
			return
		}

		if _, err := createUser(r.Context(), db, req.Email, passwordHash, req.Role); err != nil {
			if err == errDuplicateEmail {
				http.Error(w, "user already exists", http.StatusBadRequest)
				return
			}
			log.Printf("signup: db insert failed: %v", err)
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		}

		GetMetrics().RecordSignup()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "signup successful",
		})
	})
}

// loginHandler handles POST /login and acknowledges valid credentials with
// the user's role. Callers re-authenticate on later requests.
func (cfg Config) loginHandler(db *sql.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		u, ok := authenticateUser(r.Context(), db, req.Email, req.Password)
		GetMetrics().RecordLoginAttempt(ok)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(loginResponse{
			Message: "login successful",
			Role:    u.Role,
		})
	})
}
