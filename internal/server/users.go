// users.go - Credential store and password hashing.
//
// Users are insert-only: records are never updated or deleted, and email
// uniqueness is enforced by the database, not by application locks.
package server

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// Roles a user can sign up with.
const (
	RoleOps    = "ops"
	RoleClient = "client"
)

var errDuplicateEmail = errors.New("email already registered")

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type userRecord struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
}

func validRole(role string) bool {
	return role == RoleOps || role == RoleClient
}

// hashPassword generates a bcrypt hash of the password
func hashPassword(password string) (string, error) {
	// bcrypt cost of 12 is a good balance of security and performance
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a password with its hash
func verifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// createUser inserts a new user and returns its id. The unique index on
// email decides duplicate signups, so concurrent attempts cannot race.
func createUser(ctx context.Context, db *sql.DB, email, passwordHash, role string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		email, passwordHash, role,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, errDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

// findUserByEmail returns the user for email, or nil when none exists.
func findUserByEmail(ctx context.Context, db *sql.DB, email string) (*userRecord, error) {
	var u userRecord
	err := db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// authenticateUser checks credentials against the database.
func authenticateUser(ctx context.Context, db *sql.DB, email, password string) (*userRecord, bool) {
	u, err := findUserByEmail(ctx, db, email)
	if err != nil {
		log.Printf("auth: db query failed: %v", err)
		return nil, false
	}
	if u == nil {
		return nil, false
	}
	if !verifyPassword(password, u.PasswordHash) {
		return nil, false
	}
	return u, true
}
