// download_tokens.go - HMAC-signed download token helpers.
//
// Encodes the file id and issuance time into URL-safe tokens and
// verifies them server-side before any file content is streamed.
package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"time"
)

// tokenNamespace is mixed into every signature so a token minted here can
// never be replayed against another endpoint signed with the same secret.
const tokenNamespace = "file-download"

// defaultTokenLifetime is how long a minted token stays valid.
const defaultTokenLifetime = 3600 * time.Second

var (
	errDownloadSecretMissing = errors.New("DSH_DOWNLOAD_SECRET missing")
	errBadToken              = errors.New("bad token")
	errTokenExpired          = errors.New("token expired")
)

type downloadClaims struct {
	FileID int64 `json:"file_id"`
	Iat    int64 `json:"iat"` // unix seconds at minting
}

// downloadSecret returns the raw secret bytes from env.
func downloadSecret() ([]byte, error) {
	sec := os.Getenv("DSH_DOWNLOAD_SECRET")
	if sec == "" {
		return nil, errDownloadSecretMissing
	}
	return []byte(sec), nil
}

// tokenLifetime reads DSH_TOKEN_TTL_SECONDS, defaulting to one hour.
func tokenLifetime() time.Duration {
	raw := os.Getenv("DSH_TOKEN_TTL_SECONDS")
	if raw == "" {
		return defaultTokenLifetime
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return defaultTokenLifetime
	}
	return time.Duration(n) * time.Second
}

func signClaims(secret, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write([]byte(tokenNamespace))
	_, _ = mac.Write([]byte{'.'})
	_, _ = mac.Write(payload)
	return mac.Sum(nil)
}

// signDownloadToken creates a compact token: base64url(payload).base64url(sig)
// where sig = HMAC-SHA256(secret, namespace + "." + payloadBytes).
func signDownloadToken(fileID int64, issuedAt time.Time) (string, error) {
	sec, err := downloadSecret()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(downloadClaims{
		FileID: fileID,
		Iat:    issuedAt.Unix(),
	})
	if err != nil {
		return "", err
	}

	sig := signClaims(sec, payload)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(sig), nil
}

// verifyDownloadToken validates signature + age and returns the file id.
func verifyDownloadToken(token string, now time.Time) (int64, error) {
	sec, err := downloadSecret()
	if err != nil {
		return 0, err
	}

	// token format: payload.sig
	dot := -1
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			dot = i
			break
		}
	}
	if dot <= 0 || dot >= len(token)-1 {
		return 0, errBadToken
	}

	enc := base64.RawURLEncoding
	payloadB, err := enc.DecodeString(token[:dot])
	if err != nil {
		return 0, errBadToken
	}
	sigB, err := enc.DecodeString(token[dot+1:])
	if err != nil {
		return 0, errBadToken
	}

	want := signClaims(sec, payloadB)
	if !hmac.Equal(sigB, want) {
		return 0, errBadToken
	}

	var c downloadClaims
	if err := json.Unmarshal(payloadB, &c); err != nil {
		return 0, errBadToken
	}

	if c.FileID <= 0 || c.Iat == 0 {
		return 0, errBadToken
	}

	if now.Unix()-c.Iat > int64(tokenLifetime()/time.Second) {
		return 0, errTokenExpired
	}

	return c.FileID, nil
}
