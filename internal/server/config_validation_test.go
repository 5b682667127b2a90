package server

import (
	"strings"
	"testing"
)

func setCompleteEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/docshare?sslmode=disable")
	t.Setenv("DSH_DOWNLOAD_SECRET", "a-long-enough-secret")
	t.Setenv("DSH_S3_ENDPOINT", "localhost:9000")
	t.Setenv("DSH_S3_ACCESS_KEY", "minio")
	t.Setenv("DSH_S3_SECRET_KEY", "minio123")
	t.Setenv("DSH_BUCKET", "docshare")
	t.Setenv("DSH_MAX_UPLOAD_BYTES", "")
	t.Setenv("DSH_TOKEN_TTL_SECONDS", "")
}

func TestValidateEnvComplete(t *testing.T) {
	setCompleteEnv(t)

	if err := ValidateEnv(); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidateEnvMissingRequired(t *testing.T) {
	setCompleteEnv(t)
	t.Setenv("DSH_DOWNLOAD_SECRET", "")
	t.Setenv("DSH_BUCKET", "")

	err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for missing required settings")
	}
	if !strings.Contains(err.Error(), "DSH_DOWNLOAD_SECRET") ||
		!strings.Contains(err.Error(), "DSH_BUCKET") {
		t.Errorf("expected both missing fields reported, got: %v", err)
	}
}

func TestValidateEnvShortSecret(t *testing.T) {
	setCompleteEnv(t)
	t.Setenv("DSH_DOWNLOAD_SECRET", "short")

	if err := ValidateEnv(); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestValidateEnvBadNumbers(t *testing.T) {
	setCompleteEnv(t)
	t.Setenv("DSH_MAX_UPLOAD_BYTES", "lots")
	t.Setenv("DSH_TOKEN_TTL_SECONDS", "-5")

	err := ValidateEnv()
	if err == nil {
		t.Fatal("expected error for bad numeric settings")
	}
	if !strings.Contains(err.Error(), "DSH_MAX_UPLOAD_BYTES") ||
		!strings.Contains(err.Error(), "DSH_TOKEN_TTL_SECONDS") {
		t.Errorf("expected both numeric fields reported, got: %v", err)
	}
}

func TestValidateEnvBadEndpoint(t *testing.T) {
	setCompleteEnv(t)
	t.Setenv("DSH_S3_ENDPOINT", "http://minio:9000/path")

	if err := ValidateEnv(); err == nil {
		t.Fatal("expected error for endpoint with path")
	}
}
