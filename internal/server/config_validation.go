// config_validation.go - Startup environment validation.
//
// Validates environment variables once at startup to fail fast with clear
// error messages rather than runtime failures.
package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ConfigValidationError represents a single configuration problem.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ValidateEnv checks every setting the service reads from the environment
// and reports all problems at once.
func ValidateEnv() error {
	var errs []ConfigValidationError

	addError := func(field, message string) {
		errs = append(errs, ConfigValidationError{Field: field, Message: message})
	}

	for _, key := range []string{
		"DATABASE_URL",
		"DSH_DOWNLOAD_SECRET",
		"DSH_S3_ENDPOINT",
		"DSH_S3_ACCESS_KEY",
		"DSH_S3_SECRET_KEY",
		"DSH_BUCKET",
	} {
		if os.Getenv(key) == "" {
			addError(key, "required environment variable not set")
		}
	}

	if sec := os.Getenv("DSH_DOWNLOAD_SECRET"); sec != "" && len(sec) < 16 {
		addError("DSH_DOWNLOAD_SECRET", "secret must be at least 16 characters")
	}

	for _, key := range []string{"DSH_MAX_UPLOAD_BYTES", "DSH_TOKEN_TTL_SECONDS"} {
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n <= 0 {
			addError(key, "must be a positive integer")
		}
	}

	if ep := os.Getenv("DSH_S3_ENDPOINT"); ep != "" {
		if _, _, err := normaliseEndpoint(ep); err != nil {
			addError("DSH_S3_ENDPOINT", err.Error())
		}
	}

	if len(errs) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration invalid (%d error(s)):", len(errs))
	for _, e := range errs {
		sb.WriteString("\n  " + e.Error())
	}
	return fmt.Errorf("%s", sb.String())
}
