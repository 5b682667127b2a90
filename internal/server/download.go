package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// downloadHandler handles GET /download/{token}. The token alone grants
// access: whoever presents a valid one gets the file, with no identity
// check. Verification failures are collapsed into a single 403 so callers
// cannot tell a forged token from an expired one.
func (cfg Config) downloadHandler(db *sql.DB, mc *minio.Client, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token := strings.TrimPrefix(r.URL.Path, "/download/")
		if token == "" || strings.Contains(token, "/") {
			http.Error(w, "invalid or expired token", http.StatusForbidden)
			return
		}

		fileID, err := verifyDownloadToken(token, time.Now().UTC())
		if err != nil {
			if errors.Is(err, errDownloadSecretMissing) {
				http.Error(w, "server misconfigured", http.StatusInternalServerError)
				return
			}
			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=token_rejected err=%v", rid, err)
			http.Error(w, "invalid or expired token", http.StatusForbidden)
			return
		}

		f, err := getFile(r.Context(), db, fileID)
		if err != nil {
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		}
		if f == nil {
			http.Error(w, "file not found", http.StatusNotFound)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()

		obj, err := mc.GetObject(ctx, bucket, objectKeyFor(f.ID), minio.GetObjectOptions{})
		if err != nil {
			GetMetrics().RecordDownloadError()
			http.Error(w, "storage error", http.StatusBadGateway)
			return
		}
		defer func() { _ = obj.Close() }()

		// Force an early error for missing objects. A registry row without
		// content means an earlier upload died between insert and store.
		stat, statErr := obj.Stat()
		if statErr != nil {
			GetMetrics().RecordDownloadError()
			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=content_missing file_id=%d err=%v", rid, f.ID, statErr)
			http.Error(w, "file content missing", http.StatusNotFound)
			return
		}

		contentType := mime.TypeByExtension(filepath.Ext(f.Filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		if stat.Size > 0 {
			w.Header().Set("Content-Length", fmt.Sprintf("%d", stat.Size))
		}

		// Encourage safe download behavior in browsers.
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Filename))

		w.WriteHeader(http.StatusOK)

		n, _ := io.Copy(w, obj)
		GetMetrics().RecordDownload(n)
	})
}
