package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
)

// defaultMaxUploadBytes caps request bodies at 16 MiB unless overridden.
const defaultMaxUploadBytes = 16 << 20

// uploadResp is the JSON response returned after a successful file upload.
type uploadResp struct {
	Message      string `json:"message"`
	FileID       int64  `json:"file_id"`
	DownloadLink string `json:"download_link"`
}

// maxUploadBytes reads the DSH_MAX_UPLOAD_BYTES environment variable and
// returns the maximum allowed upload size in bytes. Returns an error if the
// value cannot be parsed.
func maxUploadBytes() (int64, error) {
	raw := os.Getenv("DSH_MAX_UPLOAD_BYTES")
	if raw == "" {
		return defaultMaxUploadBytes, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// uploadHandler handles POST /upload requests. The uploader identifies
// itself with HTTP Basic credentials (email:password); the owner recorded on
// the registry row is always the authenticated user, never a fixed default.
//
// The multipart field "file" supplies the content. The client filename is
// sanitized and kept as display metadata only; bytes are stored under a key
// derived from the generated file id.
func (cfg Config) uploadHandler(db *sql.DB, mc *minio.Client, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		email, password, haveAuth := r.BasicAuth()
		if !haveAuth {
			w.Header().Set("WWW-Authenticate", `Basic realm="docshare"`)
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		owner, ok := authenticateUser(r.Context(), db, email, password)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		limit, err := maxUploadBytes()
		if err != nil {
			http.Error(w, "server misconfigured", http.StatusInternalServerError)
			return
		}
		if limit > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}

		mr, err := r.MultipartReader()
		if err != nil {
			http.Error(w, "bad multipart", http.StatusBadRequest)
			return
		}

		var filePart io.Reader
		var clientName string
		var contentType string

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				http.Error(w, "bad multipart", http.StatusBadRequest)
				return
			}
			defer func() { _ = part.Close() }()

			if part.FormName() != "file" {
				continue
			}

			filePart = part
			clientName = part.FileName()
			contentType = part.Header.Get("Content-Type")
			break
		}

		if filePart == nil || clientName == "" {
			http.Error(w, "no file part", http.StatusBadRequest)
			return
		}

		filename := SanitizeFilename(clientName)
		if !extensionAllowed(fileExtension(filename)) {
			http.Error(w, "invalid file type, only .pptx, .docx and .xlsx allowed", http.StatusBadRequest)
			return
		}

		fileID, err := registerFile(r.Context(), db, filename, owner.ID)
		if err != nil {
			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=register_file err=%v", rid, err)
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()

		info, err := mc.PutObject(
			ctx,
			bucket,
			objectKeyFor(fileID),
			filePart,
			-1,
			minio.PutObjectOptions{ContentType: contentType},
		)
		if err != nil {
			GetMetrics().RecordUploadError()

			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=putobject file_id=%d err=%v", rid, fileID, err)

			// If MaxBytesReader tripped, surface 413.
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}

			http.Error(w, "upload failed", http.StatusBadGateway)
			return
		}

		token, err := signDownloadToken(fileID, time.Now().UTC())
		if err != nil {
			http.Error(w, "server misconfigured", http.StatusInternalServerError)
			return
		}

		GetMetrics().RecordUpload(info.Size)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(uploadResp{
			Message:      "file uploaded successfully",
			FileID:       fileID,
			DownloadLink: "/download/" + token,
		})
	})
}
