// files.go - File registry and the listing endpoint.
//
// The registry stores display metadata only; content lives in MinIO under
// a key derived from the generated id, so same-name uploads can never
// overwrite each other.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type fileRecord struct {
	ID       int64
	Filename string
	OwnerID  int64
}

// objectKeyFor returns the MinIO key for a registered file.
func objectKeyFor(fileID int64) string {
	return fmt.Sprintf("uploads/%d", fileID)
}

// registerFile inserts a metadata row and returns the new id.
func registerFile(ctx context.Context, db *sql.DB, filename string, ownerID int64) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		`INSERT INTO files (filename, owner_id) VALUES ($1, $2) RETURNING id`,
		filename, ownerID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// getFile returns the record for id, or nil when none exists.
func getFile(ctx context.Context, db *sql.DB, id int64) (*fileRecord, error) {
	var f fileRecord
	err := db.QueryRowContext(ctx,
		`SELECT id, filename, owner_id FROM files WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Filename, &f.OwnerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// listFiles returns every registered file in insertion order.
func listFiles(ctx context.Context, db *sql.DB) ([]fileRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, filename, owner_id FROM files ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []fileRecord
	for rows.Next() {
		var f fileRecord
		if err := rows.Scan(&f.ID, &f.Filename, &f.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type fileListEntry struct {
	FileID       int64  `json:"file_id"`
	Filename     string `json:"filename"`
	DownloadLink string `json:"download_link"`
}

type fileListResponse struct {
	Files []fileListEntry `json:"files"`
}

// listFilesHandler handles GET /list_files. Each entry carries a freshly
// minted download token, so links stay usable for a full hour from the
// moment the listing was requested.
func (cfg Config) listFilesHandler(db *sql.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		records, err := listFiles(r.Context(), db)
		if err != nil {
			rid := RequestIDFromContext(r.Context())
			log.Printf("rid=%s msg=list_files_query err=%v", rid, err)
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		}

		now := time.Now().UTC()
		entries := make([]fileListEntry, 0, len(records))
		for _, f := range records {
			token, err := signDownloadToken(f.ID, now)
			if err != nil {
				http.Error(w, "server misconfigured", http.StatusInternalServerError)
				return
			}
			entries = append(entries, fileListEntry{
				FileID:       f.ID,
				Filename:     f.Filename,
				DownloadLink: "/download/" + token,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(fileListResponse{Files: entries})
	})
}
