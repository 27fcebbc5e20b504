// Package archive persists completed interactions so past prompts and
// replies can be inspected and exported.
package archive

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// SQLiteStore persists the archive in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the archive database at path. If the
// database cannot be opened the store degrades to the jsonl fallback.
func NewSQLiteStore(path string) *SQLiteStore {
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT,
		timestamp TEXT,
		capability TEXT,
		prompt TEXT,
		reply TEXT,
		model TEXT,
		category TEXT
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.ArchiveRecord) error {
	if s.db == nil {
		return (&FileStore{path: s.fallbackPath()}).Save(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO interactions
		(request_id, timestamp, capability, prompt, reply, model, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.RequestID,
		record.Timestamp.Format(time.RFC3339),
		string(record.Capability),
		record.Prompt,
		record.Reply,
		record.Model,
		record.Category,
	)
	return err
}

// Records returns archive entries, newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.ArchiveRecord, error) {
	if s.db == nil {
		return (&FileStore{path: s.fallbackPath()}).Records(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT request_id, timestamp, capability, prompt, reply, model, category FROM interactions")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR reply LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.ArchiveRecord
	for rows.Next() {
		var rec domain.ArchiveRecord
		var ts, capability string
		if err := rows.Scan(&rec.RequestID, &ts, &capability, &rec.Prompt, &rec.Reply, &rec.Model, &rec.Category); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Capability = domain.Capability(capability)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all archive entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return (&FileStore{path: s.fallbackPath()}).Clear()
	}
	_, err := s.db.Exec("DELETE FROM interactions")
	return err
}

// ExportJSON writes the interaction table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	out := &FileStore{path: dest}
	if err := out.Clear(); err != nil {
		return err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if err := out.Save(records[i]); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) fallbackPath() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ".jsonl"
}

var _ ports.ArchiveStore = (*SQLiteStore)(nil)
