package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/solace/internal/apperr"
	"github.com/hyperjump/solace/internal/models"
	"github.com/hyperjump/solace/internal/vector"
)

// SQLiteStore implements FragmentStore using SQLite. Embeddings are stored as little-endian
// float32 blobs and ranked in process.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// synchronous=FULL makes each committed insert durable under WAL.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_synchronous=FULL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fragments (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL,
		conversation_id TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		dims INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fragments_user_seq ON fragments(user_id, seq);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Insert stores a fragment.
func (s *SQLiteStore) Insert(ctx context.Context, userID int64, conversationID, text string, embedding []float32) (string, error) {
	if err := vector.Validate(embedding); err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fragments (id, user_id, conversation_id, text, embedding, dims, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, conversationID, text, vector.Encode(embedding), len(embedding), time.Now().UTC(),
	)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "storage.insert", err)
	}
	return id, nil
}

// TopK ranks the user's fragments of matching dimensionality against query.
func (s *SQLiteStore) TopK(ctx context.Context, userID int64, query []float32, k int) ([]*models.RetrievalResult, error) {
	if err := vector.Validate(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []*models.RetrievalResult{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, conversation_id, text, embedding
		 FROM fragments WHERE user_id = ? AND dims = ?`,
		userID, len(query),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.topk", err)
	}
	defer rows.Close()

	top := vector.NewTopK[*models.RetrievalResult](k)
	for rows.Next() {
		var (
			seq  int64
			r    models.RetrievalResult
			blob []byte
		)
		if err := rows.Scan(&seq, &r.FragmentID, &r.ConversationID, &r.Text, &blob); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "storage.topk", err)
		}
		emb, err := vector.Decode(blob)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "storage.topk", fmt.Errorf("fragment %s: %w", r.FragmentID, err))
		}
		r.Similarity = vector.Cosine(query, emb)
		top.Offer(vector.Candidate[*models.RetrievalResult]{Seq: seq, Score: r.Similarity, Item: &r})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.topk", err)
	}
	return collect(top), nil
}

// Recent returns the user's newest fragments.
func (s *SQLiteStore) Recent(ctx context.Context, userID int64, k int) ([]*models.Fragment, error) {
	if k <= 0 {
		return []*models.Fragment{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, user_id, conversation_id, text, embedding, created_at
		 FROM fragments WHERE user_id = ? ORDER BY seq DESC LIMIT ?`,
		userID, k,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.recent", err)
	}
	defer rows.Close()

	out := make([]*models.Fragment, 0, k)
	for rows.Next() {
		var (
			f    models.Fragment
			blob []byte
		)
		if err := rows.Scan(&f.Seq, &f.ID, &f.UserID, &f.ConversationID, &f.Text, &blob, &f.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "storage.recent", err)
		}
		if f.Embedding, err = vector.Decode(blob); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "storage.recent", err)
		}
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.recent", err)
	}
	return out, nil
}

// Count returns the number of fragments for the user.
func (s *SQLiteStore) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fragments WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "storage.count", err)
	}
	return n, nil
}

// Stats returns fragment and user totals.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Backend: string(BackendSQLite)}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id) FROM fragments`,
	).Scan(&st.Fragments, &st.Users)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "storage.stats", err)
	}
	return st, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func collect(top *vector.TopK[*models.RetrievalResult]) []*models.RetrievalResult {
	sorted := top.Sorted()
	out := make([]*models.RetrievalResult, len(sorted))
	for i, c := range sorted {
		out[i] = c.Item
	}
	return out
}
