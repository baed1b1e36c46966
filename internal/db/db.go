package db

import (
	"database/sql"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mgomes/img2xl/internal/thread"
)

type DB struct {
	conn     *sql.DB
	embedDim int
}

type ThreadSummary struct {
	ID        int64
	UUID      string
	Query     string
	FileName  string
	CreatedAt time.Time
}

type Match struct {
	ThreadID int64
	UUID     string
	Query    string
	Distance float64
}

func init() {
	sqlite_vec.Auto()
}

func Open(path string, embedDim int) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, embedDim: embedDim}
	if err := db.init(); err != nil {
		conn.Close() //nolint:errcheck
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	var vecVersion string
	if err := db.conn.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		return fmt.Errorf("sqlite-vec not available: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS threads (
			id INTEGER PRIMARY KEY,
			uuid TEXT UNIQUE NOT NULL,
			query TEXT NOT NULL,
			answer TEXT,
			ocr_text TEXT,
			file_name TEXT,
			created_at INTEGER
		);

		CREATE TABLE IF NOT EXISTS sources (
			id INTEGER PRIMARY KEY,
			thread_id INTEGER REFERENCES threads(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			chunk_text TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sources_thread_id ON sources(thread_id);
		CREATE INDEX IF NOT EXISTS idx_threads_created_at ON threads(created_at);

		CREATE VIRTUAL TABLE IF NOT EXISTS vec_threads USING vec0(
			thread_id INTEGER PRIMARY KEY,
			embedding float[%d]
		);
	`, db.embedDim)

	_, err := db.conn.Exec(schema)
	return err
}

// SaveThread inserts or replaces a turn keyed by its UUID and returns the
// row id used for embeddings.
func (db *DB) SaveThread(rec thread.Record) (int64, error) {
	if rec.ID == "" {
		return 0, fmt.Errorf("thread record has no id")
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO threads (uuid, query, answer, ocr_text, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			query = excluded.query,
			answer = excluded.answer,
			ocr_text = excluded.ocr_text,
			file_name = excluded.file_name,
			created_at = excluded.created_at
	`, rec.ID, rec.Query, rec.Answer, rec.OCRText, rec.FileName, createdAt.UnixMilli())
	if err != nil {
		return 0, err
	}

	var threadID int64
	if err := tx.QueryRow("SELECT id FROM threads WHERE uuid = ?", rec.ID).Scan(&threadID); err != nil {
		return 0, err
	}

	if _, err := tx.Exec("DELETE FROM sources WHERE thread_id = ?", threadID); err != nil {
		return 0, err
	}

	for i, src := range rec.Sources {
		if _, err := tx.Exec(
			"INSERT INTO sources (thread_id, position, chunk_text) VALUES (?, ?, ?)",
			threadID, i, src,
		); err != nil {
			return 0, err
		}
	}

	return threadID, tx.Commit()
}

func (db *DB) GetThread(uuid string) (*thread.Record, error) {
	var (
		threadID  int64
		rec       thread.Record
		answer    sql.NullString
		ocrText   sql.NullString
		fileName  sql.NullString
		createdAt int64
	)
	err := db.conn.QueryRow(
		"SELECT id, uuid, query, answer, ocr_text, file_name, created_at FROM threads WHERE uuid = ?",
		uuid,
	).Scan(&threadID, &rec.ID, &rec.Query, &answer, &ocrText, &fileName, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.Answer = answer.String
	rec.OCRText = ocrText.String
	rec.FileName = fileName.String
	rec.CreatedAt = time.UnixMilli(createdAt)

	rows, err := db.conn.Query("SELECT chunk_text FROM sources WHERE thread_id = ? ORDER BY position", threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	rec.Sources = []string{}
	for rows.Next() {
		var chunk string
		if err := rows.Scan(&chunk); err != nil {
			return nil, err
		}
		rec.Sources = append(rec.Sources, chunk)
	}

	return &rec, rows.Err()
}

// ResolveID expands a unique UUID prefix to the full UUID.
func (db *DB) ResolveID(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("empty thread id")
	}

	// substr keeps % and _ in the prefix literal
	rows, err := db.conn.Query(
		"SELECT uuid FROM threads WHERE substr(uuid, 1, length(?)) = ? LIMIT 2",
		prefix, prefix,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close() //nolint:errcheck

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("thread %s not found", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("thread id %s is ambiguous", prefix)
	}
}

// ListThreads returns the most recent threads first.
func (db *DB) ListThreads(limit int) ([]ThreadSummary, error) {
	rows, err := db.conn.Query(
		"SELECT id, uuid, query, file_name, created_at FROM threads ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var threads []ThreadSummary
	for rows.Next() {
		var (
			t         ThreadSummary
			fileName  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.UUID, &t.Query, &fileName, &createdAt); err != nil {
			return nil, err
		}
		t.FileName = fileName.String
		t.CreatedAt = time.UnixMilli(createdAt)
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func (db *DB) DeleteThread(uuid string) error {
	var threadID int64
	err := db.conn.QueryRow("SELECT id FROM threads WHERE uuid = ?", uuid).Scan(&threadID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM vec_threads WHERE thread_id = ?", threadID); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM sources WHERE thread_id = ?", threadID); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM threads WHERE id = ?", threadID); err != nil {
		return err
	}
	return tx.Commit()
}

// InsertEmbedding stores the query embedding for a thread, replacing any
// previous one. vec0 tables have no upsert.
func (db *DB) InsertEmbedding(threadID int64, embedding []byte) error {
	if _, err := db.conn.Exec("DELETE FROM vec_threads WHERE thread_id = ?", threadID); err != nil {
		return err
	}
	_, err := db.conn.Exec(
		"INSERT INTO vec_threads (thread_id, embedding) VALUES (?, ?)",
		threadID, embedding,
	)
	return err
}

func (db *DB) SearchSimilar(queryEmbedding []byte, limit int) ([]Match, error) {
	rows, err := db.conn.Query(`
		SELECT
			v.thread_id,
			v.distance,
			t.uuid,
			t.query
		FROM vec_threads v
		JOIN threads t ON t.id = v.thread_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, queryEmbedding, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var results []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ThreadID, &m.Distance, &m.UUID, &m.Query); err != nil {
			return nil, err
		}
		results = append(results, m)
	}

	return results, rows.Err()
}

func (db *DB) ThreadCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM threads").Scan(&count)
	return count, err
}

func (db *DB) EmbeddingCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM vec_threads").Scan(&count)
	return count, err
}
