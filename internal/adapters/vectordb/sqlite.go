// Package vectordb persists index generations.
// It implements ports.GenerationStore with SQLite so a process restart
// does not require re-embedding.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nmrocha/munirag-go/internal/domain/entities"
)

// SQLiteStore stores at most one serialized generation. Save replaces it
// wholesale; the format round-trips so a loaded generation answers
// queries identically to the one that was built.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the vector store under dataPath.
func NewSQLiteStore(dataPath string) (*SQLiteStore, error) {
	if dataPath == "" {
		dataPath = "./vector_store"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating vector store directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "vectors.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		built_at DATETIME NOT NULL,
		dimension INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chunks (
		generation_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		chunk_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		document_name TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		start_offset INTEGER NOT NULL,
		end_offset INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		PRIMARY KEY (generation_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the persisted generation with gen, atomically within a
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, gen *entities.Generation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM generations"); err != nil {
		return fmt.Errorf("clearing generations: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO generations (id, built_at, dimension) VALUES (?, ?, ?)",
		gen.ID, gen.BuiltAt.UTC().Format(time.RFC3339Nano), gen.Dimension,
	); err != nil {
		return fmt.Errorf("inserting generation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (generation_id, position, chunk_id, document_id, document_name, chunk_index, content, start_offset, end_offset, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range gen.Chunks {
		embeddingJSON, err := json.Marshal(gen.Vectors[i])
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			gen.ID, i,
			chunk.ID, chunk.DocumentID, chunk.DocumentName, chunk.Index,
			chunk.Content, chunk.StartOffset, chunk.EndOffset,
			embeddingJSON,
		); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadLatest returns the persisted generation, or nil if none exists.
func (s *SQLiteStore) LoadLatest(ctx context.Context) (*entities.Generation, error) {
	var (
		gen     entities.Generation
		builtAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, built_at, dimension FROM generations ORDER BY built_at DESC LIMIT 1",
	).Scan(&gen.ID, &builtAt, &gen.Dimension)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying generation: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, builtAt); perr == nil {
		gen.BuiltAt = t
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, document_name, chunk_index, content, start_offset, end_offset, embedding
		FROM chunks WHERE generation_id = ? ORDER BY position
	`, gen.ID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			chunk         entities.Chunk
			embeddingJSON []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.DocumentName, &chunk.Index,
			&chunk.Content, &chunk.StartOffset, &chunk.EndOffset, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		var vector []float32
		if err := json.Unmarshal(embeddingJSON, &vector); err != nil {
			return nil, fmt.Errorf("decoding embedding: %w", err)
		}
		gen.Chunks = append(gen.Chunks, chunk)
		gen.Vectors = append(gen.Vectors, vector)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}

	if err := gen.Validate(); err != nil {
		return nil, fmt.Errorf("persisted generation corrupt: %w", err)
	}
	return &gen, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
