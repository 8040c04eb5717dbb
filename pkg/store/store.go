package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/CTAG07/ngramchain/pkg/ngram"
)

// Kind names the chain design a snapshot was taken from.
type Kind string

const (
	// KindString marks a snapshot of an ngram.Chain.
	KindString Kind = "string"
	// KindIndexed marks a snapshot of an ngram.IndexedChain.
	KindIndexed Kind = "indexed"
)

var (
	// ErrNotFound is returned when no snapshot has the requested name.
	ErrNotFound = errors.New("store: snapshot not found")
	// ErrKindMismatch is returned when a snapshot is loaded as the wrong chain design.
	ErrKindMismatch = errors.New("store: snapshot kind mismatch")
)

// SnapshotInfo holds the metadata of a stored snapshot.
type SnapshotInfo struct {
	Id        int
	Name      string
	Kind      Kind
	Size      int
	UpdatedAt time.Time
}

// SetupSchema initializes the snapshot table in the provided database.
// It is idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaSnapshots = `
CREATE TABLE IF NOT EXISTS ngram_snapshots (
    snapshot_id INTEGER PRIMARY KEY,
    snapshot_name TEXT NOT NULL UNIQUE,
    snapshot_kind TEXT NOT NULL,
    snapshot_data BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaSnapshots); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store persists encoded chain snapshots in a SQL database. It never looks
// inside a chain beyond its JSON snapshot.
type Store struct {
	db         *sql.DB
	stmtSave   *sql.Stmt
	stmtLoad   *sql.Stmt
	stmtList   *sql.Stmt
	stmtRemove *sql.Stmt
	logger     *slog.Logger
}

// NewStore creates a Store on a database that already has the schema from
// SetupSchema. It prepares all statements up front and fails if any cannot be
// prepared, closing the ones that were.
func NewStore(db *sql.DB) (*Store, error) {
	var prepared []*sql.Stmt
	prepare := func(query string) (*sql.Stmt, error) {
		stmt, err := db.Prepare(query)
		if err != nil {
			for _, p := range prepared {
				_ = p.Close()
			}
			return nil, fmt.Errorf("could not prepare statement: %w", err)
		}
		prepared = append(prepared, stmt)
		return stmt, nil
	}

	stmtSave, err := prepare(`INSERT INTO ngram_snapshots (snapshot_name, snapshot_kind, snapshot_data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(snapshot_name) DO UPDATE SET snapshot_kind = excluded.snapshot_kind, snapshot_data = excluded.snapshot_data, updated_at = excluded.updated_at;`)
	if err != nil {
		return nil, err
	}

	stmtLoad, err := prepare(`SELECT snapshot_kind, snapshot_data FROM ngram_snapshots WHERE snapshot_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtList, err := prepare(`SELECT snapshot_id, snapshot_name, snapshot_kind, length(snapshot_data), updated_at FROM ngram_snapshots ORDER BY snapshot_name;`)
	if err != nil {
		return nil, err
	}

	stmtRemove, err := prepare(`DELETE FROM ngram_snapshots WHERE snapshot_name = ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:         db,
		stmtSave:   stmtSave,
		stmtLoad:   stmtLoad,
		stmtList:   stmtList,
		stmtRemove: stmtRemove,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtSave.Close()
	_ = s.stmtLoad.Close()
	_ = s.stmtList.Close()
	_ = s.stmtRemove.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SaveChain stores the snapshot of a Chain under name, replacing any previous one.
func (s *Store) SaveChain(ctx context.Context, name string, chain *ngram.Chain) error {
	var buf bytes.Buffer
	if err := chain.Export(&buf); err != nil {
		return err
	}
	return s.save(ctx, name, KindString, buf.Bytes())
}

// SaveIndexed stores the snapshot of an IndexedChain under name, replacing any previous one.
func (s *Store) SaveIndexed(ctx context.Context, name string, chain *ngram.IndexedChain) error {
	var buf bytes.Buffer
	if err := chain.Export(&buf); err != nil {
		return err
	}
	return s.save(ctx, name, KindIndexed, buf.Bytes())
}

func (s *Store) save(ctx context.Context, name string, kind Kind, data []byte) error {
	if _, err := s.stmtSave.ExecContext(ctx, name, string(kind), data, time.Now().Unix()); err != nil {
		return fmt.Errorf("could not save snapshot '%s': %w", name, err)
	}
	s.logger.InfoContext(ctx, "Snapshot saved",
		slog.String("name", name),
		slog.String("kind", string(kind)),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Kind returns the kind of the snapshot stored under name.
func (s *Store) Kind(ctx context.Context, name string) (Kind, error) {
	kind, _, err := s.load(ctx, name)
	return kind, err
}

// LoadChain restores the Chain stored under name. Options are passed to
// ngram.RestoreChain.
func (s *Store) LoadChain(ctx context.Context, name string, opts ...ngram.Option) (*ngram.Chain, error) {
	kind, data, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if kind != KindString {
		return nil, fmt.Errorf("snapshot '%s' is %s, not %s: %w", name, kind, KindString, ErrKindMismatch)
	}
	return ngram.ParseChain(data, opts...)
}

// LoadIndexed restores the IndexedChain stored under name. Options are passed
// to ngram.RestoreIndexedChain.
func (s *Store) LoadIndexed(ctx context.Context, name string, opts ...ngram.Option) (*ngram.IndexedChain, error) {
	kind, data, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if kind != KindIndexed {
		return nil, fmt.Errorf("snapshot '%s' is %s, not %s: %w", name, kind, KindIndexed, ErrKindMismatch)
	}
	return ngram.ParseIndexedChain(data, opts...)
}

func (s *Store) load(ctx context.Context, name string) (Kind, []byte, error) {
	var kind string
	var data []byte
	err := s.stmtLoad.QueryRowContext(ctx, name).Scan(&kind, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, fmt.Errorf("snapshot '%s': %w", name, ErrNotFound)
		}
		return "", nil, fmt.Errorf("could not load snapshot '%s': %w", name, err)
	}
	return Kind(kind), data, nil
}

// List returns the metadata of every stored snapshot, ordered by name.
func (s *Store) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	infos := make([]SnapshotInfo, 0)
	for rows.Next() {
		var info SnapshotInfo
		var kind string
		var updated int64
		if err = rows.Scan(&info.Id, &info.Name, &kind, &info.Size, &updated); err != nil {
			return nil, err
		}
		info.Kind = Kind(kind)
		info.UpdatedAt = time.Unix(updated, 0)
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Remove deletes the snapshot stored under name. Removing a missing
// snapshot returns ErrNotFound.
func (s *Store) Remove(ctx context.Context, name string) error {
	res, err := s.stmtRemove.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("could not remove snapshot '%s': %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("snapshot '%s': %w", name, ErrNotFound)
	}
	s.logger.InfoContext(ctx, "Snapshot removed", slog.String("name", name))
	return nil
}
