package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/langtools/symdex/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrTxTimeout is returned when a transaction cannot acquire the store
	// within the acquisition timeout
	ErrTxTimeout = errors.New("transaction acquisition timed out")
)

// txAcquireTimeout bounds how long a writer may wait for exclusive access.
// Failing loudly here keeps a stuck commit from deadlocking the worker pool.
const txAcquireTimeout = 5 * time.Second

// SQLite implements the ContentStore interface over an in-memory SQLite
// database.
type SQLite struct {
	db *sql.DB

	// txGate serializes writers; capacity 1. Held for the duration of each
	// transaction so readers on the single connection never interleave with
	// a half-applied commit.
	txGate chan struct{}
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	// Single connection: the whole store shares one in-memory database and
	// SQLite benefits from a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// New creates a store backed by the given SQLite DSN and applies migrations.
func New(dsn string) (*SQLite, error) {
	db, err := openDatabase(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLite{db: db, txGate: make(chan struct{}, 1)}, nil
}

// NewMemory creates a fresh in-memory store. This is the production
// configuration: the index is rebuilt from source on every process start.
func NewMemory() (*SQLite, error) {
	return New(":memory:")
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction with exclusive write access. The returned
// Tx must be finished with Commit or Rollback; transactions do not nest.
func (s *SQLite) BeginTx(ctx context.Context) (Tx, error) {
	select {
	case s.txGate <- struct{}{}:
	case <-time.After(txAcquireTimeout):
		return nil, fmt.Errorf("begin transaction: %w", ErrTxTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		<-s.txGate
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// Transact runs fn inside one transaction. Either all of fn's writes become
// visible atomically, or none do.
func (s *SQLite) Transact(ctx context.Context, fn func(Store) error) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction and releases the store gate exactly once.
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLite
	done    sync.Once
}

func (t *sqliteTx) release() {
	t.done.Do(func() { <-t.storage.txGate })
}

func (t *sqliteTx) Commit() error {
	defer t.release()
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	defer t.release()
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLite) querier() querier {
	return s.db
}

// Document operations

func (s *SQLite) putDocumentWithQuerier(ctx context.Context, q querier, doc *types.Document) error {
	pois, err := json.Marshal(doc.POIs)
	if err != nil {
		return fmt.Errorf("failed to encode POIs: %w", err)
	}

	query := `
		INSERT INTO documents (uri, module, kind, content_hash, pois, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(uri) DO UPDATE SET
			module = excluded.module,
			kind = excluded.kind,
			content_hash = excluded.content_hash,
			pois = excluded.pois,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := q.ExecContext(ctx, query,
		string(doc.URI), doc.Module, string(doc.Kind), doc.Hash[:], string(pois)); err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// PutDocument inserts or fully replaces the document at its URI.
func (s *SQLite) PutDocument(ctx context.Context, doc *types.Document) error {
	return s.putDocumentWithQuerier(ctx, s.querier(), doc)
}

func (s *SQLite) getDocumentWithQuerier(ctx context.Context, q querier, uri types.URI) (*types.Document, error) {
	query := `
		SELECT uri, module, kind, content_hash, pois
		FROM documents
		WHERE uri = ?
	`
	var (
		doc     types.Document
		rawURI  string
		rawKind string
		hash    []byte
		pois    string
	)
	err := q.QueryRowContext(ctx, query, string(uri)).Scan(
		&rawURI, &doc.Module, &rawKind, &hash, &pois,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.URI = types.URI(rawURI)
	doc.Kind = types.DocumentKind(rawKind)
	copy(doc.Hash[:], hash)
	if err := json.Unmarshal([]byte(pois), &doc.POIs); err != nil {
		return nil, fmt.Errorf("failed to decode POIs for %s: %w", uri, err)
	}
	return &doc, nil
}

// GetDocument fetches the document stored at uri, or ErrNotFound.
func (s *SQLite) GetDocument(ctx context.Context, uri types.URI) (*types.Document, error) {
	return s.getDocumentWithQuerier(ctx, s.querier(), uri)
}

func (s *SQLite) deleteDocumentWithQuerier(ctx context.Context, q querier, uri types.URI) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM documents WHERE uri = ?", string(uri)); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// DeleteDocument removes the document stored at uri. Deleting an absent
// document is not an error.
func (s *SQLite) DeleteDocument(ctx context.Context, uri types.URI) error {
	return s.deleteDocumentWithQuerier(ctx, s.querier(), uri)
}

func (s *SQLite) listDocumentsWithQuerier(ctx context.Context, q querier) ([]*types.Document, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT uri, module, kind, content_hash, pois
		FROM documents
		ORDER BY uri
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*types.Document
	for rows.Next() {
		var (
			doc     types.Document
			rawURI  string
			rawKind string
			hash    []byte
			pois    string
		)
		if err := rows.Scan(&rawURI, &doc.Module, &rawKind, &hash, &pois); err != nil {
			return nil, err
		}
		doc.URI = types.URI(rawURI)
		doc.Kind = types.DocumentKind(rawKind)
		copy(doc.Hash[:], hash)
		if err := json.Unmarshal([]byte(pois), &doc.POIs); err != nil {
			return nil, fmt.Errorf("failed to decode POIs for %s: %w", rawURI, err)
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// ListDocuments returns every stored document, ordered by URI.
func (s *SQLite) ListDocuments(ctx context.Context) ([]*types.Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.querier())
}

// Document-index operations

func (s *SQLite) putModuleWithQuerier(ctx context.Context, q querier, module string, uri types.URI) error {
	query := `
		INSERT INTO document_index (module, uri, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(module) DO UPDATE SET
			uri = excluded.uri,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := q.ExecContext(ctx, query, module, string(uri)); err != nil {
		return fmt.Errorf("failed to put module mapping: %w", err)
	}
	return nil
}

// PutModule records uri as the owner of the given unit identity. Last writer
// wins.
func (s *SQLite) PutModule(ctx context.Context, module string, uri types.URI) error {
	return s.putModuleWithQuerier(ctx, s.querier(), module, uri)
}

func (s *SQLite) lookupModuleWithQuerier(ctx context.Context, q querier, module string) (types.URI, error) {
	var uri string
	err := q.QueryRowContext(ctx,
		"SELECT uri FROM document_index WHERE module = ?", module).Scan(&uri)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return types.URI(uri), nil
}

// LookupModule resolves a unit identity to its owning URI, or ErrNotFound.
func (s *SQLite) LookupModule(ctx context.Context, module string) (types.URI, error) {
	return s.lookupModuleWithQuerier(ctx, s.querier(), module)
}

// Signature operations

func (s *SQLite) putSignatureWithQuerier(ctx context.Context, q querier, entry *SignatureEntry) error {
	tree, err := json.Marshal(entry.Sig)
	if err != nil {
		return fmt.Errorf("failed to encode signature tree: %w", err)
	}

	query := `
		INSERT INTO signatures (module, name, arity, tree)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(module, name, arity) DO UPDATE SET
			tree = excluded.tree
	`
	if _, err := q.ExecContext(ctx, query, entry.Module, entry.Name, entry.Arity, string(tree)); err != nil {
		return fmt.Errorf("failed to put signature: %w", err)
	}
	return nil
}

// PutSignature inserts or replaces one signature entry.
func (s *SQLite) PutSignature(ctx context.Context, entry *SignatureEntry) error {
	return s.putSignatureWithQuerier(ctx, s.querier(), entry)
}

func (s *SQLite) getSignatureWithQuerier(ctx context.Context, q querier, module, name string, arity int) (*types.Signature, error) {
	var tree string
	err := q.QueryRowContext(ctx,
		"SELECT tree FROM signatures WHERE module = ? AND name = ? AND arity = ?",
		module, name, arity).Scan(&tree)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sig types.Signature
	if err := json.Unmarshal([]byte(tree), &sig); err != nil {
		return nil, fmt.Errorf("failed to decode signature tree: %w", err)
	}
	return &sig, nil
}

// GetSignature fetches the signature tree for (module, name, arity).
func (s *SQLite) GetSignature(ctx context.Context, module, name string, arity int) (*types.Signature, error) {
	return s.getSignatureWithQuerier(ctx, s.querier(), module, name, arity)
}

func (s *SQLite) listSignaturesByModuleWithQuerier(ctx context.Context, q querier, module string) ([]*SignatureEntry, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT module, name, arity, tree FROM signatures WHERE module = ? ORDER BY name, arity",
		module)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []*SignatureEntry
	for rows.Next() {
		var (
			entry SignatureEntry
			tree  string
		)
		if err := rows.Scan(&entry.Module, &entry.Name, &entry.Arity, &tree); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tree), &entry.Sig); err != nil {
			return nil, fmt.Errorf("failed to decode signature tree: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// ListSignaturesByModule returns all signatures recorded for a unit.
func (s *SQLite) ListSignaturesByModule(ctx context.Context, module string) ([]*SignatureEntry, error) {
	return s.listSignaturesByModuleWithQuerier(ctx, s.querier(), module)
}

// Transaction forwarding for document, document-index, and signature
// operations. Reference operations forward in refindex.go.

func (t *sqliteTx) PutDocument(ctx context.Context, doc *types.Document) error {
	return t.storage.putDocumentWithQuerier(ctx, t.querier(), doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, uri types.URI) (*types.Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.querier(), uri)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, uri types.URI) error {
	return t.storage.deleteDocumentWithQuerier(ctx, t.querier(), uri)
}

func (t *sqliteTx) ListDocuments(ctx context.Context) ([]*types.Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) PutModule(ctx context.Context, module string, uri types.URI) error {
	return t.storage.putModuleWithQuerier(ctx, t.querier(), module, uri)
}

func (t *sqliteTx) LookupModule(ctx context.Context, module string) (types.URI, error) {
	return t.storage.lookupModuleWithQuerier(ctx, t.querier(), module)
}

func (t *sqliteTx) PutSignature(ctx context.Context, entry *SignatureEntry) error {
	return t.storage.putSignatureWithQuerier(ctx, t.querier(), entry)
}

func (t *sqliteTx) GetSignature(ctx context.Context, module, name string, arity int) (*types.Signature, error) {
	return t.storage.getSignatureWithQuerier(ctx, t.querier(), module, name, arity)
}

func (t *sqliteTx) ListSignaturesByModule(ctx context.Context, module string) ([]*SignatureEntry, error) {
	return t.storage.listSignaturesByModuleWithQuerier(ctx, t.querier(), module)
}
