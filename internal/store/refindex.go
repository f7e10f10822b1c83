package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/langtools/symdex/pkg/types"
)

// Reference index: the reverse mapping from symbol key to occurrences.
//
// Invariant: the set of rows whose uri equals a document's URI is exactly the
// set derived from that document's newest POIs. The indexer enforces this by
// running DeleteReferencesByURI before inserting fresh rows, inside one
// transaction.

func (s *SQLite) insertReferenceWithQuerier(ctx context.Context, q querier, ref *Reference) error {
	query := `
		INSERT INTO refs (namespace, module, name, arity, uri, start_line, start_col, end_line, end_col)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := q.ExecContext(ctx, query,
		string(ref.Key.Namespace), ref.Key.Module, ref.Key.Name, ref.Key.Arity,
		string(ref.URI),
		ref.Range.Start.Line, ref.Range.Start.Column,
		ref.Range.End.Line, ref.Range.End.Column); err != nil {
		return fmt.Errorf("failed to insert reference: %w", err)
	}
	return nil
}

// InsertReference records one occurrence of a symbol.
func (s *SQLite) InsertReference(ctx context.Context, ref *Reference) error {
	return s.insertReferenceWithQuerier(ctx, s.querier(), ref)
}

func scanReferences(rows *sql.Rows) ([]*Reference, error) {
	var refs []*Reference
	for rows.Next() {
		var (
			ref    Reference
			ns     string
			rawURI string
		)
		if err := rows.Scan(&ns, &ref.Key.Module, &ref.Key.Name, &ref.Key.Arity,
			&rawURI,
			&ref.Range.Start.Line, &ref.Range.Start.Column,
			&ref.Range.End.Line, &ref.Range.End.Column); err != nil {
			return nil, err
		}
		ref.Key.Namespace = types.Namespace(ns)
		ref.URI = types.URI(rawURI)
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

func (s *SQLite) referencesForKeyWithQuerier(ctx context.Context, q querier, key types.SymbolKey) ([]*Reference, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT namespace, module, name, arity, uri, start_line, start_col, end_line, end_col
		FROM refs
		WHERE namespace = ? AND module = ? AND name = ? AND arity = ?
		ORDER BY uri, start_line, start_col
	`, string(key.Namespace), key.Module, key.Name, key.Arity)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanReferences(rows)
}

// ReferencesForKey returns every stored occurrence of the symbol, ordered by
// location. An unknown key yields an empty result, not an error.
func (s *SQLite) ReferencesForKey(ctx context.Context, key types.SymbolKey) ([]*Reference, error) {
	return s.referencesForKeyWithQuerier(ctx, s.querier(), key)
}

func (s *SQLite) listReferencesByURIWithQuerier(ctx context.Context, q querier, uri types.URI) ([]*Reference, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT namespace, module, name, arity, uri, start_line, start_col, end_line, end_col
		FROM refs
		WHERE uri = ?
		ORDER BY start_line, start_col
	`, string(uri))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanReferences(rows)
}

// ListReferencesByURI returns every reference whose occurrence lies in the
// given document.
func (s *SQLite) ListReferencesByURI(ctx context.Context, uri types.URI) ([]*Reference, error) {
	return s.listReferencesByURIWithQuerier(ctx, s.querier(), uri)
}

func (s *SQLite) deleteReferencesByURIWithQuerier(ctx context.Context, q querier, uri types.URI) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM refs WHERE uri = ?", string(uri)); err != nil {
		return fmt.Errorf("failed to delete references: %w", err)
	}
	return nil
}

// DeleteReferencesByURI purges every reference recorded for a location. This
// is how stale entries are garbage-collected on re-index.
func (s *SQLite) DeleteReferencesByURI(ctx context.Context, uri types.URI) error {
	return s.deleteReferencesByURIWithQuerier(ctx, s.querier(), uri)
}

// Transaction forwarding for reference operations.

func (t *sqliteTx) InsertReference(ctx context.Context, ref *Reference) error {
	return t.storage.insertReferenceWithQuerier(ctx, t.querier(), ref)
}

func (t *sqliteTx) ReferencesForKey(ctx context.Context, key types.SymbolKey) ([]*Reference, error) {
	return t.storage.referencesForKeyWithQuerier(ctx, t.querier(), key)
}

func (t *sqliteTx) ListReferencesByURI(ctx context.Context, uri types.URI) ([]*Reference, error) {
	return t.storage.listReferencesByURIWithQuerier(ctx, t.querier(), uri)
}

func (t *sqliteTx) DeleteReferencesByURI(ctx context.Context, uri types.URI) error {
	return t.storage.deleteReferencesByURIWithQuerier(ctx, t.querier(), uri)
}
