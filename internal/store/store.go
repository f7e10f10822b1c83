package store

import (
	"context"

	"github.com/langtools/symdex/pkg/types"
)

// Store defines the read/write contract over the four index tables. Both the
// live database handle and an open transaction satisfy it.
type Store interface {
	// Document operations
	PutDocument(ctx context.Context, doc *types.Document) error
	GetDocument(ctx context.Context, uri types.URI) (*types.Document, error)
	DeleteDocument(ctx context.Context, uri types.URI) error
	ListDocuments(ctx context.Context) ([]*types.Document, error)

	// Document-index operations (unit identity -> owning URI, last writer wins)
	PutModule(ctx context.Context, module string, uri types.URI) error
	LookupModule(ctx context.Context, module string) (types.URI, error)

	// Signature operations
	PutSignature(ctx context.Context, entry *SignatureEntry) error
	GetSignature(ctx context.Context, module, name string, arity int) (*types.Signature, error)
	ListSignaturesByModule(ctx context.Context, module string) ([]*SignatureEntry, error)

	// Reference-index operations
	InsertReference(ctx context.Context, ref *Reference) error
	ReferencesForKey(ctx context.Context, key types.SymbolKey) ([]*Reference, error)
	ListReferencesByURI(ctx context.Context, uri types.URI) ([]*Reference, error)
	DeleteReferencesByURI(ctx context.Context, uri types.URI) error
}

// Tx is an open transaction. Writes become visible together on Commit and are
// discarded on Rollback.
type Tx interface {
	Commit() error
	Rollback() error
	Store
}

// ContentStore is the full store surface the indexer binds to.
type ContentStore interface {
	Store
	BeginTx(ctx context.Context) (Tx, error)
	Transact(ctx context.Context, fn func(Store) error) error
	Close() error
}

// SignatureEntry binds a type-signature tree to its fully qualified
// function key.
type SignatureEntry struct {
	Module string
	Name   string
	Arity  int
	Sig    types.Signature
}

// Reference is one stored occurrence of a symbol.
type Reference struct {
	Key   types.SymbolKey
	URI   types.URI
	Range types.Range
}
