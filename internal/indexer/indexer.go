package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/langtools/symdex/internal/config"
	"github.com/langtools/symdex/internal/pool"
	"github.com/langtools/symdex/internal/store"
	"github.com/langtools/symdex/pkg/types"
)

// Mode selects inline or pooled execution for IndexFile.
type Mode int

const (
	// ModeSync indexes inline and returns the outcome to the caller.
	ModeSync Mode = iota
	// ModeAsync hands the commit to the worker pool; failures are logged only.
	ModeAsync
)

// Parser is the front-end contract: raw bytes in, document facts out. The
// indexer treats it as an opaque trusted transformation.
type Parser interface {
	Parse(uri types.URI, raw []byte) (*types.Document, error)
}

// Options configures the indexer.
type Options struct {
	// Workers sizes the async worker pool and bounds directory-walk
	// concurrency. Zero means pool.DefaultWorkers.
	Workers int
}

// Indexer orchestrates the pipeline. It keeps no mutable state outside the
// store, so concurrent calls for different locations proceed independently.
type Indexer struct {
	store    store.ContentStore
	parser   Parser
	resolver *config.PathResolver
	pool     *pool.Pool
	workers  int
}

// New creates a new Indexer instance and starts its worker pool.
func New(st store.ContentStore, p Parser, resolver *config.PathResolver, opts Options) *Indexer {
	workers := opts.Workers
	if workers <= 0 {
		workers = pool.DefaultWorkers
	}
	return &Indexer{
		store:    st,
		parser:   p,
		resolver: resolver,
		pool:     pool.New(workers),
		workers:  workers,
	}
}

// Shutdown stops the worker pool, draining queued tasks best-effort.
func (idx *Indexer) Shutdown() {
	idx.pool.Shutdown()
}

// Store exposes the read contract consumers of the index depend on.
func (idx *Indexer) Store() store.ContentStore {
	return idx.store
}

// IndexFile locates path among the configured search roots, reads it, and
// indexes it inline (ModeSync) or through the worker pool (ModeAsync). The
// canonical URI is returned on success. Not-found and read failures come back
// tagged with types.ErrFileNotFound and types.ErrReadFailure.
func (idx *Indexer) IndexFile(ctx context.Context, path string, mode Mode) (types.URI, error) {
	located, err := idx.resolver.Locate(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	raw, err := os.ReadFile(located)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", located, types.ErrReadFailure, err)
	}

	uri := types.URIFromPath(located)
	if mode == ModeAsync {
		idx.pool.Submit(func() {
			if err := idx.IndexLocation(context.Background(), uri, raw); err != nil {
				log.Printf("indexer: async index %s: %v", uri, err)
			}
		})
		return uri, nil
	}

	return uri, idx.IndexLocation(ctx, uri, raw)
}

// IndexLocation is the idempotent entry point: unchanged content is detected
// by fingerprint and skipped without any store mutation; changed content is
// parsed and committed atomically.
func (idx *Indexer) IndexLocation(ctx context.Context, uri types.URI, raw []byte) (err error) {
	// Parse and commit failures, including panics from the front-end, stop
	// here: they are logged with the location and must never take down a
	// pool executor or an in-progress walk.
	defer func() {
		if r := recover(); r != nil {
			err = &types.IndexError{URI: uri, Err: fmt.Errorf("panic: %v", r)}
			log.Printf("indexer: %v", err)
		}
	}()

	fingerprint := sha256.Sum256(raw)

	existing, err := idx.store.GetDocument(ctx, uri)
	if err == nil && existing.Hash == fingerprint {
		return nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return &types.IndexError{URI: uri, Err: err}
	}

	doc, err := idx.parser.Parse(uri, raw)
	if err != nil {
		ierr := &types.IndexError{URI: uri, Err: err}
		log.Printf("indexer: %v", ierr)
		return ierr
	}
	doc.URI = uri
	doc.Hash = fingerprint

	if err := idx.commit(ctx, doc); err != nil {
		ierr := &types.IndexError{URI: uri, Err: err}
		log.Printf("indexer: %v", ierr)
		return ierr
	}
	return nil
}

// commit installs the document and all derived facts in one transaction:
// document, identity mapping, signatures, and a purge-then-insert of the
// reference entries recorded for this location.
func (idx *Indexer) commit(ctx context.Context, doc *types.Document) error {
	return idx.store.Transact(ctx, func(s store.Store) error {
		if err := s.PutDocument(ctx, doc); err != nil {
			return err
		}
		if err := s.PutModule(ctx, doc.Module, doc.URI); err != nil {
			return err
		}

		for _, p := range doc.SpecPOIs() {
			if p.Spec == nil {
				continue
			}
			entry := &store.SignatureEntry{
				Module: doc.Module,
				Name:   p.Name,
				Arity:  p.Arity,
				Sig:    *p.Spec,
			}
			if err := s.PutSignature(ctx, entry); err != nil {
				return err
			}
		}

		// Delete-before-insert is how stale references from the previous
		// version of this location are garbage-collected.
		if err := s.DeleteReferencesByURI(ctx, doc.URI); err != nil {
			return err
		}
		for _, p := range doc.ReferencePOIs() {
			key, ok := referenceKey(doc.Module, p)
			if !ok {
				continue
			}
			ref := &store.Reference{Key: key, URI: doc.URI, Range: p.Range}
			if err := s.InsertReference(ctx, ref); err != nil {
				return err
			}
		}
		return nil
	})
}

// referenceKey derives the symbol key for a reference POI. A call site
// carrying only (name, arity) is qualified with the enclosing unit's
// identity; one that already names a module is used as-is. Macro and record
// POIs key into their own namespaces.
func referenceKey(enclosing string, p types.POI) (types.SymbolKey, bool) {
	switch p.Kind {
	case types.POIApplication, types.POIImplicitFun:
		module := p.Module
		if module == "" {
			module = enclosing
		}
		return types.FunctionKey(module, p.Name, p.Arity), true
	case types.POIMacroUse:
		return types.MacroKey(p.Name), true
	case types.POIRecordAccess, types.POIRecordConstruction:
		return types.RecordKey(p.Name), true
	default:
		return types.SymbolKey{}, false
	}
}
