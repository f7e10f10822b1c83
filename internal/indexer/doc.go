// Package indexer coordinates the indexing pipeline: locate, fingerprint,
// parse, and commit source units into the content store.
//
// # Basic Usage
//
//	idx := indexer.New(db, parser.New(), resolver, indexer.Options{})
//	defer idx.Shutdown()
//
//	uri, err := idx.IndexFile(ctx, "calc.erl", indexer.ModeSync)
//
// # Change Detection
//
// IndexLocation is idempotent. Every call fingerprints the raw bytes with
// SHA-256 and compares against the stored document:
//
//	fingerprint := sha256.Sum256(raw)
//	if stored.Hash == fingerprint {
//	    return nil // unchanged, no store mutation
//	}
//
// Directory-wide runs are triggered repeatedly (every project reload), so the
// short-circuit is what keeps them cheap.
//
// # Commit Atomicity
//
// A changed document commits in one store transaction: the document itself,
// its identity mapping, its signature entries, and a purge-then-insert of its
// reference entries. A reader never observes the document updated with stale
// references still present.
//
// The fingerprint comparison happens outside the transaction. Two racing
// callers may both decide to re-index the same location; the transactions
// serialize and the last writer wins, which is redundant work but never an
// inconsistent store.
//
// # Error Containment
//
// Parse and commit failures are caught at the file boundary, logged with the
// offending location, and returned as a typed *types.IndexError. They never
// crash a pool executor or abort a directory walk.
package indexer
