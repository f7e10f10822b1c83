// Package store provides the SQLite-backed content store for the indexing
// core.
//
// The store owns all indexed state, partitioned into four tables:
//
//   - documents: parsed source units keyed by URI, with content hash and POIs
//   - document_index: unit identity (module name) to owning URI
//   - signatures: type-signature trees keyed by (module, name, arity)
//   - refs: reverse reference index, symbol key to occurrence
//
// The database lives in memory and is rebuilt from source on each process
// start; nothing is persisted across runs.
//
// # Transactions
//
// All multi-table mutation goes through Transact, which gives fn exclusive
// write access and makes its writes visible atomically:
//
//	err := db.Transact(ctx, func(s store.Store) error {
//	    if err := s.PutDocument(ctx, doc); err != nil {
//	        return err
//	    }
//	    if err := s.DeleteReferencesByURI(ctx, doc.URI); err != nil {
//	        return err
//	    }
//	    // ...
//	    return nil
//	})
//
// Transactions do not nest. A transaction that cannot acquire the store
// within the acquisition timeout fails with an error rather than blocking
// its caller indefinitely.
package store
