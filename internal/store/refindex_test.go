package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langtools/symdex/pkg/types"
)

func ref(key types.SymbolKey, uri string, line int) *Reference {
	return &Reference{
		Key: key,
		URI: types.URI(uri),
		Range: types.Range{
			Start: types.Position{Line: line, Column: 1},
			End:   types.Position{Line: line, Column: 10},
		},
	}
}

func TestReferencesForKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	key := types.FunctionKey("calc", "encode", 2)
	require.NoError(t, db.InsertReference(ctx, ref(key, "file:///b.erl", 7)))
	require.NoError(t, db.InsertReference(ctx, ref(key, "file:///a.erl", 12)))
	require.NoError(t, db.InsertReference(ctx, ref(types.FunctionKey("calc", "encode", 3), "file:///a.erl", 1)))

	refs, err := db.ReferencesForKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, refs, 2, "arity is part of the key")
	assert.Equal(t, types.URI("file:///a.erl"), refs[0].URI)
	assert.Equal(t, types.URI("file:///b.erl"), refs[1].URI)
	assert.Equal(t, key, refs[0].Key)
}

func TestReferencesForKeyEmpty(t *testing.T) {
	db := setupTestDB(t)

	refs, err := db.ReferencesForKey(context.Background(), types.FunctionKey("ghost", "f", 0))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestReferenceNamespacesAreDisjoint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// A macro, a record, and a function may share the name "state" without
	// colliding.
	require.NoError(t, db.InsertReference(ctx, ref(types.MacroKey("state"), "file:///a.erl", 1)))
	require.NoError(t, db.InsertReference(ctx, ref(types.RecordKey("state"), "file:///a.erl", 2)))
	require.NoError(t, db.InsertReference(ctx, ref(types.FunctionKey("", "state", 0), "file:///a.erl", 3)))

	macros, err := db.ReferencesForKey(ctx, types.MacroKey("state"))
	require.NoError(t, err)
	assert.Len(t, macros, 1)
	assert.Equal(t, 1, macros[0].Range.Start.Line)

	records, err := db.ReferencesForKey(ctx, types.RecordKey("state"))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Range.Start.Line)
}

func TestDeleteReferencesByURI(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	key := types.FunctionKey("calc", "encode", 2)
	require.NoError(t, db.InsertReference(ctx, ref(key, "file:///a.erl", 1)))
	require.NoError(t, db.InsertReference(ctx, ref(key, "file:///a.erl", 5)))
	require.NoError(t, db.InsertReference(ctx, ref(key, "file:///b.erl", 9)))

	require.NoError(t, db.DeleteReferencesByURI(ctx, "file:///a.erl"))

	refs, err := db.ReferencesForKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, refs, 1, "only the purged location loses its entries")
	assert.Equal(t, types.URI("file:///b.erl"), refs[0].URI)
}

func TestListReferencesByURI(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertReference(ctx, ref(types.MacroKey("TIMEOUT"), "file:///a.erl", 8)))
	require.NoError(t, db.InsertReference(ctx, ref(types.FunctionKey("calc", "encode", 2), "file:///a.erl", 3)))
	require.NoError(t, db.InsertReference(ctx, ref(types.RecordKey("state"), "file:///b.erl", 1)))

	refs, err := db.ListReferencesByURI(ctx, "file:///a.erl")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, 3, refs[0].Range.Start.Line, "ordered by position")
	assert.Equal(t, 8, refs[1].Range.Start.Line)
}

func TestReferencePurgeInsertInOneTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	uri := types.URI("file:///a.erl")
	old := types.FunctionKey("calc", "old_name", 1)
	require.NoError(t, db.InsertReference(ctx, ref(old, string(uri), 2)))

	fresh := types.FunctionKey("calc", "new_name", 1)
	require.NoError(t, db.Transact(ctx, func(s Store) error {
		if err := s.DeleteReferencesByURI(ctx, uri); err != nil {
			return err
		}
		return s.InsertReference(ctx, ref(fresh, string(uri), 2))
	}))

	stale, err := db.ReferencesForKey(ctx, old)
	require.NoError(t, err)
	assert.Empty(t, stale, "renamed symbol leaves no stale entries")

	current, err := db.ListReferencesByURI(ctx, uri)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, fresh, current[0].Key)
}
