package consistency

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRefStore is a map-backed RefStore recording how many writes happened.
type fakeRefStore struct {
	refs   map[string][]string
	writes int
	err    error
}

func newFakeRefStore() *fakeRefStore {
	return &fakeRefStore{refs: map[string][]string{}}
}

func (f *fakeRefStore) Refs(_ context.Context, parentID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.refs[parentID], nil
}

func (f *fakeRefStore) SetRefs(_ context.Context, parentID string, refs []string) error {
	if f.err != nil {
		return f.err
	}
	f.refs[parentID] = refs
	f.writes++
	return nil
}

func TestOnChildCreatedAppends(t *testing.T) {
	store := newFakeRefStore()
	require.NoError(t, OnChildCreated(context.Background(), store, "bar-1", "salle-1"))
	require.NoError(t, OnChildCreated(context.Background(), store, "bar-1", "salle-2"))
	assert.Equal(t, []string{"salle-1", "salle-2"}, store.refs["bar-1"])
}

func TestOnChildCreatedIsIdempotent(t *testing.T) {
	store := newFakeRefStore()
	require.NoError(t, OnChildCreated(context.Background(), store, "bar-1", "salle-1"))
	require.NoError(t, OnChildCreated(context.Background(), store, "bar-1", "salle-1"))
	assert.Equal(t, []string{"salle-1"}, store.refs["bar-1"])
	assert.Equal(t, 1, store.writes, "a duplicate add must not touch the store")
}

func TestOnChildDeletedRemoves(t *testing.T) {
	store := newFakeRefStore()
	store.refs["match-1"] = []string{"p1", "p2", "p3"}
	require.NoError(t, OnChildDeleted(context.Background(), store, "match-1", "p2"))
	assert.Equal(t, []string{"p1", "p3"}, store.refs["match-1"])
}

func TestOnChildDeletedMissingIsNoop(t *testing.T) {
	store := newFakeRefStore()
	store.refs["match-1"] = []string{"p1"}
	require.NoError(t, OnChildDeleted(context.Background(), store, "match-1", "p9"))
	assert.Equal(t, []string{"p1"}, store.refs["match-1"])
	assert.Zero(t, store.writes)
}

func TestEngineSurfacesStoreErrors(t *testing.T) {
	store := newFakeRefStore()
	store.err = errors.New("boom")
	assert.Error(t, OnChildCreated(context.Background(), store, "bar-1", "salle-1"))
	assert.Error(t, OnChildDeleted(context.Background(), store, "bar-1", "salle-1"))
}

// After any interleaving of creates and deletes, the array must equal the
// set of children created and not yet deleted.
func TestEngineConverges(t *testing.T) {
	store := newFakeRefStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, OnChildCreated(ctx, store, "parent", id))
	}
	require.NoError(t, OnChildDeleted(ctx, store, "parent", "b"))
	require.NoError(t, OnChildDeleted(ctx, store, "parent", "d"))
	require.NoError(t, OnChildCreated(ctx, store, "parent", "e"))
	assert.Equal(t, []string{"a", "c", "e"}, store.refs["parent"])
}
