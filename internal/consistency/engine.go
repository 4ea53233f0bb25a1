// Package consistency keeps parent-side denormalized reference arrays equal
// to the live set of children whose foreign key points at that parent. Three
// relations use it: bar.salles, match.parties and partie.streams.
//
// The functions are called synchronously right after the child write commits.
// They are deliberately not transactional with it: if the bookkeeping write
// fails the child write stays committed, the failure is logged by the caller
// and never surfaced. Bulk child deletions (the bar cascade) bypass this
// package entirely because the parent row disappears in the same operation.
package consistency

import "context"

// RefStore is the port a parent repository exposes for one reference array.
type RefStore interface {
	// Refs returns the current child-id array of the given parent.
	Refs(ctx context.Context, parentID string) ([]string, error)
	// SetRefs replaces the child-id array of the given parent.
	SetRefs(ctx context.Context, parentID string, refs []string) error
}

// OnChildCreated records a new child on its parent. The add is set-style:
// an id already present is not duplicated, so concurrent or repeated calls
// converge to the same array.
func OnChildCreated(ctx context.Context, store RefStore, parentID, childID string) error {
	refs, err := store.Refs(ctx, parentID)
	if err != nil {
		return err
	}
	updated, changed := addToSet(refs, childID)
	if !changed {
		return nil
	}
	return store.SetRefs(ctx, parentID, updated)
}

// OnChildDeleted removes a deleted child from its parent. Removing an id
// that is not present is a no-op.
func OnChildDeleted(ctx context.Context, store RefStore, parentID, childID string) error {
	refs, err := store.Refs(ctx, parentID)
	if err != nil {
		return err
	}
	updated, changed := removeFromSet(refs, childID)
	if !changed {
		return nil
	}
	return store.SetRefs(ctx, parentID, updated)
}

func addToSet(refs []string, id string) ([]string, bool) {
	for _, r := range refs {
		if r == id {
			return refs, false
		}
	}
	return append(refs, id), true
}

func removeFromSet(refs []string, id string) ([]string, bool) {
	for i, r := range refs {
		if r == id {
			return append(refs[:i:i], refs[i+1:]...), true
		}
	}
	return refs, false
}
