package domain

import (
	"errors"
	"fmt"
)

// EnsureAssetIdentityImmutable enforces the fields an update may never touch.
func EnsureAssetIdentityImmutable(before, after Asset) error {
	if before.ID == "" || after.ID == "" {
		return errors.New("asset ids are required")
	}
	if before.ID != after.ID {
		return fmt.Errorf("asset id changed from %q to %q", before.ID, after.ID)
	}
	if !before.CreatedAt.Equal(after.CreatedAt) {
		return errors.New("created at is immutable")
	}
	if before.ParentID != after.ParentID {
		return errors.New("parent id is immutable")
	}
	return nil
}

// EnsureRemixNodeImmutable enforces that a remix node, once created, only
// ever grows its child list.
func EnsureRemixNodeImmutable(before, after RemixNode) error {
	if before.ID == "" || after.ID == "" {
		return errors.New("remix node ids are required")
	}
	if before.ID != after.ID {
		return fmt.Errorf("remix node id changed from %q to %q", before.ID, after.ID)
	}
	if before.CreationID != after.CreationID {
		return errors.New("creation id is immutable")
	}
	if before.CreatorID != after.CreatorID {
		return errors.New("creator id is immutable")
	}
	if before.ParentID != after.ParentID {
		return errors.New("parent id is immutable")
	}
	if before.Type != after.Type {
		return errors.New("remix type is immutable")
	}
	if before.Generation != after.Generation {
		return errors.New("generation is immutable")
	}
	if before.Arc != after.Arc {
		return errors.New("arc distribution is immutable")
	}
	if len(after.ChildIDs) < len(before.ChildIDs) {
		return errors.New("child ids are append-only")
	}
	for i, id := range before.ChildIDs {
		if after.ChildIDs[i] != id {
			return errors.New("child ids are append-only")
		}
	}
	return nil
}
