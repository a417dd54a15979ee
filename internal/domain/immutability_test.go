package domain

import (
	"testing"
	"time"
)

func TestEnsureAssetIdentityImmutable(t *testing.T) {
	createdAt := time.Unix(1700000000, 0).UTC()
	before := Asset{ID: "a1", Name: "spark", Type: ContentTypeImage, ParentID: "a0", CreatedAt: createdAt}

	after := before.Clone()
	after.Name = "spark (revised)"
	after.UpdatedAt = createdAt.Add(time.Minute)
	if err := EnsureAssetIdentityImmutable(before, after); err != nil {
		t.Fatalf("EnsureAssetIdentityImmutable() err=%v", err)
	}

	bad := before.Clone()
	bad.ParentID = "other"
	if err := EnsureAssetIdentityImmutable(before, bad); err == nil {
		t.Fatalf("expected error for parent id change")
	}

	bad = before.Clone()
	bad.CreatedAt = createdAt.Add(time.Hour)
	if err := EnsureAssetIdentityImmutable(before, bad); err == nil {
		t.Fatalf("expected error for created at change")
	}
}
