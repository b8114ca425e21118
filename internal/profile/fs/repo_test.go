package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/plantit/plantit/internal/domain/types"
	"github.com/plantit/plantit/internal/profile"
)

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	rec := types.ProfileRecord{UserID: "u1", Email: "a@x.com", AvatarURL: "https://store/u1.jpg"}
	if err := r.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := r.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != rec {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, rec)
	}
}

func TestUpsert_Overwrites(t *testing.T) {
	ctx := context.Background()
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	first := types.ProfileRecord{UserID: "u1", Email: "a@x.com", AvatarURL: "https://store/u1.jpg"}
	if err := r.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second := first
	second.Email = "b@x.com"
	if err := r.Upsert(ctx, second); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := r.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "b@x.com" {
		t.Fatalf("expected overwrite, got %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	r, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = r.Get(context.Background(), "ghost")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
