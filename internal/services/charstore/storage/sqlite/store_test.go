package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/charsheet/internal/services/charstore/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestLatestRevisionNotFoundWhenEmpty(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.LatestRevision(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("latest revision error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestPutLatestRevisionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	first := storage.Revision{ID: "rev-1", Payload: []byte(`{"attributes":[],"skills":[]}`), CreatedAt: now}
	second := storage.Revision{ID: "rev-2", Payload: []byte(`{"attributes":[{"name":"Strength","value":12}],"skills":[]}`), CreatedAt: now}
	for _, rev := range []storage.Revision{first, second} {
		if err := store.PutRevision(context.Background(), rev); err != nil {
			t.Fatalf("put revision %s: %v", rev.ID, err)
		}
	}

	got, err := store.LatestRevision(context.Background())
	if err != nil {
		t.Fatalf("latest revision: %v", err)
	}
	if got.ID != "rev-2" {
		t.Fatalf("id = %q, want rev-2", got.ID)
	}
	if string(got.Payload) != string(second.Payload) {
		t.Fatalf("payload = %s, want %s", got.Payload, second.Payload)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestPutRevisionReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	rev := storage.Revision{ID: "rev-dup", Payload: []byte(`{}`)}
	if err := store.PutRevision(context.Background(), rev); err != nil {
		t.Fatalf("put initial revision: %v", err)
	}
	err := store.PutRevision(context.Background(), rev)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestPutRevisionValidates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.PutRevision(context.Background(), storage.Revision{Payload: []byte(`{}`)}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := store.PutRevision(context.Background(), storage.Revision{ID: "rev"}); err == nil {
		t.Fatal("expected missing payload error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.PutRevision(ctx, storage.Revision{ID: "rev", Payload: []byte(`{}`)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled put error = %v, want %v", err, context.Canceled)
	}
}

func TestListRevisionsNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.PutRevision(context.Background(), storage.Revision{ID: id, Payload: []byte(`{}`)}); err != nil {
			t.Fatalf("put revision %s: %v", id, err)
		}
	}

	got, err := store.ListRevisions(context.Background(), 2)
	if err != nil {
		t.Fatalf("list revisions: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("revisions = %+v, want c then b", got)
	}

	all, err := store.ListRevisions(context.Background(), 0)
	if err != nil {
		t.Fatalf("list all revisions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("revisions = %d, want 3", len(all))
	}
}

func TestReopenKeepsRevisions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "charstore.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.PutRevision(context.Background(), storage.Revision{ID: "kept", Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("put revision: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.LatestRevision(context.Background())
	if err != nil {
		t.Fatalf("latest revision: %v", err)
	}
	if got.ID != "kept" {
		t.Fatalf("id = %q, want kept", got.ID)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "charstore.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
