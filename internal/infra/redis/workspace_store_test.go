package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"studyplan-engine/internal/app"
)

func TestWorkspaceStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewWorkspaceStore(client, time.Minute)

	store.Put(&app.Workspace{ID: "view-1", Owner: "u1"})
	if !mr.Exists("study:view:view-1") {
		t.Fatalf("expected redis key to be set")
	}
	if owner, _ := mr.Get("study:view:view-1"); owner != "u1" {
		t.Fatalf("expected owner marker, got %q", owner)
	}
	if _, ok := store.Get("view-1"); !ok {
		t.Fatalf("expected workspace kept locally")
	}

	if ttl := mr.TTL("study:view:view-1"); ttl != time.Minute {
		t.Fatalf("expected marker ttl of one minute, got %s", ttl)
	}

	store.Delete("view-1")
	if mr.Exists("study:view:view-1") {
		t.Fatalf("expected redis key to be removed")
	}
}
