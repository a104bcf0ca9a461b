package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"studyplan-engine/internal/app"
)

// WorkspaceStore is a Redis-aware implementation of app.WorkspaceRepository.
// Workspaces hold live goroutines and subscriptions, so they stay in a local
// map; Redis only carries a liveness marker per view holding the owner id,
// which lets other instances count and attribute open views.
type WorkspaceStore struct {
	client     *redis.Client
	ttl        time.Duration
	mu         sync.RWMutex
	workspaces map[string]*app.Workspace
}

func NewWorkspaceStore(client *redis.Client, ttl time.Duration) *WorkspaceStore {
	return &WorkspaceStore{
		client:     client,
		ttl:        ttl,
		workspaces: make(map[string]*app.Workspace),
	}
}

func (s *WorkspaceStore) Put(w *app.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(w.ID), w.Owner, s.ttl).Err()
}

func (s *WorkspaceStore) Get(id string) (*app.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workspaces[id]
	return w, ok
}

func (s *WorkspaceStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *WorkspaceStore) key(id string) string {
	return "study:view:" + id
}
