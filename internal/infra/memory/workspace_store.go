package memory

import (
	"sync"

	"studyplan-engine/internal/app"
)

// WorkspaceStore is an in-memory implementation of app.WorkspaceRepository.
type WorkspaceStore struct {
	mu         sync.RWMutex
	workspaces map[string]*app.Workspace
}

func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{
		workspaces: make(map[string]*app.Workspace),
	}
}

func (s *WorkspaceStore) Put(w *app.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
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
}

// Len returns the number of open workspaces.
func (s *WorkspaceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}
