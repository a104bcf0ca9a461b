package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/monitoring"
)

// DeleteState is the coordinator's position in the confirm-before-delete flow.
type DeleteState int

const (
	StateIdle DeleteState = iota
	StatePendingConfirmation
	StateCommitting
)

func (s DeleteState) String() string {
	switch s {
	case StatePendingConfirmation:
		return "pending"
	case StateCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// CoordinatorView is what the presentation layer needs to render the
// confirmation prompt and any failure notice.
type CoordinatorView struct {
	State   string                `json:"state"`
	Request *domain.DeleteRequest `json:"request,omitempty"`
	Notice  string                `json:"notice,omitempty"`
}

// Coordinator guards irreversible deletes behind an explicit confirmation.
// The only path to the Deleter is Confirm from the pending state.
type Coordinator struct {
	owner   string
	library *Library
	deleter Deleter
	log     *zap.Logger

	mu      sync.Mutex
	state   DeleteState
	pending *domain.DeleteRequest
	notice  string
}

func NewCoordinator(owner string, library *Library, deleter Deleter, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{owner: owner, library: library, deleter: deleter, log: log}
}

// RequestDelete moves Idle -> PendingConfirmation and returns the prompt.
// For "all" requests the message quotes the collection size right now.
func (c *Coordinator) RequestDelete(kind domain.TargetKind, all bool, targetID, displayTitle string) (domain.DeleteRequest, error) {
	if !kind.Valid() {
		return domain.DeleteRequest{}, domain.ErrUnknownKind
	}
	if !all && strings.TrimSpace(targetID) == "" {
		return domain.DeleteRequest{}, domain.ErrMissingTarget
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return domain.DeleteRequest{}, domain.ErrDeletePending
	}

	req := buildDeleteRequest(kind, all, targetID, displayTitle, c.library.Count(kind))
	c.pending = &req
	c.notice = ""
	c.state = StatePendingConfirmation
	return req, nil
}

// Confirm commits the pending request. The storage call targets exactly what
// was captured at request time. Collections change only after the call
// succeeds; the coordinator returns to Idle either way.
func (c *Coordinator) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StatePendingConfirmation || c.pending == nil {
		c.mu.Unlock()
		return domain.ErrNoPendingDelete
	}
	req := *c.pending
	c.state = StateCommitting
	c.mu.Unlock()

	var err error
	if req.All {
		err = c.deleter.DeleteAll(ctx, req.Kind, c.owner)
	} else {
		err = c.deleter.Delete(ctx, req.Kind, c.owner, req.TargetID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.pending = nil

	if err != nil {
		c.notice = fmt.Sprintf("Failed to delete %s", req.Kind.Noun(pluralCount(req)))
		monitoring.DeleteCommits.WithLabelValues(string(req.Kind), "failed").Inc()
		c.log.Error("delete failed",
			zap.String("kind", string(req.Kind)),
			zap.Bool("all", req.All),
			zap.String("target", req.TargetID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrDeleteFailed, err)
	}

	if req.All {
		c.library.Clear(req.Kind)
	} else {
		c.library.Remove(req.Kind, req.TargetID)
	}
	c.notice = ""
	monitoring.DeleteCommits.WithLabelValues(string(req.Kind), "ok").Inc()
	c.log.Info("delete committed",
		zap.String("kind", string(req.Kind)),
		zap.Bool("all", req.All),
		zap.String("target", req.TargetID))
	return nil
}

// Cancel discards the pending request without touching storage.
func (c *Coordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePendingConfirmation {
		return domain.ErrNoPendingDelete
	}
	c.state = StateIdle
	c.pending = nil
	return nil
}

// DismissNotice clears a failure notice.
func (c *Coordinator) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = ""
}

func (c *Coordinator) State() DeleteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) View() CoordinatorView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := CoordinatorView{State: c.state.String(), Notice: c.notice}
	if c.pending != nil {
		req := *c.pending
		view.Request = &req
	}
	return view
}

func buildDeleteRequest(kind domain.TargetKind, all bool, targetID, displayTitle string, count int) domain.DeleteRequest {
	if all {
		return domain.DeleteRequest{
			Kind:         kind,
			All:          true,
			Title:        fmt.Sprintf("Delete All %s?", titleCase(kind.Noun(2))),
			Message:      fmt.Sprintf("Are you sure you want to delete all %d %s? This action cannot be undone.", count, kind.Noun(count)),
			ConfirmLabel: "Delete All",
		}
	}
	if strings.TrimSpace(displayTitle) == "" {
		displayTitle = defaultTitle(kind)
	}
	return domain.DeleteRequest{
		Kind:         kind,
		TargetID:     targetID,
		Title:        fmt.Sprintf("Delete %s?", titleCase(kind.Noun(1))),
		Message:      fmt.Sprintf(`Are you sure you want to delete "%s"? This action cannot be undone.`, displayTitle),
		ConfirmLabel: "Delete",
	}
}

func defaultTitle(kind domain.TargetKind) string {
	switch kind {
	case domain.KindRoadmap:
		return "Learning Roadmap"
	case domain.KindQuiz:
		return "Quiz"
	default:
		return "Flashcard Set"
	}
}

func pluralCount(req domain.DeleteRequest) int {
	if req.All {
		return 2
	}
	return 1
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
