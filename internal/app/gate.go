package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/monitoring"
)

// Generator produces assessment content for a subject.
type Generator[T any] interface {
	Generate(ctx context.Context, subject domain.Subject) (T, error)
}

// Forgetter is implemented by generators that keep content between calls.
type Forgetter interface {
	Forget(ctx context.Context, subject domain.Subject) error
}

// GateHooks receive the gate's transitions. Started, Loaded, Failed and Reset
// run while the gate lock is held, so they must not call back into the gate.
// Stale runs after a call for an abandoned subject has settled and the lock is
// released; it may activate the gate again for the subject now selected.
type GateHooks[T any] struct {
	Started func(subject domain.Subject)
	Loaded  func(subject domain.Subject, content T)
	Failed  func(subject domain.Subject, err error)
	Reset   func(subject domain.Subject)
	Stale   func(ctx context.Context, subject domain.Subject)
}

// Gate admits at most one generation call per subject while its view is
// visible. The active key is claimed before the call goes out, so a repeated
// activation arriving before the result is suppressed.
type Gate[T any] struct {
	kind  string
	gen   Generator[T]
	hooks GateHooks[T]
	log   *zap.Logger

	mu        sync.Mutex
	activeKey string
	selected  string
	inFlight  bool
	results   map[string]T
	wg        sync.WaitGroup
}

func NewGate[T any](kind string, gen Generator[T], hooks GateHooks[T], log *zap.Logger) *Gate[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate[T]{
		kind:    kind,
		gen:     gen,
		hooks:   hooks,
		log:     log.With(zap.String("gate", kind)),
		results: make(map[string]T),
	}
}

// Activate starts generation for subject unless the view is hidden, a call is
// already outstanding, the subject is not ready, or it is the active one. Content generated earlier
// in this gate's lifetime is applied without a new call. It reports whether a
// generation call was issued.
func (g *Gate[T]) Activate(ctx context.Context, subject domain.Subject, visible bool) bool {
	key := subject.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !visible || g.inFlight || !subject.Ready() || key == g.activeKey {
		return false
	}
	g.changeLocked(subject)

	if content, ok := g.results[key]; ok {
		g.activeKey = key
		if g.hooks.Loaded != nil {
			g.hooks.Loaded(subject, content)
		}
		monitoring.GenerationEvents.WithLabelValues(g.kind, "cached").Inc()
		return false
	}

	previous := g.activeKey
	g.inFlight = true
	g.activeKey = key
	if g.hooks.Started != nil {
		g.hooks.Started(subject)
	}
	monitoring.GenerationEvents.WithLabelValues(g.kind, "started").Inc()
	g.log.Debug("generation started", zap.String("subject", key))

	g.wg.Add(1)
	go g.generate(ctx, subject, previous)
	return true
}

// Change makes subject the selected one. Switching to a different subject
// resets downstream session state before anything else happens.
func (g *Gate[T]) Change(subject domain.Subject) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.changeLocked(subject)
}

func (g *Gate[T]) changeLocked(subject domain.Subject) {
	key := subject.Key()
	if key == g.selected {
		return
	}
	g.selected = key
	if !g.inFlight {
		g.activeKey = ""
	}
	if g.hooks.Reset != nil {
		g.hooks.Reset(subject)
	}
}

// Forget drops content held for subject, here and in the generator, so the
// next activation asks for fresh content. It does nothing while a call is
// outstanding.
func (g *Gate[T]) Forget(ctx context.Context, subject domain.Subject) {
	key := subject.Key()
	g.mu.Lock()
	busy := g.inFlight
	g.mu.Unlock()
	if busy || key == "" {
		return
	}

	if f, ok := g.gen.(Forgetter); ok {
		if err := f.Forget(ctx, subject); err != nil {
			g.log.Warn("forget cached content failed", zap.String("subject", key), zap.Error(err))
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.results, key)
	if !g.inFlight && g.activeKey == key {
		g.activeKey = ""
	}
}

// ActiveKey returns the key of the subject last claimed for generation.
func (g *Gate[T]) ActiveKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activeKey
}

// Wait blocks until outstanding generation calls have finished.
func (g *Gate[T]) Wait() {
	g.wg.Wait()
}

func (g *Gate[T]) generate(ctx context.Context, subject domain.Subject, previous string) {
	defer g.wg.Done()

	content, err := g.gen.Generate(ctx, subject)

	if g.settle(subject, previous, content, err) && g.hooks.Stale != nil {
		g.hooks.Stale(ctx, subject)
	}
}

// settle records the outcome of a call and reports whether the view moved to
// another subject while it was outstanding.
func (g *Gate[T]) settle(subject domain.Subject, previous string, content T, err error) bool {
	key := subject.Key()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.inFlight = false

	if key != g.selected {
		if err == nil {
			g.results[key] = content
		}
		if g.activeKey == key {
			g.activeKey = ""
		}
		monitoring.GenerationEvents.WithLabelValues(g.kind, "stale").Inc()
		g.log.Debug("discarding stale generation",
			zap.String("subject", key),
			zap.String("selected", g.selected),
			zap.Error(err))
		return true
	}

	if err != nil {
		if g.activeKey == key {
			g.activeKey = previous
		}
		monitoring.GenerationEvents.WithLabelValues(g.kind, "failed").Inc()
		g.log.Warn("generation failed", zap.String("subject", key), zap.Error(err))
		if g.hooks.Failed != nil {
			g.hooks.Failed(subject, err)
		}
		return false
	}

	g.results[key] = content
	monitoring.GenerationEvents.WithLabelValues(g.kind, "loaded").Inc()
	g.log.Debug("generation loaded", zap.String("subject", key))
	if g.hooks.Loaded != nil {
		g.hooks.Loaded(subject, content)
	}
	return false
}
