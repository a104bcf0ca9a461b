package memory

import (
	"context"

	"studyplan-engine/internal/domain"
)

// StaticGenerator serves fixed content by topic. Useful for demos and tests
// when no provider key is configured.
type StaticGenerator[T any] struct {
	content map[string]T
}

func NewStaticGenerator[T any](content map[string]T) *StaticGenerator[T] {
	return &StaticGenerator[T]{content: content}
}

func (g *StaticGenerator[T]) Generate(_ context.Context, subject domain.Subject) (T, error) {
	if content, ok := g.content[subject.Key()]; ok {
		return content, nil
	}
	var zero T
	return zero, domain.ErrContentNotFound
}
