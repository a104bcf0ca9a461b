package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/progress"
)

// WeekSummary is a week with its completion figures, ready for rendering.
type WeekSummary struct {
	ID         string         `json:"id"`
	Position   int            `json:"week"`
	Title      string         `json:"title"`
	Topics     []string       `json:"topics"`
	Completion []bool         `json:"progress"`
	Progress   progress.Stats `json:"stats"`
}

// RoadmapSummary is a roadmap with per-week and aggregate completion.
type RoadmapSummary struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Goal     string         `json:"goal"`
	Progress progress.Stats `json:"stats"`
	Weeks    []WeekSummary  `json:"weeks"`
}

// Summarize renders roadmap with weeks sorted by position.
func Summarize(roadmap domain.Roadmap) RoadmapSummary {
	weeks := progress.SortedWeeks(roadmap)
	summary := RoadmapSummary{
		ID:       roadmap.ID,
		Title:    roadmap.Title,
		Goal:     roadmap.Goal,
		Progress: progress.RoadmapProgress(roadmap),
		Weeks:    make([]WeekSummary, 0, len(weeks)),
	}
	for _, w := range weeks {
		w = progress.Pad(w)
		summary.Weeks = append(summary.Weeks, WeekSummary{
			ID:         w.ID,
			Position:   w.Position,
			Title:      w.Title,
			Topics:     w.Topics,
			Completion: w.Completion,
			Progress:   progress.WeekProgress(w),
		})
	}
	return summary
}

// TrackerView is the roadmap being studied plus the topic under the cursor.
type TrackerView struct {
	Roadmap   RoadmapSummary  `json:"roadmap"`
	Cursor    progress.Cursor `json:"cursor"`
	Topic     string          `json:"topic,omitempty"`
	Completed bool            `json:"completed"`
	Updating  bool            `json:"updating"`
}

// Tracker follows the roadmap a learner is working through: which topic is
// open and which topics are done.
type Tracker struct {
	store RoadmapStore
	log   *zap.Logger

	mu       sync.Mutex
	roadmap  domain.Roadmap
	cursor   progress.Cursor
	updating bool
}

// OpenTracker fetches roadmap id and points the cursor at its first topic.
func OpenTracker(ctx context.Context, store RoadmapStore, id string, log *zap.Logger) (*Tracker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	roadmap, err := store.GetRoadmap(ctx, id)
	if err != nil {
		return nil, err
	}
	t := &Tracker{store: store, log: log.With(zap.String("roadmap", id)), roadmap: roadmap}
	if _, ok := t.cursor.Current(roadmap); !ok {
		if next, moved := t.cursor.Next(roadmap); moved {
			t.cursor = next
		}
	}
	return t, nil
}

// Topic returns the topic under the cursor.
func (t *Tracker) Topic() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor.Current(t.roadmap)
}

// Next advances to the following topic and returns it.
func (t *Tracker) Next() (string, bool) {
	return t.move(progress.Cursor.Next)
}

// Prev steps back to the preceding topic and returns it.
func (t *Tracker) Prev() (string, bool) {
	return t.move(progress.Cursor.Prev)
}

// Goto opens the topic at the given sorted-week and topic index.
func (t *Tracker) Goto(week, topic int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := progress.Cursor{Week: week, Topic: topic}
	name, ok := c.Current(t.roadmap)
	if !ok {
		return "", false
	}
	t.cursor = c
	return name, true
}

func (t *Tracker) move(step func(progress.Cursor, domain.Roadmap) (progress.Cursor, bool)) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, ok := step(t.cursor, t.roadmap)
	if !ok {
		return "", false
	}
	t.cursor = next
	return next.Current(t.roadmap)
}

// ToggleCurrent flips the completion flag of the topic under the cursor.
func (t *Tracker) ToggleCurrent(ctx context.Context) error {
	t.mu.Lock()
	week, ok := t.cursor.WeekOf(t.roadmap)
	topic := t.cursor.Topic
	t.mu.Unlock()
	if !ok {
		return domain.ErrWeekNotFound
	}
	week = progress.Pad(week)
	if topic < 0 || topic >= len(week.Completion) {
		return domain.ErrTopicOutOfRange
	}
	return t.SetTopic(ctx, week.ID, topic, !week.Completion[topic])
}

// SetTopic stores a completion flag and reloads the roadmap. A second update
// while one is outstanding is rejected.
func (t *Tracker) SetTopic(ctx context.Context, weekID string, topicIndex int, value bool) error {
	t.mu.Lock()
	if t.updating {
		t.mu.Unlock()
		return domain.ErrUpdateInProgress
	}
	week, ok := findWeek(t.roadmap, weekID)
	if !ok {
		t.mu.Unlock()
		return domain.ErrWeekNotFound
	}
	if topicIndex < 0 || topicIndex >= len(week.Topics) {
		t.mu.Unlock()
		return domain.ErrTopicOutOfRange
	}
	roadmapID := t.roadmap.ID
	t.updating = true
	t.mu.Unlock()

	fresh, err := t.update(ctx, roadmapID, weekID, topicIndex, value)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.updating = false
	if err != nil {
		t.log.Warn("progress update failed", zap.String("week", weekID), zap.Int("topic", topicIndex), zap.Error(err))
		return err
	}
	t.roadmap = fresh
	return nil
}

func (t *Tracker) update(ctx context.Context, roadmapID, weekID string, topicIndex int, value bool) (domain.Roadmap, error) {
	if err := t.store.UpdateProgress(ctx, roadmapID, weekID, topicIndex, value); err != nil {
		return domain.Roadmap{}, fmt.Errorf("update progress: %w", err)
	}
	fresh, err := t.store.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return domain.Roadmap{}, fmt.Errorf("reload roadmap: %w", err)
	}
	return fresh, nil
}

func (t *Tracker) View() TrackerView {
	t.mu.Lock()
	defer t.mu.Unlock()
	view := TrackerView{
		Roadmap:  Summarize(t.roadmap),
		Cursor:   t.cursor,
		Updating: t.updating,
	}
	if topic, ok := t.cursor.Current(t.roadmap); ok {
		view.Topic = topic
		if week, ok := t.cursor.WeekOf(t.roadmap); ok {
			week = progress.Pad(week)
			view.Completed = week.Completion[t.cursor.Topic]
		}
	}
	return view
}

func findWeek(roadmap domain.Roadmap, weekID string) (domain.Week, bool) {
	for _, w := range roadmap.Weeks {
		if w.ID == weekID {
			return progress.Pad(w), true
		}
	}
	return domain.Week{}, false
}
