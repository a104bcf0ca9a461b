package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/progress"
)

// Store reads and writes roadmaps, quiz sets and flashcard sets in Postgres.
// Week topics and completion flags are stored as JSON text and decoded
// leniently; quiz and flashcard payloads are JSONB.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewStore(pool *pgxpool.Pool, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, log: log}
}

func (s *Store) GetRoadmap(ctx context.Context, id string) (domain.Roadmap, error) {
	var r domain.Roadmap
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner, title, goal, created_at FROM roadmaps WHERE id=$1`, id,
	).Scan(&r.ID, &r.Owner, &r.Title, &r.Goal, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Roadmap{}, domain.ErrRoadmapNotFound
	}
	if err != nil {
		return domain.Roadmap{}, fmt.Errorf("load roadmap: %w", err)
	}

	weeks, err := s.loadWeeks(ctx, []string{id})
	if err != nil {
		return domain.Roadmap{}, err
	}
	r.Weeks = weeks[id]
	return r, nil
}

func (s *Store) ListRoadmaps(ctx context.Context, owner string) ([]domain.Roadmap, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner, title, goal, created_at FROM roadmaps WHERE owner=$1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	defer rows.Close()

	roadmaps := make([]domain.Roadmap, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var r domain.Roadmap
		if err := rows.Scan(&r.ID, &r.Owner, &r.Title, &r.Goal, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan roadmap: %w", err)
		}
		roadmaps = append(roadmaps, r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	if len(ids) == 0 {
		return roadmaps, nil
	}

	weeks, err := s.loadWeeks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range roadmaps {
		roadmaps[i].Weeks = weeks[roadmaps[i].ID]
	}
	return roadmaps, nil
}

func (s *Store) loadWeeks(ctx context.Context, roadmapIDs []string) (map[string][]domain.Week, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT roadmap_id, id, week, title, topics, progress FROM roadmap_weeks WHERE roadmap_id = ANY($1) ORDER BY week, id`,
		roadmapIDs)
	if err != nil {
		return nil, fmt.Errorf("load weeks: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Week, len(roadmapIDs))
	for rows.Next() {
		var roadmapID string
		var raw progress.RawWeek
		if err := rows.Scan(&roadmapID, &raw.ID, &raw.Position, &raw.Title, &raw.Topics, &raw.Completion); err != nil {
			return nil, fmt.Errorf("scan week: %w", err)
		}
		week, err := progress.Decode(raw)
		if err != nil {
			s.log.Debug("malformed week data", zap.String("roadmap", roadmapID), zap.Error(err))
		}
		out[roadmapID] = append(out[roadmapID], week)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load weeks: %w", err)
	}
	return out, nil
}

// UpdateProgress rewrites one completion flag under a row lock so concurrent
// toggles on the same week do not lose writes.
func (s *Store) UpdateProgress(ctx context.Context, roadmapID, weekID string, topicIndex int, value bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	raw := progress.RawWeek{ID: weekID}
	err = tx.QueryRow(ctx,
		`SELECT week, title, topics, progress FROM roadmap_weeks WHERE id=$1 AND roadmap_id=$2 FOR UPDATE`,
		weekID, roadmapID,
	).Scan(&raw.Position, &raw.Title, &raw.Topics, &raw.Completion)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrWeekNotFound
	}
	if err != nil {
		return fmt.Errorf("load week: %w", err)
	}

	week, decodeErr := progress.Decode(raw)
	if decodeErr != nil {
		s.log.Debug("malformed week data", zap.String("roadmap", roadmapID), zap.Error(decodeErr))
	}
	if topicIndex < 0 || topicIndex >= len(week.Completion) {
		return domain.ErrTopicOutOfRange
	}
	week.Completion[topicIndex] = value

	if _, err := tx.Exec(ctx,
		`UPDATE roadmap_weeks SET progress=$1 WHERE id=$2`,
		progress.EncodeCompletion(week.Completion), weekID,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) ListQuizSets(ctx context.Context, owner string) ([]domain.QuizSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner, title, quiz, created_at FROM quiz_sets WHERE owner=$1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list quiz sets: %w", err)
	}
	defer rows.Close()

	sets := make([]domain.QuizSet, 0)
	for rows.Next() {
		var set domain.QuizSet
		var raw []byte
		if err := rows.Scan(&set.ID, &set.Owner, &set.Title, &raw, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz set: %w", err)
		}
		if err := json.Unmarshal(raw, &set.Questions); err != nil {
			s.log.Debug("malformed quiz payload", zap.String("set", set.ID), zap.Error(err))
			set.Questions = []domain.Question{}
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (s *Store) ListFlashcardSets(ctx context.Context, owner string) ([]domain.FlashcardSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner, title, flashcards, created_at FROM flashcard_sets WHERE owner=$1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list flashcard sets: %w", err)
	}
	defer rows.Close()

	sets := make([]domain.FlashcardSet, 0)
	for rows.Next() {
		var set domain.FlashcardSet
		var raw []byte
		if err := rows.Scan(&set.ID, &set.Owner, &set.Title, &raw, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan flashcard set: %w", err)
		}
		if err := json.Unmarshal(raw, &set.Cards); err != nil {
			s.log.Debug("malformed flashcard payload", zap.String("set", set.ID), zap.Error(err))
			set.Cards = []domain.Card{}
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// Delete removes one item owned by owner. Weeks go with their roadmap.
func (s *Store) Delete(ctx context.Context, kind domain.TargetKind, owner, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id=$1 AND owner=$2`, id, owner); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// DeleteAll removes every item of kind owned by owner.
func (s *Store) DeleteAll(ctx context.Context, kind domain.TargetKind, owner string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE owner=$1`, owner); err != nil {
		return fmt.Errorf("delete all %s: %w", kind, err)
	}
	return nil
}

// SaveRoadmap upserts a roadmap together with its weeks.
func (s *Store) SaveRoadmap(ctx context.Context, r domain.Roadmap) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO roadmaps (id, owner, title, goal, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, goal=EXCLUDED.goal`,
		r.ID, r.Owner, r.Title, r.Goal, r.CreatedAt,
	); err != nil {
		return fmt.Errorf("save roadmap: %w", err)
	}
	batch := &pgx.Batch{}
	for _, w := range r.Weeks {
		batch.Queue(
			`INSERT INTO roadmap_weeks (id, roadmap_id, week, title, topics, progress) VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET week=EXCLUDED.week, title=EXCLUDED.title, topics=EXCLUDED.topics, progress=EXCLUDED.progress`,
			w.ID, r.ID, w.Position, w.Title, progress.EncodeTopics(w.Topics), progress.EncodeCompletion(w.Completion),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save weeks: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// SaveQuizSet upserts a quiz set.
func (s *Store) SaveQuizSet(ctx context.Context, set domain.QuizSet) error {
	payload, err := json.Marshal(set.Questions)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	return s.saveSet(ctx, "quiz_sets", "quiz", set.ID, set.Owner, set.Title, payload, set.CreatedAt)
}

// SaveFlashcardSet upserts a flashcard set.
func (s *Store) SaveFlashcardSet(ctx context.Context, set domain.FlashcardSet) error {
	payload, err := json.Marshal(set.Cards)
	if err != nil {
		return fmt.Errorf("marshal flashcards: %w", err)
	}
	return s.saveSet(ctx, "flashcard_sets", "flashcards", set.ID, set.Owner, set.Title, payload, set.CreatedAt)
}

func (s *Store) saveSet(ctx context.Context, table, column, id, owner, title string, payload []byte, createdAt time.Time) error {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, owner, title, `+column+`, created_at) VALUES ($1, $2, $3, $4::jsonb, $5)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, `+column+`=EXCLUDED.`+column,
		id, owner, title, string(payload), createdAt)
	if err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

func tableFor(kind domain.TargetKind) (string, error) {
	switch kind {
	case domain.KindRoadmap:
		return "roadmaps", nil
	case domain.KindQuiz:
		return "quiz_sets", nil
	case domain.KindFlashcardSet:
		return "flashcard_sets", nil
	}
	return "", domain.ErrUnknownKind
}
