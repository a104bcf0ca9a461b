// Package progress normalizes roadmap weeks and derives completion figures
// from them. Everything here is a pure function of its inputs.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"studyplan-engine/internal/domain"
)

// RawWeek is a week as the storage service hands it over: topics and
// completion are JSON-encoded sequences that may be absent or malformed.
type RawWeek struct {
	ID         string
	Position   int
	Title      string
	Topics     string
	Completion string
}

// Stats is a completed/total pair with its rounded percentage.
type Stats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Decode parses raw into a normalized week. A malformed field decodes as
// empty and is reported in the returned error; the week is usable either way.
func Decode(raw RawWeek) (domain.Week, error) {
	var errs []error

	topics, err := decodeTopics(raw.Topics)
	if err != nil {
		errs = append(errs, fmt.Errorf("week %s topics: %w", raw.ID, err))
	}
	completion, err := decodeCompletion(raw.Completion)
	if err != nil {
		errs = append(errs, fmt.Errorf("week %s progress: %w", raw.ID, err))
	}

	week := Pad(domain.Week{
		ID:         raw.ID,
		Position:   raw.Position,
		Title:      raw.Title,
		Topics:     topics,
		Completion: completion,
	})
	return week, errors.Join(errs...)
}

// Normalize is Decode without the diagnostics.
func Normalize(raw RawWeek) domain.Week {
	week, _ := Decode(raw)
	return week
}

// Pad returns week with Completion coerced to len(Topics): missing entries
// become false and surplus entries are dropped. Topics are never touched.
func Pad(week domain.Week) domain.Week {
	if week.Topics == nil {
		week.Topics = []string{}
	}
	completion := make([]bool, len(week.Topics))
	copy(completion, week.Completion)
	week.Completion = completion
	return week
}

// EncodeCompletion is the inverse of the completion decoding used by stores
// that write flags back.
func EncodeCompletion(completion []bool) string {
	if completion == nil {
		completion = []bool{}
	}
	data, _ := json.Marshal(completion)
	return string(data)
}

// EncodeTopics encodes topics the way stores persist them.
func EncodeTopics(topics []string) string {
	if topics == nil {
		topics = []string{}
	}
	data, _ := json.Marshal(topics)
	return string(data)
}

func decodeTopics(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return []string{}, err
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

func decodeCompletion(raw string) ([]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var completion []bool
	if err := json.Unmarshal([]byte(raw), &completion); err != nil {
		return nil, err
	}
	return completion, nil
}

// WeekProgress counts completed topics of a single week.
func WeekProgress(week domain.Week) Stats {
	week = Pad(week)
	completed := 0
	for _, done := range week.Completion {
		if done {
			completed++
		}
	}
	return newStats(completed, len(week.Topics))
}

// RoadmapProgress sums completion across all weeks of roadmap.
func RoadmapProgress(roadmap domain.Roadmap) Stats {
	completed, total := 0, 0
	for _, week := range roadmap.Weeks {
		s := WeekProgress(week)
		completed += s.Completed
		total += s.Total
	}
	return newStats(completed, total)
}

// SortedWeeks returns the weeks of roadmap ordered by position. The roadmap
// itself is not modified.
func SortedWeeks(roadmap domain.Roadmap) []domain.Week {
	weeks := make([]domain.Week, len(roadmap.Weeks))
	copy(weeks, roadmap.Weeks)
	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Position < weeks[j].Position
	})
	return weeks
}

func newStats(completed, total int) Stats {
	return Stats{Completed: completed, Total: total, Percent: percent(completed, total)}
}

// percent rounds half up without going through floating point.
func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}
