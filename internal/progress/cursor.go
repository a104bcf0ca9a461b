package progress

import "studyplan-engine/internal/domain"

// Cursor points at a topic inside a roadmap. Week indexes the weeks in
// SortedWeeks order, not by position value.
type Cursor struct {
	Week  int `json:"weekIndex"`
	Topic int `json:"topicIndex"`
}

// Current returns the topic under the cursor.
func (c Cursor) Current(roadmap domain.Roadmap) (string, bool) {
	weeks := SortedWeeks(roadmap)
	if c.Week < 0 || c.Week >= len(weeks) {
		return "", false
	}
	topics := weeks[c.Week].Topics
	if c.Topic < 0 || c.Topic >= len(topics) {
		return "", false
	}
	return topics[c.Topic], true
}

// WeekOf returns the week under the cursor.
func (c Cursor) WeekOf(roadmap domain.Roadmap) (domain.Week, bool) {
	weeks := SortedWeeks(roadmap)
	if c.Week < 0 || c.Week >= len(weeks) {
		return domain.Week{}, false
	}
	return weeks[c.Week], true
}

// Next moves to the following topic, crossing into later weeks and skipping
// weeks without topics. It reports false at the end of the roadmap.
func (c Cursor) Next(roadmap domain.Roadmap) (Cursor, bool) {
	weeks := SortedWeeks(roadmap)
	if c.Week < 0 || c.Week >= len(weeks) {
		return c, false
	}
	if c.Topic+1 < len(weeks[c.Week].Topics) {
		return Cursor{Week: c.Week, Topic: c.Topic + 1}, true
	}
	for w := c.Week + 1; w < len(weeks); w++ {
		if len(weeks[w].Topics) > 0 {
			return Cursor{Week: w, Topic: 0}, true
		}
	}
	return c, false
}

// Prev moves to the preceding topic, crossing into earlier weeks. It reports
// false at the start of the roadmap.
func (c Cursor) Prev(roadmap domain.Roadmap) (Cursor, bool) {
	weeks := SortedWeeks(roadmap)
	if c.Week < 0 || c.Week >= len(weeks) {
		return c, false
	}
	if c.Topic-1 >= 0 && c.Topic-1 < len(weeks[c.Week].Topics) {
		return Cursor{Week: c.Week, Topic: c.Topic - 1}, true
	}
	for w := c.Week - 1; w >= 0; w-- {
		if n := len(weeks[w].Topics); n > 0 {
			return Cursor{Week: w, Topic: n - 1}, true
		}
	}
	return c, false
}
