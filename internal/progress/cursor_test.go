package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studyplan-engine/internal/domain"
)

func cursorRoadmap() domain.Roadmap {
	return domain.Roadmap{Weeks: []domain.Week{
		{Position: 3, Topics: []string{"e"}},
		{Position: 1, Topics: []string{"a", "b"}},
		{Position: 2, Topics: nil},
	}}
}

func TestCursorWalksForwardAcrossWeeks(t *testing.T) {
	roadmap := cursorRoadmap()
	var seen []string

	c := Cursor{}
	for {
		topic, ok := c.Current(roadmap)
		if ok {
			seen = append(seen, topic)
		}
		next, moved := c.Next(roadmap)
		if !moved {
			break
		}
		c = next
	}

	assert.Equal(t, []string{"a", "b", "e"}, seen)
	assert.Equal(t, Cursor{Week: 2, Topic: 0}, c)
}

func TestCursorWalksBackward(t *testing.T) {
	roadmap := cursorRoadmap()

	c, ok := Cursor{Week: 2, Topic: 0}.Prev(roadmap)
	assert.True(t, ok)
	assert.Equal(t, Cursor{Week: 0, Topic: 1}, c)

	c, ok = c.Prev(roadmap)
	assert.True(t, ok)
	assert.Equal(t, Cursor{Week: 0, Topic: 0}, c)

	_, ok = c.Prev(roadmap)
	assert.False(t, ok)
}

func TestCursorOutOfRange(t *testing.T) {
	roadmap := cursorRoadmap()
	_, ok := Cursor{Week: 9}.Current(roadmap)
	assert.False(t, ok)
	_, ok = Cursor{Week: -1}.Next(roadmap)
	assert.False(t, ok)
	_, ok = Cursor{Week: 0, Topic: 5}.Current(roadmap)
	assert.False(t, ok)
}
