package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionsAdd(t *testing.T) {
	var r Reactions

	next, ok := r.Add(Heart)
	require.True(t, ok)
	assert.Equal(t, 1, next.Heart)
	assert.Equal(t, 0, r.Heart, "receiver must not change")

	_, ok = r.Add("clap")
	assert.False(t, ok)
}

func TestReactionsCount(t *testing.T) {
	r := Reactions{ThumbsUp: 1, Tada: 2, Heart: 3, Rocket: 4, Eyes: 5}
	for i, n := range ReactionNames {
		assert.Equal(t, i+1, r.Count(n), n)
	}
}

func TestParseReactionName(t *testing.T) {
	n, ok := ParseReactionName("rocket")
	assert.True(t, ok)
	assert.Equal(t, Rocket, n)

	_, ok = ParseReactionName("Rocket")
	assert.False(t, ok)
}

func TestParseRequestStatus(t *testing.T) {
	s, err := ParseRequestStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	s, err = ParseRequestStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, s)

	_, err = ParseRequestStatus("done")
	assert.Error(t, err)
}

func TestPostExcerptAndTime(t *testing.T) {
	p := Post{Content: "héllo world", Date: "2024-03-01T10:00:00.000Z"}
	assert.Equal(t, "héllo", p.Excerpt(5))
	assert.Equal(t, p.Content, p.Excerpt(100))
	assert.Equal(t, 2024, p.Time().Year())

	assert.True(t, Post{Date: "yesterday"}.Time().IsZero())
}
