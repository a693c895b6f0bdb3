package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type unknown struct{}

func (unknown) Type() string { return "other/thing" }

func TestReducer(t *testing.T) {
	s := InitialState()

	s, changed := Reducer(s, InputChanged{Value: "0"})
	assert.True(t, changed)
	assert.Equal(t, "0", SelectInput(s))

	s, changed = Reducer(s, LoggedIn{Username: "0"})
	assert.True(t, changed)
	name, ok := SelectCurrentUsername(s)
	assert.True(t, ok)
	assert.Equal(t, "0", name)
	assert.Empty(t, s.Input, "login clears the form field")

	s, changed = Reducer(s, LoggedOut{})
	assert.True(t, changed)
	_, ok = SelectCurrentUsername(s)
	assert.False(t, ok)

	_, changed = Reducer(s, LoggedOut{})
	assert.False(t, changed, "logging out twice is a no-op")
}

func TestReducerIgnoresUnknownActions(t *testing.T) {
	s := State{Username: "1"}
	next, changed := Reducer(s, unknown{})
	assert.False(t, changed)
	assert.Equal(t, s, next)
}
