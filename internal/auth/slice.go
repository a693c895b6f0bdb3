package auth

import "postboard/internal/store"

// State is the auth slice. An empty Username means nobody is logged in.
// Input holds the login form's current selection.
type State struct {
	Username string
	Input    string
}

func InitialState() State { return State{} }

type InputChanged struct{ Value string }

func (InputChanged) Type() string { return "auth/inputChanged" }

type LoggedIn struct{ Username string }

func (LoggedIn) Type() string { return "auth/userLoggedIn" }

// LoggedOut also resets slices holding per-user data.
type LoggedOut struct{}

func (LoggedOut) Type() string { return "auth/userLoggedOut" }

func Reducer(s State, a store.Action) (State, bool) {
	var next State
	switch a := a.(type) {
	case InputChanged:
		next = State{Username: s.Username, Input: a.Value}
	case LoggedIn:
		next = State{Username: a.Username}
	case LoggedOut:
		next = InitialState()
	default:
		return s, false
	}
	return next, next != s
}

// SelectCurrentUsername returns the logged-in username, if any.
func SelectCurrentUsername(s State) (string, bool) {
	return s.Username, s.Username != ""
}

func SelectInput(s State) string { return s.Input }
