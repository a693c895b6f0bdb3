// Package users holds the read-only user directory fetched from the API.
package users

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/store"
)

const unknownError = "Unknown Error"

type State struct {
	Users  []models.User
	Status models.RequestStatus
	Error  string
}

func InitialState() State {
	return State{Status: models.StatusIdle}
}

type FetchPending struct{}

func (FetchPending) Type() string { return "users/fetchUsers/pending" }

type FetchFulfilled struct{ Users []models.User }

func (FetchFulfilled) Type() string { return "users/fetchUsers/fulfilled" }

type FetchRejected struct{ Message string }

func (FetchRejected) Type() string { return "users/fetchUsers/rejected" }

func Reducer(s State, a store.Action) (State, bool) {
	switch a := a.(type) {
	case FetchPending:
		if s.Status == models.StatusLoading {
			return s, false
		}
		s.Status = models.StatusLoading
		return s, true
	case FetchFulfilled:
		s.Status = models.StatusCompleted
		s.Users = append([]models.User(nil), a.Users...)
		return s, true
	case FetchRejected:
		s.Status = models.StatusFailed
		s.Error = a.Message
		if s.Error == "" {
			s.Error = unknownError
		}
		return s, true
	}
	return s, false
}

func SelectAll(s State) []models.User { return s.Users }

func SelectByID(s State, id string) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func SelectStatus(s State) models.RequestStatus { return s.Status }

func SelectError(s State) string { return s.Error }

type Fetcher interface {
	FetchUsers(ctx context.Context) ([]models.User, error)
}

// FetchUsers loads the user directory once. It is a no-op unless the slice is idle.
func FetchUsers[S any](ctx context.Context, st *store.Store[S], sel func(S) State, api Fetcher) error {
	idle := func(root S) bool { return sel(root).Status == models.StatusIdle }
	if !st.DispatchIf(idle, FetchPending{}) {
		return nil
	}

	list, err := api.FetchUsers(ctx)
	if err != nil {
		st.Dispatch(FetchRejected{Message: err.Error()})
		return err
	}
	st.Dispatch(FetchFulfilled{Users: list})
	return nil
}
