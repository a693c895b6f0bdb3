// Package app composes the posts, users and auth slices into one root state
// and exposes the selectors views read from it.
package app

import (
	"context"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/posts"
	"postboard/internal/store"
	"postboard/internal/users"
)

// UnknownAuthor is shown when a post's user does not resolve.
const UnknownAuthor = "Unknown author"

type State struct {
	Posts posts.State
	Users users.State
	Auth  auth.State
}

type Store = store.Store[State]

func InitialState() State {
	return State{
		Posts: posts.InitialState(),
		Users: users.InitialState(),
		Auth:  auth.InitialState(),
	}
}

// Reducer hands every action to each slice with its own sub-state.
func Reducer(s State, a store.Action) (State, bool) {
	var changed [3]bool
	var next State
	next.Posts, changed[0] = posts.Reducer(s.Posts, a)
	next.Users, changed[1] = users.Reducer(s.Users, a)
	next.Auth, changed[2] = auth.Reducer(s.Auth, a)
	if changed == [3]bool{} {
		return s, false
	}
	return next, true
}

func NewStore(mw ...store.Middleware) *Store {
	return store.New(Reducer, InitialState(), mw...)
}

// API is the remote data source the fetch operations read from.
type API interface {
	posts.Fetcher
	users.Fetcher
}

func postsOf(s State) posts.State { return s.Posts }
func usersOf(s State) users.State { return s.Users }

func FetchPosts(ctx context.Context, st *Store, api posts.Fetcher) error {
	return posts.FetchPosts(ctx, st, postsOf, api)
}

func FetchUsers(ctx context.Context, st *Store, api users.Fetcher) error {
	return users.FetchUsers(ctx, st, usersOf, api)
}

func SelectAllPosts(s State) []models.Post { return posts.SelectAll(s.Posts) }

func SelectSortedPosts(s State) []models.Post { return posts.SelectSorted(s.Posts) }

func SelectPostByID(s State, id string) (models.Post, bool) { return posts.SelectByID(s.Posts, id) }

func SelectPostsStatus(s State) models.RequestStatus { return posts.SelectStatus(s.Posts) }

func SelectPostsError(s State) string { return posts.SelectError(s.Posts) }

func SelectPostsByUser(s State, userID string) []models.Post {
	return posts.SelectByUser(s.Posts, userID)
}

func SelectAllUsers(s State) []models.User { return users.SelectAll(s.Users) }

func SelectUserByID(s State, id string) (models.User, bool) { return users.SelectByID(s.Users, id) }

func SelectUsersStatus(s State) models.RequestStatus { return users.SelectStatus(s.Users) }

func SelectCurrentUsername(s State) (string, bool) { return auth.SelectCurrentUsername(s.Auth) }

func SelectLoginInput(s State) string { return auth.SelectInput(s.Auth) }

// SelectCurrentUser resolves the logged-in username against the user directory.
func SelectCurrentUser(s State) (models.User, bool) {
	name, ok := SelectCurrentUsername(s)
	if !ok {
		return models.User{}, false
	}
	return SelectUserByID(s, name)
}

// SelectAuthorName follows the post's user reference.
func SelectAuthorName(s State, userID string) string {
	if u, ok := SelectUserByID(s, userID); ok {
		return u.Name
	}
	return UnknownAuthor
}

// CanEdit reports whether the logged-in user wrote p.
func CanEdit(s State, p models.Post) bool {
	name, ok := SelectCurrentUsername(s)
	return ok && name == p.User
}
