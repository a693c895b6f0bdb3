// Package posts holds the posts slice: the collection of posts, the status of
// the remote fetch, and the reducer and selectors over them.
package posts

import (
	"time"

	"github.com/google/uuid"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/store"
)

// UnknownError is recorded when a fetch fails without a message.
const UnknownError = "Unknown Error"

type State struct {
	Posts  []models.Post
	Status models.RequestStatus
	Error  string
}

func InitialState() State {
	return State{Status: models.StatusIdle}
}

type Added struct{ Post models.Post }

func (Added) Type() string { return "posts/postAdded" }

type Updated struct {
	ID      string
	Title   string
	Content string
}

func (Updated) Type() string { return "posts/postUpdated" }

type ReactionAdded struct {
	PostID   string
	Reaction models.ReactionName
}

func (ReactionAdded) Type() string { return "posts/reactionAdded" }

type FetchPending struct{}

func (FetchPending) Type() string { return "posts/fetchPosts/pending" }

type FetchFulfilled struct{ Posts []models.Post }

func (FetchFulfilled) Type() string { return "posts/fetchPosts/fulfilled" }

type FetchRejected struct{ Message string }

func (FetchRejected) Type() string { return "posts/fetchPosts/rejected" }

var (
	newID = uuid.NewString
	now   = time.Now
)

// NewPostAdded builds a complete post for the add action: a fresh id, the
// current time and zeroed reactions.
func NewPostAdded(title, content, userID string) Added {
	return Added{Post: models.Post{
		ID:      newID(),
		Title:   title,
		Content: content,
		User:    userID,
		Date:    now().UTC().Format(models.DateLayout),
	}}
}

func Reducer(s State, a store.Action) (State, bool) {
	switch a := a.(type) {
	case Added:
		s.Posts = appendPosts(s.Posts, a.Post)
		return s, true

	case Updated:
		i := indexOf(s.Posts, a.ID)
		if i < 0 {
			return s, false
		}
		p := s.Posts[i]
		p.Title, p.Content = a.Title, a.Content
		s.Posts = replaceAt(s.Posts, i, p)
		return s, true

	case ReactionAdded:
		i := indexOf(s.Posts, a.PostID)
		if i < 0 {
			return s, false
		}
		p := s.Posts[i]
		r, ok := p.Reactions.Add(a.Reaction)
		if !ok {
			return s, false
		}
		p.Reactions = r
		s.Posts = replaceAt(s.Posts, i, p)
		return s, true

	case FetchPending:
		if s.Status == models.StatusLoading {
			return s, false
		}
		s.Status = models.StatusLoading
		return s, true

	case FetchFulfilled:
		s.Status = models.StatusCompleted
		s.Posts = appendPosts(s.Posts, a.Posts...)
		return s, true

	case FetchRejected:
		s.Status = models.StatusFailed
		s.Error = a.Message
		if s.Error == "" {
			s.Error = UnknownError
		}
		return s, true

	case auth.LoggedOut:
		if isInitial(s) {
			return s, false
		}
		return InitialState(), true
	}
	return s, false
}

func isInitial(s State) bool {
	return len(s.Posts) == 0 && s.Status == models.StatusIdle && s.Error == ""
}

func indexOf(ps []models.Post, id string) int {
	for i, p := range ps {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// appendPosts never writes into the backing array of ps.
func appendPosts(ps []models.Post, more ...models.Post) []models.Post {
	out := make([]models.Post, 0, len(ps)+len(more))
	out = append(out, ps...)
	return append(out, more...)
}

func replaceAt(ps []models.Post, i int, p models.Post) []models.Post {
	out := make([]models.Post, len(ps))
	copy(out, ps)
	out[i] = p
	return out
}
