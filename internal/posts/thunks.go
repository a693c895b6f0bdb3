package posts

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/store"
)

// Fetcher reads the post collection from the API.
type Fetcher interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
}

// FetchPosts loads posts into the store unless a fetch was already started.
// sel picks the posts slice out of the root state. The request is skipped,
// returning nil, when the slice status is not idle.
func FetchPosts[S any](ctx context.Context, st *store.Store[S], sel func(S) State, api Fetcher) error {
	idle := func(root S) bool { return sel(root).Status == models.StatusIdle }
	if !st.DispatchIf(idle, FetchPending{}) {
		return nil
	}

	items, err := api.FetchPosts(ctx)
	if err != nil {
		st.Dispatch(FetchRejected{Message: err.Error()})
		return err
	}
	st.Dispatch(FetchFulfilled{Posts: items})
	return nil
}
