package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, _ := test.NewNullLogger()
	return New(Config{BaseURL: srv.URL + "/fakeApi/"}, log)
}

func TestFetchPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/fakeApi/posts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Post{{
			ID:        "p1",
			Title:     "First Post!",
			Content:   "Hello!",
			User:      "0",
			Date:      "2024-01-01T10:00:00.000Z",
			Reactions: models.Reactions{Heart: 3},
		}})
	})

	got, err := c.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "First Post!", got[0].Title)
	assert.Equal(t, 3, got[0].Reactions.Heart)
}

func TestFetchUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fakeApi/users", r.URL.Path)
		w.Write([]byte(`[{"id":"0","name":"Tianna Jenkins"}]`))
	})

	got, err := c.FetchUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: "0", Name: "Tianna Jenkins"}}, got)
}

func TestGetStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.FetchPosts(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "request failed with status 500: boom", err.Error())
}

func TestGetDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.FetchUsers(context.Background())
	assert.ErrorContains(t, err, "decode response")
}

func TestGetRespectsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.FetchPosts(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
