package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/db"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dbc, err := db.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })
	require.NoError(t, db.Migrate(context.Background(), dbc))
	return dbc
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestCreateAndCurrent(t *testing.T) {
	m := NewManager(openDB(t), time.Hour, false)

	w := httptest.NewRecorder()
	id, err := m.Create(w)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	got, ok := m.Current(requestWith(cookies[0]))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestCurrentRejectsUnknownAndMissing(t *testing.T) {
	m := NewManager(openDB(t), time.Hour, false)

	_, ok := m.Current(requestWith(nil))
	assert.False(t, ok)

	_, ok = m.Current(requestWith(&http.Cookie{Name: sessionCookie, Value: "nope"}))
	assert.False(t, ok)
}

func TestCleanupRemovesExpired(t *testing.T) {
	m := NewManager(openDB(t), time.Minute, false)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	w := httptest.NewRecorder()
	expired, err := m.Create(w)
	require.NoError(t, err)
	cookie := w.Result().Cookies()[0]

	m.now = func() time.Time { return base.Add(30 * time.Second) }
	live, err := m.Create(httptest.NewRecorder())
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(70 * time.Second) }
	_, ok := m.Current(requestWith(cookie))
	assert.False(t, ok, "expired session must not validate")

	ids, err := m.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{expired}, ids)

	ids, err = m.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotEqual(t, expired, live)
}

func TestCurrentTreatsQueryErrorAsNoSession(t *testing.T) {
	dbc, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbc.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT expires_at FROM sessions WHERE id = ?`)).
		WithArgs("abc").
		WillReturnError(errors.New("disk I/O error"))

	m := NewManager(dbc, time.Hour, false)
	_, ok := m.Current(requestWith(&http.Cookie{Name: sessionCookie, Value: "abc"}))
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReportsInsertError(t *testing.T) {
	dbc, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbc.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WillReturnError(errors.New("database is locked"))

	m := NewManager(dbc, time.Hour, false)
	w := httptest.NewRecorder()
	_, err = m.Create(w)
	assert.ErrorContains(t, err, "insert session")
	assert.Empty(t, w.Result().Cookies())
}
