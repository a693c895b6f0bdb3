package auth

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "postboard_session"

// Manager issues session cookies and tracks which session ids are live.
// Each live session owns one in-memory store.
type Manager struct {
	db     *sql.DB
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(db *sql.DB, maxAge time.Duration, secure bool) *Manager {
	return &Manager{db: db, maxAge: maxAge, secure: secure, now: time.Now}
}

// Create records a new session and sets its cookie.
func (m *Manager) Create(w http.ResponseWriter) (string, error) {
	id := uuid.New().String()
	now := m.now()
	expires := now.Add(m.maxAge)

	_, err := m.db.Exec(`INSERT INTO sessions(id,created_at,expires_at) VALUES(?,?,?)`,
		id, now.Unix(), expires.Unix())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return id, nil
}

// Current returns the request's session id if the cookie names a live session.
func (m *Manager) Current(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	var exp int64
	err = m.db.QueryRow(`SELECT expires_at FROM sessions WHERE id = ?`, c.Value).Scan(&exp)
	if err != nil || m.now().Unix() > exp {
		return "", false
	}
	return c.Value, true
}

// Cleanup deletes expired sessions and returns their ids.
func (m *Manager) Cleanup(ctx context.Context) ([]string, error) {
	cutoff := m.now().Unix()

	rows, err := m.db.QueryContext(ctx, `SELECT id FROM sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := m.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, cutoff); err != nil {
		return nil, fmt.Errorf("delete expired sessions: %w", err)
	}
	return ids, nil
}
