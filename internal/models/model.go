package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO-8601 form posts carry their creation time in.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	User      string    `json:"user"`
	Date      string    `json:"date"`
	Reactions Reactions `json:"reactions"`
}

// Time parses Date. A malformed date yields the zero time.
func (p Post) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Excerpt returns at most n runes of the content.
func (p Post) Excerpt(n int) string {
	if utf8.RuneCountInString(p.Content) <= n {
		return p.Content
	}
	return string([]rune(p.Content)[:n])
}

type ReactionName string

const (
	ThumbsUp ReactionName = "thumbsUp"
	Tada     ReactionName = "tada"
	Heart    ReactionName = "heart"
	Rocket   ReactionName = "rocket"
	Eyes     ReactionName = "eyes"
)

// ReactionNames lists the counters in display order.
var ReactionNames = []ReactionName{ThumbsUp, Tada, Heart, Rocket, Eyes}

// ParseReactionName reports whether s names one of the fixed counters.
func ParseReactionName(s string) (ReactionName, bool) {
	for _, n := range ReactionNames {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

type Reactions struct {
	ThumbsUp int `json:"thumbsUp"`
	Tada     int `json:"tada"`
	Heart    int `json:"heart"`
	Rocket   int `json:"rocket"`
	Eyes     int `json:"eyes"`
}

// Count returns the value of the named counter.
func (r Reactions) Count(name ReactionName) int {
	switch name {
	case ThumbsUp:
		return r.ThumbsUp
	case Tada:
		return r.Tada
	case Heart:
		return r.Heart
	case Rocket:
		return r.Rocket
	case Eyes:
		return r.Eyes
	}
	return 0
}

// Add returns a copy with the named counter incremented. The receiver is not
// modified; false means the name is not a known counter.
func (r Reactions) Add(name ReactionName) (Reactions, bool) {
	switch name {
	case ThumbsUp:
		r.ThumbsUp++
	case Tada:
		r.Tada++
	case Heart:
		r.Heart++
	case Rocket:
		r.Rocket++
	case Eyes:
		r.Eyes++
	default:
		return r, false
	}
	return r, true
}

// RequestStatus tracks a remote fetch for one slice.
type RequestStatus string

const (
	StatusIdle      RequestStatus = "idle"
	StatusLoading   RequestStatus = "loading"
	StatusCompleted RequestStatus = "completed"
	StatusFailed    RequestStatus = "failed"
)

func (s RequestStatus) String() string { return string(s) }

// ParseRequestStatus converts a string to RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case StatusIdle, StatusLoading, StatusCompleted, StatusFailed:
		return RequestStatus(s), nil
	case "":
		return StatusIdle, nil
	}
	return StatusIdle, fmt.Errorf("unknown request status %q", s)
}
