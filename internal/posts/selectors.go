package posts

import (
	"sort"

	"postboard/internal/models"
)

func SelectAll(s State) []models.Post { return s.Posts }

// SelectByID returns false when no post has the id.
func SelectByID(s State, id string) (models.Post, bool) {
	if i := indexOf(s.Posts, id); i >= 0 {
		return s.Posts[i], true
	}
	return models.Post{}, false
}

func SelectByUser(s State, userID string) []models.Post {
	var out []models.Post
	for _, p := range s.Posts {
		if p.User == userID {
			out = append(out, p)
		}
	}
	return out
}

// SelectSorted returns the posts newest first.
func SelectSorted(s State) []models.Post {
	out := make([]models.Post, len(s.Posts))
	copy(out, s.Posts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func SelectStatus(s State) models.RequestStatus { return s.Status }

func SelectError(s State) string { return s.Error }
