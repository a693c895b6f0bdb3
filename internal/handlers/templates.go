package handlers

import (
	"embed"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"postboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var reactionEmoji = map[models.ReactionName]string{
	models.ThumbsUp: "👍",
	models.Tada:     "🎉",
	models.Heart:    "❤️",
	models.Rocket:   "🚀",
	models.Eyes:     "👀",
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"reactionNames": func() []models.ReactionName { return models.ReactionNames },
		"emoji":         func(n models.ReactionName) string { return reactionEmoji[n] },
		"count":         func(r models.Reactions, n models.ReactionName) int { return r.Count(n) },
	}).ParseFS(templateFS, "templates/*.html"))
}

// timeAgo renders a post date the way the list shows it, e.g. "5 minutes ago".
func timeAgo(p models.Post, now time.Time) string {
	t := p.Time()
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
