package handlers

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"postboard/internal/app"
	"postboard/internal/auth"
	"postboard/internal/metrics"
	"postboard/internal/models"
	"postboard/internal/posts"
)

const excerptLength = 100

// Sessions is the part of the session manager the handlers use.
type Sessions interface {
	Create(w http.ResponseWriter) (string, error)
	Current(r *http.Request) (string, bool)
}

type Handler struct {
	registry     *app.Registry
	sessions     Sessions
	api          app.API
	limiter      *RateLimiter
	log          logrus.FieldLogger
	tpls         *template.Template
	fetchTimeout time.Duration
	now          func() time.Time
}

type Options struct {
	Registry     *app.Registry
	Sessions     Sessions
	API          app.API
	Limiter      *RateLimiter
	Log          logrus.FieldLogger
	FetchTimeout time.Duration
}

func New(o Options) *Handler {
	if o.FetchTimeout == 0 {
		o.FetchTimeout = 15 * time.Second
	}
	return &Handler{
		registry:     o.Registry,
		sessions:     o.Sessions,
		api:          o.API,
		limiter:      o.Limiter,
		log:          o.Log,
		tpls:         parseTemplates(),
		fetchTimeout: o.FetchTimeout,
		now:          time.Now,
	}
}

// Routes wires the router. Everything but "/" sits behind RequireAuth.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, RequestLogger(h.log), metrics.InstrumentHTTP, WithRecover(h.log))

	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Handler)
		}
		r.Use(h.WithSession)

		r.Get("/", h.Login)
		r.Post("/", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/live", h.Live)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/posts", h.Posts)
			r.Post("/posts", h.CreatePost)
			r.Get("/posts/{postID}", h.Post)
			r.Post("/posts/{postID}/reactions", h.React)
			r.Get("/editPost/{postID}", h.EditPost)
			r.Post("/editPost/{postID}", h.EditPost)
			r.Get("/users", h.Users)
			r.Get("/users/{userID}", h.User)
		})
	})

	r.NotFound(h.NotFound)
	return r
}

type postVM struct {
	models.Post
	Author  string
	TimeAgo string
	Excerpt string
	CanEdit bool
}

func (h *Handler) postView(s app.State, p models.Post) postVM {
	return postVM{
		Post:    p,
		Author:  app.SelectAuthorName(s, p.User),
		TimeAgo: timeAgo(p, h.now()),
		Excerpt: p.Excerpt(excerptLength),
		CanEdit: app.CanEdit(s, p),
	}
}

// page returns the state the view renders from and the data every page
// needs. The version is read first so a racing change makes the page stale,
// never silently ahead.
func (h *Handler) page(st *app.Store, title string) (app.State, map[string]any) {
	version := st.Version()
	s := st.GetState()

	data := map[string]any{
		"Title":   title,
		"Version": version,
	}
	if name, ok := app.SelectCurrentUsername(s); ok {
		data["Username"] = name
		data["DisplayName"] = name
		if u, ok := app.SelectCurrentUser(s); ok {
			data["DisplayName"] = u.Name
		}
	}
	return s, data
}

func (h *Handler) render(w http.ResponseWriter, name string, status int, data map[string]any) {
	var buf bytes.Buffer
	if err := h.tpls.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("render")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// mount starts a fetch the way a view does when it first appears: only when
// the slice is idle, and without holding up the response.
func (h *Handler) mount(idle bool, name string, fetch func(context.Context) error) {
	if !idle {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.fetchTimeout)
		defer cancel()
		if err := fetch(ctx); err != nil {
			h.log.WithError(err).WithField("fetch", name).Warn("fetch failed")
		}
	}()
}

func (h *Handler) mountPosts(st *app.Store) {
	idle := app.SelectPostsStatus(st.GetState()) == models.StatusIdle
	h.mount(idle, "posts", func(ctx context.Context) error { return app.FetchPosts(ctx, st, h.api) })
}

func (h *Handler) mountUsers(st *app.Store) {
	idle := app.SelectUsersStatus(st.GetState()) == models.StatusIdle
	h.mount(idle, "users", func(ctx context.Context) error { return app.FetchUsers(ctx, st, h.api) })
}

// -------- Pages

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	if _, ok := app.SelectCurrentUsername(st.GetState()); ok {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}

	status := http.StatusOK
	var formErr string
	if r.Method == http.MethodPost {
		username := strings.TrimSpace(r.FormValue("username"))
		st.Dispatch(auth.InputChanged{Value: username})

		_, known := app.SelectUserByID(st.GetState(), username)
		if known {
			st.Dispatch(auth.LoggedIn{Username: username})
			h.log.WithFields(logrus.Fields{"session": sessionID(r), "user": username}).Info("logged in")
			http.Redirect(w, r, "/posts", http.StatusSeeOther)
			return
		}
		status = http.StatusBadRequest
		formErr = "Please select a user to log in"
	}

	h.mountUsers(st)
	s, data := h.page(st, "Log In")
	data["Users"] = app.SelectAllUsers(s)
	data["UsersStatus"] = app.SelectUsersStatus(s)
	data["UsersError"] = s.Users.Error
	data["Input"] = app.SelectLoginInput(s)
	data["Error"] = formErr
	h.render(w, "login", status, data)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.storeFor(r).Dispatch(auth.LoggedOut{})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Posts(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	h.mountPosts(st)
	h.mountUsers(st)

	s, data := h.page(st, "Posts")
	var list []postVM
	for _, p := range app.SelectSortedPosts(s) {
		list = append(list, h.postView(s, p))
	}
	data["Posts"] = list
	data["Status"] = app.SelectPostsStatus(s)
	data["PostsError"] = app.SelectPostsError(s)
	h.render(w, "posts", http.StatusOK, data)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	if title == "" || content == "" {
		http.Error(w, "Title and content required", http.StatusBadRequest)
		return
	}

	author, _ := app.SelectCurrentUsername(st.GetState())
	st.Dispatch(posts.NewPostAdded(title, content, author))
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	h.mountUsers(st)

	s, data := h.page(st, "Post")
	p, ok := app.SelectPostByID(s, chi.URLParam(r, "postID"))
	if !ok {
		h.render(w, "post_not_found", http.StatusNotFound, data)
		return
	}
	data["Title"] = p.Title
	data["Post"] = h.postView(s, p)
	h.render(w, "post", http.StatusOK, data)
}

func (h *Handler) React(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	name, ok := models.ParseReactionName(r.FormValue("reaction"))
	if !ok {
		http.Error(w, "Unknown reaction", http.StatusBadRequest)
		return
	}

	h.storeFor(r).Dispatch(posts.ReactionAdded{PostID: postID, Reaction: name})

	back, ok := localReferer(r)
	if !ok {
		back = "/posts/" + postID
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// localReferer returns the path of the Referer when it points back at this
// host, so a reaction never redirects off-site.
func localReferer(r *http.Request) (string, bool) {
	ref := r.Referer()
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return "", false
	}
	back := u.Path
	if u.RawQuery != "" {
		back += "?" + u.RawQuery
	}
	return back, true
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	s, data := h.page(st, "Edit Post")

	p, ok := app.SelectPostByID(s, chi.URLParam(r, "postID"))
	if !ok {
		h.render(w, "post_not_found", http.StatusNotFound, data)
		return
	}
	if !app.CanEdit(s, p) {
		http.Redirect(w, r, "/posts/"+p.ID, http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		title := strings.TrimSpace(r.FormValue("title"))
		content := strings.TrimSpace(r.FormValue("content"))
		if title == "" || content == "" {
			http.Error(w, "Title and content required", http.StatusBadRequest)
			return
		}
		st.Dispatch(posts.Updated{ID: p.ID, Title: title, Content: content})
		http.Redirect(w, r, "/posts/"+p.ID, http.StatusSeeOther)
		return
	}

	data["Post"] = p
	h.render(w, "edit_post", http.StatusOK, data)
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	h.mountUsers(st)

	s, data := h.page(st, "Users")
	data["Users"] = app.SelectAllUsers(s)
	data["UsersStatus"] = app.SelectUsersStatus(s)
	data["UsersError"] = s.Users.Error
	h.render(w, "users", http.StatusOK, data)
}

func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	st := h.storeFor(r)
	h.mountUsers(st)
	h.mountPosts(st)

	s, data := h.page(st, "User")
	u, ok := app.SelectUserByID(s, chi.URLParam(r, "userID"))
	if !ok {
		h.render(w, "user_not_found", http.StatusNotFound, data)
		return
	}
	data["Title"] = u.Name
	data["User"] = u
	data["Posts"] = app.SelectPostsByUser(s, u.ID)
	h.render(w, "user", http.StatusOK, data)
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, "notfound", http.StatusNotFound, map[string]any{"Title": "Not Found", "Version": ""})
}
