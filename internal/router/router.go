// Package router wires the HTTP surface of the blog: the chi mux, the
// middleware chain and the HTML handlers. Handlers stay thin: extract
// parameters, call the service, translate its sentinel errors into a
// flash-plus-redirect or an error page.
package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/miniblog/internal/auth"
	"github.com/patric-chuzhbe/miniblog/internal/logger"
	"github.com/patric-chuzhbe/miniblog/internal/methodoverride"
	"github.com/patric-chuzhbe/miniblog/internal/models"
	"github.com/patric-chuzhbe/miniblog/internal/service"
	"github.com/patric-chuzhbe/miniblog/internal/session"
	"github.com/patric-chuzhbe/miniblog/internal/view"
)

type blogService interface {
	Signup(ctx context.Context, form models.SignupForm) error
	Login(ctx context.Context, form models.LoginForm) (*models.User, error)
	CreatePost(ctx context.Context, userID int64, form models.PostForm) (int64, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	GetOwnedPost(ctx context.Context, actorID, postID int64) (*models.Post, error)
	UpdatePost(ctx context.Context, actorID, postID int64, form models.PostForm) error
	DeletePost(ctx context.Context, actorID, postID int64) error
	ListPosts(ctx context.Context) ([]models.PostWithAuthor, error)
}

type authenticator interface {
	AttachSession(h http.Handler) http.Handler
	RequireAuth(h http.Handler) http.Handler
}

// Router holds the handler dependencies.
type Router struct {
	service  blogService
	sessions *session.Manager
	views    *view.View
}

// New assembles the chi mux with the full route table.
func New(
	svc blogService,
	sessions *session.Manager,
	authMiddleware authenticator,
	views *view.View,
) *chi.Mux {
	myRouter := &Router{
		service:  svc,
		sessions: sessions,
		views:    views,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		methodoverride.Middleware,
		authMiddleware.AttachSession,
	)

	router.Get(`/`, myRouter.GetHome)
	router.Get(`/signup`, myRouter.GetSignupForm)
	router.Post(`/signup`, myRouter.PostSignup)
	router.Get(`/login`, myRouter.GetLoginForm)
	router.Post(`/login`, myRouter.PostLogin)
	router.Get(`/logout`, myRouter.GetLogout)

	router.Get(`/blogs`, func(response http.ResponseWriter, request *http.Request) {
		http.Redirect(response, request, "/", http.StatusFound)
	})
	router.Get(`/blogs/{id}`, myRouter.GetShowPost)

	router.With(authMiddleware.RequireAuth).Get(`/blogs/new`, myRouter.GetNewPostForm)
	router.With(authMiddleware.RequireAuth).Post(`/blogs`, myRouter.PostCreatePost)
	router.With(authMiddleware.RequireAuth).Get(`/blogs/{id}/edit`, myRouter.GetEditPostForm)
	router.With(authMiddleware.RequireAuth).Put(`/blogs/{id}`, myRouter.PutUpdatePost)
	router.With(authMiddleware.RequireAuth).Delete(`/blogs/{id}`, myRouter.DeleteDeletePost)

	return router
}

// pageData builds the render payload shared by every page: current
// identity and the flashes consumed for this response.
func (rt *Router) pageData(request *http.Request, title string) view.Data {
	data := view.Data{Title: title}

	record := auth.FromContext(request.Context())
	if record == nil {
		return data
	}

	if record.Authenticated() {
		data.User = &view.Identity{ID: record.UserID, Username: record.Username}
	}

	flashes, err := rt.sessions.ConsumeFlashes(request.Context(), record.Token)
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.ConsumeFlashes()`: ", zap.Error(err))
	}
	data.Flashes = flashes

	return data
}

// flashAndRedirect attaches a flash to the current session (creating an
// anonymous one when the client has none) and issues the redirect.
func (rt *Router) flashAndRedirect(
	response http.ResponseWriter,
	request *http.Request,
	kind models.FlashKind,
	text string,
	target string,
) {
	record := auth.FromContext(request.Context())
	if record == nil {
		var err error
		record, err = rt.sessions.CreateAnonymous(request.Context())
		if err != nil {
			logger.Log.Debugln("Error calling the `rt.sessions.CreateAnonymous()`: ", zap.Error(err))
			http.Redirect(response, request, target, http.StatusFound)
			return
		}
		rt.sessions.WriteCookie(response, record.Token)
	}

	if err := rt.sessions.AddFlash(request.Context(), record.Token, kind, text); err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.AddFlash()`: ", zap.Error(err))
	}

	http.Redirect(response, request, target, http.StatusFound)
}

func (rt *Router) renderErrorPage(
	response http.ResponseWriter,
	request *http.Request,
	status int,
	message string,
) {
	data := rt.pageData(request, message)
	data.Message = message
	rt.views.Render(response, status, "error.html", data)
}

// postID extracts the {id} route parameter. Anything that is not a valid
// id maps to the generic not-found outcome before any store call.
func postID(request *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}

	return id, true
}

// GetHome renders the landing page listing every post with its author.
func (rt *Router) GetHome(response http.ResponseWriter, request *http.Request) {
	posts, err := rt.service.ListPosts(request.Context())
	if err != nil {
		logger.Log.Errorln("Error calling the `rt.service.ListPosts()`: ", zap.Error(err))
		rt.renderErrorPage(response, request, http.StatusInternalServerError, "Error fetching blogs")
		return
	}

	data := rt.pageData(request, "All posts")
	data.Posts = posts
	rt.views.Render(response, http.StatusOK, "home.html", data)
}

// GetSignupForm renders the signup form.
func (rt *Router) GetSignupForm(response http.ResponseWriter, request *http.Request) {
	rt.views.Render(response, http.StatusOK, "signup.html", rt.pageData(request, "Sign up"))
}

// PostSignup registers a new user. A taken username produces the specific
// "already exists" flash; every other failure the generic one. Both
// redirect back to the signup form.
func (rt *Router) PostSignup(response http.ResponseWriter, request *http.Request) {
	form := models.SignupForm{
		Username: request.PostFormValue("username"),
		Password: request.PostFormValue("password"),
	}

	err := rt.service.Signup(request.Context(), form)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			rt.flashAndRedirect(response, request, models.FlashError, "Username already exists", "/signup")
			return
		}
		logger.Log.Debugln("Error calling the `rt.service.Signup()`: ", zap.Error(err))
		rt.flashAndRedirect(response, request, models.FlashError, "Signup failed", "/signup")
		return
	}

	rt.flashAndRedirect(response, request, models.FlashSuccess, "Signup successful! Please login.", "/login")
}

// GetLoginForm renders the login form.
func (rt *Router) GetLoginForm(response http.ResponseWriter, request *http.Request) {
	rt.views.Render(response, http.StatusOK, "login.html", rt.pageData(request, "Log in"))
}

// PostLogin verifies the credentials and establishes a session. An unknown
// username, a wrong password and a store failure all produce the same
// flash and redirect, so nothing distinguishes them from outside.
func (rt *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	form := models.LoginForm{
		Username: request.PostFormValue("username"),
		Password: request.PostFormValue("password"),
	}

	usr, err := rt.service.Login(request.Context(), form)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidCredentials) {
			logger.Log.Errorln("Error calling the `rt.service.Login()`: ", zap.Error(err))
		}
		rt.flashAndRedirect(response, request, models.FlashError, "Invalid username or password", "/login")
		return
	}

	// A fresh token is issued for the authenticated identity; the
	// pre-login token, if any, is destroyed rather than upgraded.
	if old := auth.FromContext(request.Context()); old != nil {
		if err := rt.sessions.Destroy(request.Context(), old.Token); err != nil {
			logger.Log.Debugln("Error calling the `rt.sessions.Destroy()`: ", zap.Error(err))
		}
	}

	record, err := rt.sessions.Create(request.Context(), usr.ID, usr.Username)
	if err != nil {
		logger.Log.Errorln("Error calling the `rt.sessions.Create()`: ", zap.Error(err))
		rt.renderErrorPage(response, request, http.StatusInternalServerError, "Error")
		return
	}
	rt.sessions.WriteCookie(response, record.Token)

	if err := rt.sessions.AddFlash(
		request.Context(),
		record.Token,
		models.FlashSuccess,
		"Welcome back, "+usr.Username+"!",
	); err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.AddFlash()`: ", zap.Error(err))
	}

	http.Redirect(response, request, "/", http.StatusFound)
}

// GetLogout destroys the session. Destroying an absent session is fine,
// so hitting /logout while logged out still just lands on the home page.
func (rt *Router) GetLogout(response http.ResponseWriter, request *http.Request) {
	if record := auth.FromContext(request.Context()); record != nil {
		if err := rt.sessions.Destroy(request.Context(), record.Token); err != nil {
			logger.Log.Debugln("Error calling the `rt.sessions.Destroy()`: ", zap.Error(err))
		}
	}
	rt.sessions.ClearCookie(response)

	// The goodbye flash needs a session of its own now that the old one
	// is gone.
	record, err := rt.sessions.CreateAnonymous(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.CreateAnonymous()`: ", zap.Error(err))
		http.Redirect(response, request, "/", http.StatusFound)
		return
	}
	rt.sessions.WriteCookie(response, record.Token)
	if err := rt.sessions.AddFlash(
		request.Context(),
		record.Token,
		models.FlashSuccess,
		"You have been logged out!",
	); err != nil {
		logger.Log.Debugln("Error calling the `rt.sessions.AddFlash()`: ", zap.Error(err))
	}

	http.Redirect(response, request, "/", http.StatusFound)
}

// GetShowPost renders a single post; reading is public.
func (rt *Router) GetShowPost(response http.ResponseWriter, request *http.Request) {
	id, ok := postID(request)
	if !ok {
		rt.renderErrorPage(response, request, http.StatusNotFound, "Not found")
		return
	}

	post, err := rt.service.GetPost(request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			rt.renderErrorPage(response, request, http.StatusNotFound, "Not found")
			return
		}
		logger.Log.Errorln("Error calling the `rt.service.GetPost()`: ", zap.Error(err))
		rt.renderErrorPage(response, request, http.StatusInternalServerError, "Error")
		return
	}

	data := rt.pageData(request, post.Title)
	data.Post = post
	rt.views.Render(response, http.StatusOK, "show.html", data)
}

// GetNewPostForm renders the post creation form (authentication required).
func (rt *Router) GetNewPostForm(response http.ResponseWriter, request *http.Request) {
	rt.views.Render(response, http.StatusOK, "new.html", rt.pageData(request, "New post"))
}

// PostCreatePost persists a new post owned by the session identity.
func (rt *Router) PostCreatePost(response http.ResponseWriter, request *http.Request) {
	record := auth.FromContext(request.Context())

	form := models.PostForm{
		Title:   request.PostFormValue("title"),
		Content: request.PostFormValue("content"),
	}

	if _, err := rt.service.CreatePost(request.Context(), record.UserID, form); err != nil {
		if errors.Is(err, service.ErrValidation) {
			rt.flashAndRedirect(response, request, models.FlashError, "Title is required", "/blogs/new")
			return
		}
		logger.Log.Errorln("Error calling the `rt.service.CreatePost()`: ", zap.Error(err))
		rt.renderErrorPage(response, request, http.StatusInternalServerError, "Error")
		return
	}

	rt.flashAndRedirect(response, request, models.FlashSuccess, "Blog created", "/")
}

// GetEditPostForm renders the edit form for a post the session identity
// owns (authentication and ownership required).
func (rt *Router) GetEditPostForm(response http.ResponseWriter, request *http.Request) {
	record := auth.FromContext(request.Context())

	id, ok := postID(request)
	if !ok {
		rt.renderErrorPage(response, request, http.StatusNotFound, "Not found")
		return
	}

	post, err := rt.service.GetOwnedPost(request.Context(), record.UserID, id)
	if err != nil {
		rt.renderMutationError(response, request, err, "Error")
		return
	}

	data := rt.pageData(request, "Edit post")
	data.Post = post
	rt.views.Render(response, http.StatusOK, "edit.html", data)
}

// PutUpdatePost applies an edit. The ownership guard runs inside the
// service before the mutating statement; delete and update share it.
func (rt *Router) PutUpdatePost(response http.ResponseWriter, request *http.Request) {
	record := auth.FromContext(request.Context())

	id, ok := postID(request)
	if !ok {
		rt.renderErrorPage(response, request, http.StatusNotFound, "Not found")
		return
	}

	form := models.PostForm{
		Title:   request.PostFormValue("title"),
		Content: request.PostFormValue("content"),
	}

	if err := rt.service.UpdatePost(request.Context(), record.UserID, id, form); err != nil {
		if errors.Is(err, service.ErrValidation) {
			rt.flashAndRedirect(
				response,
				request,
				models.FlashError,
				"Title is required",
				"/blogs/"+strconv.FormatInt(id, 10)+"/edit",
			)
			return
		}
		rt.renderMutationError(response, request, err, "Error")
		return
	}

	rt.flashAndRedirect(
		response,
		request,
		models.FlashSuccess,
		"Blog updated",
		"/blogs/"+strconv.FormatInt(id, 10),
	)
}

// DeleteDeletePost removes a post under the same ownership rule as update.
func (rt *Router) DeleteDeletePost(response http.ResponseWriter, request *http.Request) {
	record := auth.FromContext(request.Context())

	id, ok := postID(request)
	if !ok {
		rt.renderErrorPage(response, request, http.StatusNotFound, "Not found")
		return
	}

	if err := rt.service.DeletePost(request.Context(), record.UserID, id); err != nil {
		rt.renderMutationError(response, request, err, "Error")
		return
	}

	rt.flashAndRedirect(response, request, models.FlashSuccess, "Blog deleted", "/")
}

// renderMutationError maps the service's sentinel errors onto the pages
// the client may see: a missing post is "Not found", a foreign post is a
// generic denial that leaks nothing about its owner, anything else is a
// plain "Error".
func (rt *Router) renderMutationError(
	response http.ResponseWriter,
	request *http.Request,
	err error,
	generic string,
) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		rt.renderErrorPage(response, request, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrNotOwner):
		rt.renderErrorPage(response, request, http.StatusForbidden, "Unauthorized")
	default:
		logger.Log.Errorln("Error mutating post: ", zap.Error(err))
		rt.renderErrorPage(response, request, http.StatusInternalServerError, generic)
	}
}
