package handlers

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/middlewares"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/services"
	"github.com/sbilibin2017/gw-todo-web/internal/views"
)

// Loginer defines the interface that the login service must implement.
// Logout is used to end the session a re-login replaces.
type Loginer interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

// Logouter ends a session.
type Logouter interface {
	Logout(ctx context.Context, token string) error
}

// SessionCookier reads and issues the session cookie.
type SessionCookier interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	NewCookie(token string) *http.Cookie
	ExpiredCookie() *http.Cookie
}

// NewLoginPageHandler returns the login form handler.
// @Summary Login form
// @Tags auth
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /login [get]
func NewLoginPageHandler(renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, renderer, http.StatusOK, views.Login, views.Page{})
	}
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticate the user, open a session and set the session cookie. A session carried by the request cookie is ended.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce html
// @Param fusername formData string true "Username"
// @Param fpassword formData string true "Password"
// @Success 303 "Redirect to / with the session cookie set"
// @Failure 400 {string} string "Malformed form"
// @Failure 401 {string} string "Login failed"
// @Router /login [post]
func NewLoginHandler(svc Loginer, cookies SessionCookier, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			render(w, r, renderer, http.StatusBadRequest, views.Login, views.Page{Message: "Login failed!"})
			return
		}

		form := models.NewLoginForm(r.PostForm)
		token, err := svc.Login(r.Context(), form.Username, form.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				render(w, r, renderer, http.StatusUnauthorized, views.Login, views.Page{Message: "Login failed!"})
				return
			}
			renderError(w, r, renderer, err)
			return
		}

		if previous, err := cookies.GetTokenFromRequest(r.Context(), r); err == nil && previous != "" {
			if err := svc.Logout(r.Context(), previous); err != nil {
				logger.Log.Warnw("failed to end previous session", "username", form.Username, "err", err)
			}
		}

		http.SetCookie(w, cookies.NewCookie(token))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// NewLogoutHandler returns an HTTP handler that ends the current session.
// @Summary User logout
// @Tags auth
// @Produce html
// @Success 200 {string} string "Logged out"
// @Router /logout [get]
func NewLogoutHandler(svc Logouter, cookies SessionCookier, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := cookies.GetTokenFromRequest(r.Context(), r)
		if err := svc.Logout(r.Context(), token); err != nil {
			renderError(w, r, renderer, err)
			return
		}

		if principal, ok := middlewares.PrincipalFromContext(r.Context()); ok {
			logger.Log.Infow("user logged out", "username", principal.Username)
		}
		http.SetCookie(w, cookies.ExpiredCookie())
		writePage(w, r, renderer, http.StatusOK, views.Info, views.Page{Message: "You are now logged out!"})
	}
}
