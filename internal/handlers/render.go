package handlers

//go:generate mockgen -source=render.go -destination=render_mock.go -package=handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/middlewares"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/services"
	"github.com/sbilibin2017/gw-todo-web/internal/views"
)

// Renderer executes a named HTML page.
type Renderer interface {
	Render(w io.Writer, name string, page views.Page) error
}

// render writes the page with the given status. The principal of the
// request, if any, is added to the page.
func render(w http.ResponseWriter, r *http.Request, renderer Renderer, status int, name string, page views.Page) {
	if principal, ok := middlewares.PrincipalFromContext(r.Context()); ok {
		page.Principal = &principal
	}
	writePage(w, r, renderer, status, name, page)
}

// writePage renders the page as given, without the request principal.
func writePage(w http.ResponseWriter, r *http.Request, renderer Renderer, status int, name string, page views.Page) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, name, page); err != nil {
		logger.Log.Errorw("failed to render page",
			"request_id", middlewares.RequestIDFromContext(r.Context()),
			"page", name,
			"err", err,
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError maps service errors to a status and shows the error page.
func renderError(w http.ResponseWriter, r *http.Request, renderer Renderer, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrTodoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	default:
		logger.Log.Errorw("internal server error",
			"request_id", middlewares.RequestIDFromContext(r.Context()),
			"err", err,
		)
	}
	render(w, r, renderer, status, views.Error, views.Page{Error: err.Error()})
}

// currentPrincipal returns the principal or redirects to the login page.
func currentPrincipal(w http.ResponseWriter, r *http.Request) (principal models.Principal, ok bool) {
	principal, ok = middlewares.PrincipalFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middlewares.LoginPath, http.StatusSeeOther)
	}
	return principal, ok
}
