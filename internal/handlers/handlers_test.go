package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-todo-web/internal/middlewares"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/views"
	"github.com/stretchr/testify/require"
)

var alice = models.Principal{UserID: "64b7f0c2a1b2c3d4e5f60718", Username: "alice", SessionID: "s-alice"}

func newRenderer(t *testing.T) *views.Renderer {
	t.Helper()
	r, err := views.NewRenderer()
	require.NoError(t, err)
	return r
}

func newFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withPrincipal(req *http.Request, principal models.Principal) *http.Request {
	return req.WithContext(middlewares.WithPrincipal(req.Context(), principal))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
