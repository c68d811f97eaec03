package handlers

import (
	"net/http"

	"github.com/sbilibin2017/gw-todo-web/internal/views"
)

// NewHomeHandler returns the landing page handler.
// @Summary Landing page
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func NewHomeHandler(renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, renderer, http.StatusOK, views.Index, views.Page{})
	}
}

// NewAccountHandler returns the account page handler.
// @Summary Account page
// @Tags pages
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 303 "Redirect to /login when anonymous"
// @Router /account [get]
func NewAccountHandler(renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentPrincipal(w, r); !ok {
			return
		}
		render(w, r, renderer, http.StatusOK, views.Account, views.Page{})
	}
}
