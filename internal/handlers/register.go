package handlers

//go:generate mockgen -source=register.go -destination=register_mock.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/services"
	"github.com/sbilibin2017/gw-todo-web/internal/views"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, confirm string) error
}

// NewRegisterPageHandler returns the registration form handler.
// @Summary Registration form
// @Tags auth
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /register [get]
func NewRegisterPageHandler(renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, renderer, http.StatusOK, views.Register, views.Page{})
	}
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account with a unique username. The password is hashed before storing. The user is not logged in.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce html
// @Param fusername formData string true "Username"
// @Param fpassword formData string true "Password"
// @Param fpassword2 formData string true "Password confirmation"
// @Success 303 "Redirect to /login"
// @Failure 400 {string} string "Empty field, passwords do not match or password too long"
// @Failure 409 {string} string "Username already exists"
// @Router /register [post]
func NewRegisterHandler(svc Registerer, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			render(w, r, renderer, http.StatusBadRequest, views.Register, views.Page{Message: "Please fill out all fields!"})
			return
		}

		form := models.NewRegisterForm(r.PostForm)
		err := svc.Register(r.Context(), form.Username, form.Password, form.Confirm)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmptyField):
				render(w, r, renderer, http.StatusBadRequest, views.Register, views.Page{Message: "Please fill out all fields!"})
			case errors.Is(err, services.ErrUserAlreadyExists):
				render(w, r, renderer, http.StatusConflict, views.Register, views.Page{Message: "Username already exists!"})
			case errors.Is(err, services.ErrPasswordMismatch):
				render(w, r, renderer, http.StatusBadRequest, views.Register, views.Page{Message: "Passwords do not match!"})
			case errors.Is(err, services.ErrPasswordTooLong):
				render(w, r, renderer, http.StatusBadRequest, views.Register, views.Page{Message: "Password is too long!"})
			default:
				renderError(w, r, renderer, err)
			}
			return
		}

		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
