package handlers

//go:generate mockgen -source=todos.go -destination=todos_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/sbilibin2017/gw-todo-web/internal/views"
)

// TodoLister lists the principal's todos.
type TodoLister interface {
	ListMine(ctx context.Context, principal models.Principal) ([]models.TodoDB, error)
}

// TodoCreator creates a todo for the principal.
type TodoCreator interface {
	Create(ctx context.Context, principal models.Principal, title, description string) (*models.TodoDB, error)
}

// TodoGetter loads one of the principal's todos.
type TodoGetter interface {
	Get(ctx context.Context, principal models.Principal, id string) (*models.TodoDB, error)
}

// TodoEditor replaces a todo's fields.
type TodoEditor interface {
	Edit(ctx context.Context, principal models.Principal, id, title, description string) error
}

// TodoDeleter removes a todo.
type TodoDeleter interface {
	Delete(ctx context.Context, principal models.Principal, id string) error
}

const todosPath = "/todos"

// NewListTodosHandler returns the todo list page handler.
// @Summary List todos
// @Description Shows the current user's todos, newest first
// @Tags todos
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 303 "Redirect to /login when anonymous"
// @Router /todos [get]
func NewListTodosHandler(svc TodoLister, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := currentPrincipal(w, r)
		if !ok {
			return
		}

		todos, err := svc.ListMine(r.Context(), principal)
		if err != nil {
			renderError(w, r, renderer, err)
			return
		}

		render(w, r, renderer, http.StatusOK, views.Todos, views.Page{Todos: todos})
	}
}

// NewAddTodoHandler returns an HTTP handler that creates a todo.
// @Summary Add todo
// @Tags todos
// @Accept x-www-form-urlencoded
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Success 303 "Redirect to /todos"
// @Failure 400 {string} string "Malformed form"
// @Router /add_todo [post]
func NewAddTodoHandler(svc TodoCreator, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := currentPrincipal(w, r)
		if !ok {
			return
		}

		if err := r.ParseForm(); err != nil {
			render(w, r, renderer, http.StatusBadRequest, views.Error, views.Page{Error: err.Error()})
			return
		}

		if _, err := svc.Create(r.Context(), principal, r.PostFormValue("title"), r.PostFormValue("description")); err != nil {
			renderError(w, r, renderer, err)
			return
		}

		http.Redirect(w, r, todosPath, http.StatusSeeOther)
	}
}

// NewEditTodoPageHandler returns the edit form handler.
// @Summary Edit form
// @Tags todos
// @Produce html
// @Param id path string true "Todo id"
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "Invalid id"
// @Failure 403 {string} string "Todo belongs to another user"
// @Failure 404 {string} string "Todo not found"
// @Router /edit/{id} [get]
func NewEditTodoPageHandler(svc TodoGetter, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := currentPrincipal(w, r)
		if !ok {
			return
		}

		todo, err := svc.Get(r.Context(), principal, chi.URLParam(r, "id"))
		if err != nil {
			renderError(w, r, renderer, err)
			return
		}

		render(w, r, renderer, http.StatusOK, views.Edit, views.Page{Todo: todo})
	}
}

// NewEditTodoHandler returns an HTTP handler that replaces a todo's fields.
// @Summary Edit todo
// @Tags todos
// @Accept x-www-form-urlencoded
// @Param id path string true "Todo id"
// @Param ftitle formData string false "Title"
// @Param fdesc formData string false "Description"
// @Success 303 "Redirect to /todos"
// @Failure 400 {string} string "Invalid id"
// @Failure 403 {string} string "Todo belongs to another user"
// @Router /edit/{id} [post]
func NewEditTodoHandler(svc TodoEditor, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := currentPrincipal(w, r)
		if !ok {
			return
		}

		if err := r.ParseForm(); err != nil {
			render(w, r, renderer, http.StatusBadRequest, views.Error, views.Page{Error: err.Error()})
			return
		}

		err := svc.Edit(r.Context(), principal, chi.URLParam(r, "id"), r.PostFormValue("ftitle"), r.PostFormValue("fdesc"))
		if err != nil {
			renderError(w, r, renderer, err)
			return
		}

		http.Redirect(w, r, todosPath, http.StatusSeeOther)
	}
}

// NewDeleteTodoHandler returns an HTTP handler that deletes a todo.
// @Summary Delete todo
// @Tags todos
// @Param id path string true "Todo id"
// @Success 303 "Redirect to /todos"
// @Failure 400 {string} string "Invalid id"
// @Failure 403 {string} string "Todo belongs to another user"
// @Router /delete/{id} [get]
func NewDeleteTodoHandler(svc TodoDeleter, renderer Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := currentPrincipal(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
			renderError(w, r, renderer, err)
			return
		}

		http.Redirect(w, r, todosPath, http.StatusSeeOther)
	}
}
