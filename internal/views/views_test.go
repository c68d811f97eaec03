package views

import (
	"bytes"
	"testing"

	"github.com/sbilibin2017/gw-todo-web/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	alice := &models.Principal{UserID: "u1", Username: "alice"}
	todo := models.TodoDB{ID: primitive.NewObjectID(), User: "u1", Title: "Buy <milk>", Description: "2L", CreatedAt: "2025-01-01 10:00:00"}

	tests := []struct {
		name     string
		page     string
		data     Page
		contains []string
		excludes []string
	}{
		{
			name:     "index anonymous",
			page:     Index,
			contains: []string{`href="/login"`, `href="/register"`},
			excludes: []string{`href="/logout"`},
		},
		{
			name:     "index authenticated",
			page:     Index,
			data:     Page{Principal: alice},
			contains: []string{"Welcome back, alice", `href="/logout"`},
		},
		{
			name:     "login failure message",
			page:     Login,
			data:     Page{Message: "Login failed!"},
			contains: []string{"Login failed!", `name="fusername"`, `name="fpassword"`},
		},
		{
			name:     "register form",
			page:     Register,
			contains: []string{`name="fpassword2"`},
		},
		{
			name:     "account",
			page:     Account,
			data:     Page{Principal: alice},
			contains: []string{"<strong>alice</strong>"},
		},
		{
			name: "todos escapes user content",
			page: Todos,
			data: Page{Principal: alice, Todos: []models.TodoDB{todo}},
			contains: []string{
				"Buy &lt;milk&gt;",
				"/edit/" + todo.IDHex(),
				"/delete/" + todo.IDHex(),
				`name="title"`,
				`name="description"`,
			},
			excludes: []string{"Buy <milk>", "Nothing to do yet."},
		},
		{
			name:     "todos empty",
			page:     Todos,
			data:     Page{Principal: alice},
			contains: []string{"Nothing to do yet."},
		},
		{
			name:     "edit",
			page:     Edit,
			data:     Page{Principal: alice, Todo: &todo},
			contains: []string{`action="/edit/` + todo.IDHex() + `"`, `name="ftitle"`, `name="fdesc"`, ">2L</textarea>"},
		},
		{
			name:     "info",
			page:     Info,
			data:     Page{Message: "You are now logged out!"},
			contains: []string{"You are now logged out!"},
		},
		{
			name:     "error",
			page:     Error,
			data:     Page{Error: "boom"},
			contains: []string{"<pre>boom</pre>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tt.page, tt.data))

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, "missing", Page{})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
