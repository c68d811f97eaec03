package models

import "net/url"

// Form field names shared by the login and registration pages.
const (
	FieldUsername = "fusername"
	FieldPassword = "fpassword"
	FieldConfirm  = "fpassword2"
)

// LoginForm holds the fields posted by the login form
type LoginForm struct {
	Username string
	Password string
}

// NewLoginForm reads a LoginForm from posted form values.
func NewLoginForm(values url.Values) LoginForm {
	return LoginForm{
		Username: values.Get(FieldUsername),
		Password: values.Get(FieldPassword),
	}
}
