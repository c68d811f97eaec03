package models

import "net/url"

// RegisterForm holds the fields posted by the registration form
type RegisterForm struct {
	Username string
	Password string
	Confirm  string
}

// NewRegisterForm reads a RegisterForm from posted form values.
func NewRegisterForm(values url.Values) RegisterForm {
	return RegisterForm{
		Username: values.Get(FieldUsername),
		Password: values.Get(FieldPassword),
		Confirm:  values.Get(FieldConfirm),
	}
}
