package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoginForm(t *testing.T) {
	form := NewLoginForm(url.Values{"fusername": {"alice"}, "fpassword": {"pw1"}, "other": {"x"}})
	assert.Equal(t, LoginForm{Username: "alice", Password: "pw1"}, form)
}

func TestNewRegisterForm(t *testing.T) {
	form := NewRegisterForm(url.Values{"fusername": {"bob"}, "fpassword": {"pw"}, "fpassword2": {"pw2"}})
	assert.Equal(t, RegisterForm{Username: "bob", Password: "pw", Confirm: "pw2"}, form)

	assert.Equal(t, RegisterForm{}, NewRegisterForm(url.Values{}))
}
