package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-todo-web/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPageHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewLoginPageHandler(newRenderer(t))(rr, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="fusername"`)
}

func TestLoginHandler(t *testing.T) {
	sessionCookie := &http.Cookie{Name: "session", Value: "JWT_TOKEN", Path: "/", HttpOnly: true}

	tests := []struct {
		name             string
		form             url.Values
		mockSetup        func(svc *MockLoginer, cookies *MockSessionCookier)
		expectedCode     int
		expectedLocation string
		expectedBody     string
		expectCookie     bool
	}{
		{
			name: "success",
			form: url.Values{"fusername": {"alice"}, "fpassword": {"pw1"}},
			mockSetup: func(svc *MockLoginer, cookies *MockSessionCookier) {
				svc.EXPECT().Login(gomock.Any(), "alice", "pw1").Return("JWT_TOKEN", nil)
				cookies.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", errors.New("no cookie"))
				cookies.EXPECT().NewCookie("JWT_TOKEN").Return(sessionCookie)
			},
			expectedCode:     http.StatusSeeOther,
			expectedLocation: "/",
			expectCookie:     true,
		},
		{
			name: "re-login ends previous session",
			form: url.Values{"fusername": {"alice"}, "fpassword": {"pw1"}},
			mockSetup: func(svc *MockLoginer, cookies *MockSessionCookier) {
				gomock.InOrder(
					svc.EXPECT().Login(gomock.Any(), "alice", "pw1").Return("JWT_TOKEN", nil),
					cookies.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("OLD_TOKEN", nil),
					svc.EXPECT().Logout(gomock.Any(), "OLD_TOKEN").Return(nil),
				)
				cookies.EXPECT().NewCookie("JWT_TOKEN").Return(sessionCookie)
			},
			expectedCode:     http.StatusSeeOther,
			expectedLocation: "/",
			expectCookie:     true,
		},
		{
			name: "failure to end previous session does not block login",
			form: url.Values{"fusername": {"alice"}, "fpassword": {"pw1"}},
			mockSetup: func(svc *MockLoginer, cookies *MockSessionCookier) {
				svc.EXPECT().Login(gomock.Any(), "alice", "pw1").Return("JWT_TOKEN", nil)
				cookies.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("OLD_TOKEN", nil)
				svc.EXPECT().Logout(gomock.Any(), "OLD_TOKEN").Return(errors.New("redis down"))
				cookies.EXPECT().NewCookie("JWT_TOKEN").Return(sessionCookie)
			},
			expectedCode:     http.StatusSeeOther,
			expectedLocation: "/",
			expectCookie:     true,
		},
		{
			name: "wrong credentials",
			form: url.Values{"fusername": {"alice"}, "fpassword": {"nope"}},
			mockSetup: func(svc *MockLoginer, cookies *MockSessionCookier) {
				svc.EXPECT().Login(gomock.Any(), "alice", "nope").Return("", services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: "Login failed!",
		},
		{
			name: "store failure",
			form: url.Values{"fusername": {"alice"}, "fpassword": {"pw1"}},
			mockSetup: func(svc *MockLoginer, cookies *MockSessionCookier) {
				svc.EXPECT().Login(gomock.Any(), "alice", "pw1").Return("", errors.New("redis down"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: "redis down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockLoginer(ctrl)
			cookies := NewMockSessionCookier(ctrl)
			tt.mockSetup(svc, cookies)

			rr := httptest.NewRecorder()
			NewLoginHandler(svc, cookies, newRenderer(t))(rr, newFormRequest(http.MethodPost, "/login", tt.form))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedLocation != "" {
				assert.Equal(t, tt.expectedLocation, rr.Header().Get("Location"))
			}
			if tt.expectedBody != "" {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}

			set := rr.Result().Cookies()
			if tt.expectCookie {
				require.Len(t, set, 1)
				assert.Equal(t, "JWT_TOKEN", set[0].Value)
				assert.True(t, set[0].HttpOnly)
			} else {
				assert.Empty(t, set)
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	expired := &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1}

	tests := []struct {
		name         string
		mockSetup    func(svc *MockLogouter, cookies *MockSessionCookier)
		expectedCode int
		expectedBody string
		expectClear  bool
	}{
		{
			name: "live session",
			mockSetup: func(svc *MockLogouter, cookies *MockSessionCookier) {
				cookies.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("tok", nil)
				svc.EXPECT().Logout(gomock.Any(), "tok").Return(nil)
				cookies.EXPECT().ExpiredCookie().Return(expired)
			},
			expectedCode: http.StatusOK,
			expectedBody: "You are now logged out!",
			expectClear:  true,
		},
		{
			name: "no cookie",
			mockSetup: func(svc *MockLogouter, cookies *MockSessionCookier) {
				cookies.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", errors.New("no cookie"))
				svc.EXPECT().Logout(gomock.Any(), "").Return(nil)
				cookies.EXPECT().ExpiredCookie().Return(expired)
			},
			expectedCode: http.StatusOK,
			expectedBody: "You are now logged out!",
			expectClear:  true,
		},
		{
			name: "store failure",
			mockSetup: func(svc *MockLogouter, cookies *MockSessionCookier) {
				cookies.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("tok", nil)
				svc.EXPECT().Logout(gomock.Any(), "tok").Return(errors.New("redis down"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: "redis down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockLogouter(ctrl)
			cookies := NewMockSessionCookier(ctrl)
			tt.mockSetup(svc, cookies)

			req := withPrincipal(httptest.NewRequest(http.MethodGet, "/logout", nil), alice)
			rr := httptest.NewRecorder()
			NewLogoutHandler(svc, cookies, newRenderer(t))(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)

			if tt.expectClear {
				require.Len(t, rr.Result().Cookies(), 1)
				assert.Equal(t, -1, rr.Result().Cookies()[0].MaxAge)
				// the page is rendered for an anonymous visitor
				assert.NotContains(t, rr.Body.String(), `href="/logout"`)
			}
		})
	}
}
