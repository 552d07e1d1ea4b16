package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr    error
	signUpResult *domain.User
	lastName     string
	lastEmail    string
	lastPassword string

	loginErr   error
	loginToken string
	loginUser  *domain.User
}

func (f *fakeAuthService) SignUp(_ context.Context, name, email, password string) (*domain.User, error) {
	f.lastName = name
	f.lastEmail = email
	f.lastPassword = password
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpResult, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	f.lastPassword = password
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthControllerSignUp(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{signUpResult: &domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}}
		ctrl := NewAuthController(testLogger, svc)

		rr := httptest.NewRecorder()
		ctrl.SignUp(rr, postJSON("/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"longenough"}`))

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Ada", svc.lastName)
		assert.Equal(t, "ada@example.com", svc.lastEmail)
		assert.NotContains(t, rr.Body.String(), "password_hash")
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name string
			body string
			want string
		}{
			{"missing name", `{"email":"ada@example.com","password":"longenough"}`, "name is required"},
			{"bad email", `{"name":"Ada","email":"not-an-email","password":"longenough"}`, "invalid email format"},
			{"short password", `{"name":"Ada","email":"ada@example.com","password":"short"}`, "at least 8 characters"},
			{"unknown field", `{"name":"Ada","email":"a@b.co","password":"longenough","role":"admin"}`, "unknown field"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ctrl := NewAuthController(testLogger, &fakeAuthService{})
				rr := httptest.NewRecorder()

				ctrl.SignUp(rr, postJSON("/auth/signup", tt.body))

				require.Equal(t, http.StatusBadRequest, rr.Code)
				resp := decodeEnvelope(t, rr.Body)
				require.NotNil(t, resp.Error)
				assert.Contains(t, resp.Error.Message, tt.want)
			})
		}
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		svc := &fakeAuthService{signUpErr: domain.ErrDuplicateEmail}
		ctrl := NewAuthController(testLogger, svc)

		rr := httptest.NewRecorder()
		ctrl.SignUp(rr, postJSON("/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"longenough"}`))

		require.Equal(t, http.StatusConflict, rr.Code)
		resp := decodeEnvelope(t, rr.Body)
		assert.Equal(t, helpers.ErrCodeConflict, resp.Error.Code)
	})
}

func TestAuthControllerLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeAuthService{
			loginToken: "signed-token",
			loginUser:  &domain.User{ID: "u-1", Email: "ada@example.com"},
		}
		ctrl := NewAuthController(testLogger, svc)

		rr := httptest.NewRecorder()
		ctrl.Login(rr, postJSON("/auth/login", `{"email":"ada@example.com","password":"s3cretpw"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"signed-token"`)
		assert.Contains(t, rr.Body.String(), `"Bearer"`)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &fakeAuthService{loginErr: domain.ErrInvalidCredentials}
		ctrl := NewAuthController(testLogger, svc)

		rr := httptest.NewRecorder()
		ctrl.Login(rr, postJSON("/auth/login", `{"email":"ada@example.com","password":"wrong"}`))

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		resp := decodeEnvelope(t, rr.Body)
		assert.Equal(t, helpers.ErrCodeUnauthorized, resp.Error.Code)
	})

	t.Run("empty body fields", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeAuthService{})
		rr := httptest.NewRecorder()

		ctrl.Login(rr, postJSON("/auth/login", `{"email":"","password":""}`))

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
