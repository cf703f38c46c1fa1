package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finax-server/src/apperr"
	"finax-server/src/models"
)

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
}

func (f fakeAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[token]; ok {
		return user, nil
	}
	return nil, apperr.Authentication("invalid or expired token")
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(UserIDFromContext(r.Context())))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer  ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, err := BearerToken(r)
		if tt.ok {
			require.NoError(t, err, tt.header)
			assert.Equal(t, tt.token, token)
		} else {
			assert.Error(t, err, tt.header)
		}
	}
}

func TestBearerAuth(t *testing.T) {
	auth := fakeAuthenticator{users: map[string]*models.User{"good": {ID: "user-1"}}}
	handler := BearerAuth(auth)(http.HandlerFunc(echoUser))

	r := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	r.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	for _, header := range []string{"", "Bearer bad", "Token good"} {
		r := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, errorBody(t, rec))
	}
}

func TestBearerAuthInternalError(t *testing.T) {
	handler := BearerAuth(fakeAuthenticator{err: errors.New("db down")})(http.HandlerFunc(echoUser))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", errorBody(t, rec))
}

func TestUserFromContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, UserIDFromContext(context.Background()))

	ctx := WithUser(context.Background(), &models.User{ID: "user-1"})
	user, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", user.ID)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	handler := CORS([]string{"https://app.finax.dev"})(next)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://app.finax.dev")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "https://app.finax.dev", rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodOptions, "/transactions", nil)
	rec = httptest.NewRecorder()
	CORS([]string{"*"})(next).ServeHTTP(rec, r)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReadOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/transactions", http.StatusOK},
		{http.MethodPost, "/auth/login", http.StatusOK},
		{http.MethodPost, "/auth/reset-password", http.StatusOK},
		{http.MethodPost, "/transactions", http.StatusForbidden},
		{http.MethodPut, "/auth/profile", http.StatusForbidden},
		{http.MethodPatch, "/auth/avatar", http.StatusForbidden},
	}
	handler := ReadOnly(true)(next)
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}

	rec := httptest.NewRecorder()
	ReadOnly(false)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
