package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/turnstile/server/dao"
	"github.com/dekarrin/turnstile/server/dao/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestUserStore(t *testing.T) (dao.UserRepository, dao.User) {
	t.Helper()
	store := inmem.NewDatastore()
	t.Cleanup(func() { store.Close() })

	created, err := store.Users().Create(context.Background(), dao.User{
		Username: "glorious",
		Password: "hashed-pw",
		Role:     dao.Normal,
	})
	require.NoError(t, err)

	return store.Users(), created
}

func Test_generateJWT_and_validateAndLookupJWTUser(t *testing.T) {
	users, user := newTestUserStore(t)

	tok, err := generateJWT(testSecret, user)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	got, err := validateAndLookupJWTUser(context.Background(), tok, testSecret, users)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func Test_validateAndLookupJWTUser_invalidatedByLogout(t *testing.T) {
	users, user := newTestUserStore(t)

	tok, err := generateJWT(testSecret, user)
	require.NoError(t, err)

	user.LastLogoutTime = time.Now()
	_, err = users.Update(context.Background(), user.ID, user)
	require.NoError(t, err)

	_, err = validateAndLookupJWTUser(context.Background(), tok, testSecret, users)
	assert.Error(t, err)
}

func Test_validateAndLookupJWTUser_wrongSecret(t *testing.T) {
	users, user := newTestUserStore(t)

	tok, err := generateJWT(testSecret, user)
	require.NoError(t, err)

	_, err = validateAndLookupJWTUser(context.Background(), tok, []byte("some other secret used instead!"), users)
	assert.Error(t, err)
}

func Test_getJWT(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer abc123")

	tok, err := getJWT(req)
	require.NoError(t, err)
	assert.Equal(t, "abc123", tok)
}

func Test_getJWT_missingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	_, err := getJWT(req)
	assert.Error(t, err)
}

func Test_getJWT_notBearer(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc123")

	_, err := getJWT(req)
	assert.Error(t, err)
}

func Test_AuthHandler_required_validToken(t *testing.T) {
	users, user := newTestUserStore(t)
	tok, err := generateJWT(testSecret, user)
	require.NoError(t, err)

	var gotUser dao.User
	var gotLoggedIn bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Context().Value(AuthUser).(dao.User)
		gotLoggedIn = r.Context().Value(AuthLoggedIn).(bool)
		w.WriteHeader(http.StatusOK)
	})

	handler := RequireAuth(users, testSecret, 0, dao.User{}, next)

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tok))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotLoggedIn)
	assert.Equal(t, user.ID, gotUser.ID)
}

func Test_AuthHandler_required_noToken(t *testing.T) {
	users, _ := newTestUserStore(t)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	handler := RequireAuth(users, testSecret, 0, dao.User{}, next)

	req := httptest.NewRequest("GET", "/users", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func Test_AuthHandler_optional_noToken(t *testing.T) {
	users, _ := newTestUserStore(t)

	var gotLoggedIn bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLoggedIn = r.Context().Value(AuthLoggedIn).(bool)
		w.WriteHeader(http.StatusOK)
	})

	handler := OptionalAuth(users, testSecret, 0, dao.User{}, next)

	req := httptest.NewRequest("GET", "/info", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gotLoggedIn)
}
