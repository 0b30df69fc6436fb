package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/auth"
	"bookstore/internal/httpx"
	"bookstore/internal/testutil"
	"bookstore/internal/user"
	"bookstore/internal/user/mocks"
)

func newHandler(t *testing.T) (*user.HTTPHandler, *mocks.MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockRepository(ctrl)
	return user.NewHTTPHandler(user.NewService(repo, testutil.TestSecret)), repo
}

func TestUserHandler_Register(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, nu user.NewUser) (user.User, error) {
				assert.Equal(t, "test_username", nu.Username)
				assert.True(t, auth.VerifyPassword(nu.PasswordHash, "Password1"))
				return user.User{ID: 1, Username: nu.Username, FirstName: nu.FirstName, LastName: nu.LastName}, nil
			})

		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]any{
			"username":   "test_username",
			"password":   "Password1",
			"first_name": "Test",
			"last_name":  "User",
		}))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusCreated, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, "test_username", data["username"])
		// the hash never leaves the server
		assert.NotContains(t, data, "password_hash")
	})

	t.Run("weak password", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]any{
			"username": "test_username",
			"password": "short",
		}))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		errBody := resp.Body["error"].(map[string]interface{})
		details := errBody["details"].([]interface{})
		require.NotEmpty(t, details)
		assert.Equal(t, "password", details[0].(map[string]interface{})["field"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(user.User{}, user.ErrUsernameTaken)

		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]any{
			"username": "test_username",
			"password": "Password1",
		}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("username too short", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Register(w, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]any{
			"username": "ab",
			"password": "Password1",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_Login(t *testing.T) {
	hash, err := auth.HashPassword("Password1")
	require.NoError(t, err)
	stored := user.User{ID: 1, Username: "test_username", PasswordHash: hash}

	t.Run("issues a token", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "test_username").Return(stored, nil)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]any{
			"username": "test_username",
			"password": "Password1",
		}))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		token, _ := data["access_token"].(string)
		require.NotEmpty(t, token)
		assert.Equal(t, float64(86400), data["expires_in"])

		claims, err := auth.ParseToken(testutil.TestSecret, token)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.Sub)
		assert.False(t, claims.Staff)
	})

	t.Run("wrong password", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "test_username").Return(stored, nil)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]any{
			"username": "test_username",
			"password": "WrongPassword1",
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(user.User{}, user.ErrNotFound)

		w := httptest.NewRecorder()
		handler.Login(w, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]any{
			"username": "ghost",
			"password": "Password1",
		}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_Me(t *testing.T) {
	t.Run("returns the caller", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(testutil.TestUser, nil)

		w := httptest.NewRecorder()
		r := testutil.NewRequest(http.MethodGet, "/me", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), 1, false))
		handler.Me(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, "test_username", data["username"])
	})

	t.Run("anonymous", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Me(w, testutil.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
