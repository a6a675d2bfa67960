package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-account-service/internal/model"
	"github.com/iliyamo/auth-account-service/internal/repository"
	"github.com/iliyamo/auth-account-service/internal/utils"
)

const gateSecret = "gate-secret"

type fakeSessionReader struct {
	sessions map[string]*model.Session
	err      error
}

func (f *fakeSessionReader) GetByID(_ context.Context, id string) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

// runGate pushes one request through the gate in front of a handler that
// echoes back what the gate stored in context.
func runGate(t *testing.T, reader SessionReader, mutate func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/user/profile", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := AuthGate(gateSecret, reader)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func liveReader(sessionID, userID string) *fakeSessionReader {
	return &fakeSessionReader{sessions: map[string]*model.Session{
		sessionID: {
			ID:        sessionID,
			UserID:    userID,
			Role:      model.RoleUser,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}
}

func TestAuthGateAcceptsCookieToken(t *testing.T) {
	token, _, err := utils.NewAccessToken(gateSecret, "u1", model.RoleUser, "s1", time.Minute)
	require.NoError(t, err)

	rec, c := runGate(t, liveReader("s1", "u1"), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", c.Get(ContextUserID))
	assert.Equal(t, model.RoleUser, c.Get(ContextRole))
	assert.Equal(t, "s1", c.Get(ContextSessionID))
}

func TestAuthGateAcceptsBearerFallback(t *testing.T) {
	token, _, err := utils.NewAccessToken(gateSecret, "u1", model.RoleUser, "s1", time.Minute)
	require.NoError(t, err)

	rec, _ := runGate(t, liveReader("s1", "u1"), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthGateRejectsMissingCredential(t *testing.T) {
	rec, _ := runGate(t, liveReader("s1", "u1"), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthGateRejectsExpiredToken(t *testing.T) {
	token, _, err := utils.NewAccessToken(gateSecret, "u1", model.RoleUser, "s1", -time.Minute)
	require.NoError(t, err)

	rec, _ := runGate(t, liveReader("s1", "u1"), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestAuthGateRejectsValidTokenWithDeadSession(t *testing.T) {
	token, _, err := utils.NewAccessToken(gateSecret, "u1", model.RoleUser, "s1", time.Minute)
	require.NoError(t, err)
	withCookie := func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	}

	t.Run("session deleted", func(t *testing.T) {
		rec, _ := runGate(t, &fakeSessionReader{sessions: map[string]*model.Session{}}, withCookie)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Session not found")
		assertCookiesCleared(t, rec)
	})

	t.Run("session row expired", func(t *testing.T) {
		reader := liveReader("s1", "u1")
		reader.sessions["s1"].ExpiresAt = time.Now().Add(-time.Minute)

		rec, _ := runGate(t, reader, withCookie)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assertCookiesCleared(t, rec)
	})
}

func TestAuthGateStoreFailureIsUnavailable(t *testing.T) {
	token, _, err := utils.NewAccessToken(gateSecret, "u1", model.RoleUser, "s1", time.Minute)
	require.NoError(t, err)

	rec, _ := runGate(t, &fakeSessionReader{err: assert.AnError}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// Same envelope as every other middleware response.
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Meta    struct {
			Timestamp string `json:"timestamp"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Service unavailable", resp.Message)
	assert.NotEmpty(t, resp.Meta.Timestamp)
}

// assertCookiesCleared checks both credential cookies were expired on the
// response.
func assertCookiesCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	cleared := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			cleared[ck.Name] = true
		}
	}
	assert.True(t, cleared[AccessCookieName])
	assert.True(t, cleared[RefreshCookieName])
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set(ContextRole, role)
		}
		require.NoError(t, h(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, run(model.RoleUser).Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
}

func TestSetAuthCookies(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil), rec)

	SetAuthCookies(c, "acc", "ref", 15*time.Minute, 7*24*time.Hour, false)

	byName := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		byName[ck.Name] = ck
	}

	access := byName[AccessCookieName]
	require.NotNil(t, access)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	refresh := byName[RefreshCookieName]
	require.NotNil(t, refresh)
	assert.Equal(t, RefreshCookiePath, refresh.Path, "refresh cookie only travels to the refresh endpoint")
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestSetAuthCookiesSkipsEmptyRefresh(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/auth/refresh", nil), rec)

	SetAuthCookies(c, "acc", "", time.Minute, time.Hour, false)

	for _, ck := range rec.Result().Cookies() {
		assert.NotEqual(t, RefreshCookieName, ck.Name, "no rotation means the refresh cookie is untouched")
	}
}
