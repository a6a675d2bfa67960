package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-account-service/internal/apperr"
	"github.com/iliyamo/auth-account-service/internal/model"
)

func newUserFixture() (*UserService, *fakeUsers, *fakeSessions, *capturingAuditor) {
	users := newFakeUsers()
	sessions := newFakeSessions()
	audit := &capturingAuditor{}
	return NewUserService(users, sessions, audit), users, sessions, audit
}

func TestUserProfileNotFound(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	_, err := svc.Profile(context.Background(), "ghost")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}

func TestUserUpdateNameSanitizes(t *testing.T) {
	svc, users, _, audit := newUserFixture()
	require.NoError(t, users.Create(context.Background(), &model.User{ID: "u1", Email: "a@example.com"}))

	u, err := svc.UpdateName(context.Background(), "u1", "  Alice  ", RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	last, ok := audit.last()
	require.True(t, ok)
	assert.Equal(t, model.ActionUserUpdate, last.Action)

	_, err = svc.UpdateName(context.Background(), "u1", "   ", RequestContext{})
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestRevokeOtherSessionsKeepsCurrent(t *testing.T) {
	svc, _, sessions, audit := newUserFixture()
	now := time.Now()
	for _, id := range []string{"s1", "s2", "s3"} {
		sessions.byID[id] = &model.Session{ID: id, UserID: "u1", ExpiresAt: now.Add(time.Hour)}
	}
	sessions.byID["other"] = &model.Session{ID: "other", UserID: "u2", ExpiresAt: now.Add(time.Hour)}

	n, err := svc.RevokeOtherSessions(context.Background(), "u1", "s2", RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = sessions.GetByID(context.Background(), "s2")
	assert.NoError(t, err, "the calling session survives")
	_, err = sessions.GetByID(context.Background(), "other")
	assert.NoError(t, err, "other users are untouched")

	last, _ := audit.last()
	assert.Equal(t, model.ActionAllSessionsRevokeSuccess, last.Action)
	assert.Equal(t, "2", last.Metadata["revoked_count"])
}

func TestRevokeOtherSessionsAuditsFailure(t *testing.T) {
	svc, _, sessions, audit := newUserFixture()
	sessions.err = assert.AnError

	_, err := svc.RevokeOtherSessions(context.Background(), "u1", "s1", RequestContext{})
	require.Error(t, err)

	last, ok := audit.last()
	require.True(t, ok)
	assert.Equal(t, model.ActionAllSessionsRevokeFailed, last.Action)
	assert.Equal(t, model.AuditFailure, last.Status)
}
