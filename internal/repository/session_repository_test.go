package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-account-service/internal/model"
)

func newSessionMock(t *testing.T) (sqlmock.Sqlmock, *SessionRepo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return mock, NewSessionRepo(db)
}

func TestSessionRepoGetByIDReturnsExpiredRows(t *testing.T) {
	mock, repo := newSessionMock(t)
	past := time.Now().Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id=?")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "role", "user_agent", "created_at", "updated_at", "expires_at",
		}).AddRow("s1", "u1", model.RoleUser, "ua", past, past, past))

	s, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err, "liveness is decided by the caller, not the query")
	assert.False(t, s.Live(time.Now()))
}

func TestSessionRepoGetByIDNotFound(t *testing.T) {
	mock, repo := newSessionMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id=?")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepoDeleteNoRows(t *testing.T) {
	mock, repo := newSessionMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id=?")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "ghost"), ErrNotFound)
}

func TestSessionRepoDeleteByUserExcept(t *testing.T) {
	mock, repo := newSessionMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id=? AND id<>?")).
		WithArgs("u1", "keep").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByUserExcept(context.Background(), "u1", "keep")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSessionRepoDeleteByUsersBuildsInClause(t *testing.T) {
	mock, repo := newSessionMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id IN (?,?,?)")).
		WithArgs("u1", "u2", "u3").
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.DeleteByUsers(context.Background(), []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = repo.DeleteByUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionRepoExtend(t *testing.T) {
	mock, repo := newSessionMock(t)
	exp := time.Now().Add(7 * 24 * time.Hour)
	upd := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET expires_at=?, updated_at=? WHERE id=?")).
		WithArgs(exp, upd, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Extend(context.Background(), "s1", exp, upd))
}
