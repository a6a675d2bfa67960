package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/auth-account-service/internal/config"
)

func TestChangePasswordValidation(t *testing.T) {
	h := NewUserHandler(config.Config{Env: "test"}, nil, nil)

	t.Run("confirmation mismatch", func(t *testing.T) {
		rec, resp := postJSON(t, "/v1/user/changepassword",
			`{"oldPassword":"old","newPassword":"newpass1","confirmNewPassword":"newpass2"}`,
			h.ChangePassword)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation failed", resp.Message)
		assert.Equal(t, "confirmNewPassword", resp.Errors[0].Field)
	})

	t.Run("new password too short", func(t *testing.T) {
		rec, resp := postJSON(t, "/v1/user/changepassword",
			`{"oldPassword":"old","newPassword":"tiny","confirmNewPassword":"tiny"}`,
			h.ChangePassword)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "newPassword", resp.Errors[0].Field)
	})
}

func TestUpdateProfileValidation(t *testing.T) {
	h := NewUserHandler(config.Config{Env: "test"}, nil, nil)

	rec, resp := postJSON(t, "/v1/user/update", `{"name":"   "}`, h.Update)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name", resp.Errors[0].Field)
}
