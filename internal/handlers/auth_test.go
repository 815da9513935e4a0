package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/models"
)

func setupUserStore(t *testing.T, docs ...models.User) *fakeUserRepo {
	t.Helper()
	rp := &fakeUserRepo{docs: docs}
	userStore = rp
	t.Cleanup(func() { userStore = nil })
	return rp
}

func TestForgotPassword_NoMailerWritesNoResetToken(t *testing.T) {
	setupTest(t)
	rp := setupUserStore(t, models.User{ID: primitive.NewObjectID(), Email: "student@example.com"})

	req := httptest.NewRequest("POST", "/api/auth/forgot-password",
		strings.NewReader(`{"email":"student@example.com"}`))
	rr := httptest.NewRecorder()
	ForgotPassword(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rp.docs[0].ResetPasswordToken, "no live reset token may be left behind when the email cannot be sent")
	assert.True(t, rp.docs[0].ResetPasswordExpires.IsZero())
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	setupTest(t)
	setupUserStore(t)

	req := httptest.NewRequest("POST", "/api/auth/forgot-password",
		strings.NewReader(`{"email":"nobody@example.com"}`))
	rr := httptest.NewRecorder()
	ForgotPassword(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetProfile_ReturnsCurrentUser(t *testing.T) {
	setupTest(t)
	owner := primitive.NewObjectID()
	setupUserStore(t, models.User{ID: owner, Name: "A Student", Email: "student@example.com"})

	req := authedRequest(t, owner, "GET", "/api/user/profile", nil)
	rr := httptest.NewRecorder()
	GetProfile(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A Student")
	assert.NotContains(t, rr.Body.String(), `"password"`)
}
