package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Subodhrana390/tracker-app/internal/database"
	"github.com/Subodhrana390/tracker-app/internal/models"
	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/internal/services"
	"github.com/Subodhrana390/tracker-app/pkg/formdata"
	"github.com/Subodhrana390/tracker-app/pkg/utils"
)

// userStore overrides the Mongo-backed user collection when set; tests
// inject an in-memory double here.
var userStore Repository[models.User]

func users() Repository[models.User] {
	if userStore != nil {
		return userStore
	}
	return repo.New[models.User](database.DB, "users")
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Register creates an account from a multipart form: name, email, password,
// crn, urn and an optional profilePic file.
func Register(w http.ResponseWriter, r *http.Request) {
	form, err := formdata.Parse(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	name := form.Value("name")
	email := form.Value("email")
	password := form.Value("password")
	crn := form.Value("crn")
	urn := form.Value("urn")

	if name == "" || email == "" || password == "" || crn == "" || urn == "" {
		respondError(w, http.StatusBadRequest, "Name, email, password, crn and urn are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	_, err = users().FindOne(ctx, bson.M{"email": email})
	if err == nil {
		respondError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if !errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// The optional profile picture is uploaded before the account is
	// created; a failed upload aborts registration.
	var profilePic models.Attachment
	if fh := form.File("profilePic"); fh != nil {
		if attachmentStore == nil {
			respondError(w, http.StatusInternalServerError, "File upload service not available")
			return
		}
		profilePic, err = attachmentStore.Upload(r.Context(), fh, "tracker")
		if err != nil {
			log.Printf("ERROR: profile picture upload failed: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to upload profile picture")
			return
		}
	}

	user, err := users().Insert(ctx, bson.M{
		"name":       name,
		"email":      email,
		"password":   hashedPassword,
		"crn":        crn,
		"urn":        urn,
		"profilePic": profilePic,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User created successfully",
		User:    user,
	})
}

// Login verifies credentials, signs a session token and sets it as an
// http-only cookie.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := users().FindOne(ctx, bson.M{"email": req.Email})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !valid {
		respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := services.CreateSessionToken(user.ID.Hex(), user.Email, cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	services.SetSessionCookie(w, token, cfg.IsProduction())
	respondJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		User:    user,
	})
}

// Logout clears the session cookie.
func Logout(w http.ResponseWriter, r *http.Request) {
	if services.SessionTokenFromRequest(r) == "" {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	services.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword stores a one-hour reset token on the account and emails a
// reset link.
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := users().FindOne(ctx, bson.M{"email": req.Email})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Without a mailer the link could never reach the user, so bail before
	// a live reset token is written to the account.
	if mailer == nil {
		respondError(w, http.StatusInternalServerError, "Email service not available")
		return
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate reset token")
		return
	}
	resetToken := hex.EncodeToString(tokenBytes)

	_, err = users().Update(ctx, bson.M{"_id": user.ID}, bson.M{
		"resetPasswordToken":   resetToken,
		"resetPasswordExpires": time.Now().Add(time.Hour),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save reset token")
		return
	}

	resetURL := cfg.BaseURL + "/auth/reset-password?token=" + resetToken
	if err := mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		log.Printf("ERROR: failed to send reset email: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to send reset email")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password reset email sent",
	})
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword sets a new password for a valid, unexpired reset token.
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Token and password are required")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := users().FindOne(ctx, bson.M{
		"resetPasswordToken":   req.Token,
		"resetPasswordExpires": bson.M{"$gt": time.Now()},
	})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	_, err = users().Update(ctx, bson.M{"_id": user.ID}, bson.M{
		"password":             hashedPassword,
		"resetPasswordToken":   "",
		"resetPasswordExpires": time.Time{},
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password has been reset",
	})
}
