package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/pkg/formdata"
)

// GetProfile returns the current user without the credential hash.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := users().FindOne(ctx, bson.M{"_id": owner})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	CRN   string `json:"crn"`
	URN   string `json:"urn"`
	Email string `json:"email"`
}

// UpdateProfile updates the editable profile fields.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.CRN == "" || req.URN == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Missing or invalid required fields")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := users().Update(ctx, bson.M{"_id": owner}, bson.M{
		"name":  req.Name,
		"crn":   req.CRN,
		"urn":   req.URN,
		"email": req.Email,
	})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UploadProfilePicture stores a new profile picture, saves its reference and
// then requests deletion of the replaced one.
func UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	form, err := formdata.Parse(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	fh := form.File("profilePic")
	if fh == nil {
		respondError(w, http.StatusBadRequest, "No profile picture provided")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	user, err := users().FindOne(ctx, bson.M{"_id": owner})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	oldPic := user.ProfilePic

	if attachmentStore == nil {
		respondError(w, http.StatusInternalServerError, "File upload service not available")
		return
	}
	pic, err := attachmentStore.Upload(r.Context(), fh, "tracker/profile")
	if err != nil {
		log.Printf("ERROR: profile picture upload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to upload profile picture")
		return
	}

	user, err = users().Update(ctx, bson.M{"_id": owner}, bson.M{"profilePic": pic})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save profile picture")
		return
	}

	// New reference saved; the old file is free to go.
	if !oldPic.IsZero() && oldPic.PublicID != pic.PublicID {
		discardAttachment(oldPic)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"url":  pic.URL,
		"user": user,
	})
}
