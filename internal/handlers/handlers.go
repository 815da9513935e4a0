package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/config"
	"github.com/Subodhrana390/tracker-app/internal/services"
)

// Process-wide handler dependencies, initialized once at startup.
var (
	cfg             *config.Config
	attachmentStore services.AttachmentStore
	mailer          *services.Mailer
)

// Init wires the loaded configuration into the handler package.
func Init(c *config.Config) {
	cfg = c
	if c.SendgridAPIKey != "" {
		mailer = services.NewMailer(c.SendgridAPIKey, c.EmailFrom)
	}
}

// InitCloudinaryService initializes the shared attachment store.
func InitCloudinaryService(c *config.Config) error {
	service, err := services.NewCloudinaryService(
		c.CloudinaryName,
		c.CloudinaryAPIKey,
		c.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	attachmentStore = service
	return nil
}

var errUnauthenticated = errors.New("invalid or missing token")

// authenticate verifies the session token and returns the owner identity.
// Every protected handler calls this before doing any other work.
func authenticate(r *http.Request) (primitive.ObjectID, error) {
	token := services.SessionTokenFromRequest(r)
	if token == "" {
		return primitive.NilObjectID, errUnauthenticated
	}
	userID, err := services.VerifySessionToken(token, cfg.JWTSecret)
	if err != nil {
		return primitive.NilObjectID, errUnauthenticated
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, errUnauthenticated
	}
	return oid, nil
}
