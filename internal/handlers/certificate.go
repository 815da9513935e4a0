package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/database"
	"github.com/Subodhrana390/tracker-app/internal/models"
	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/pkg/formdata"
)

const certificateCourse = "TR-102 Industrial Training"

// certificateResource keys on the owner: one certificate per user, a new
// upload overwrites the previous one.
func certificateResource() resource[models.Certificate] {
	return resource[models.Certificate]{
		name: "Certificate",
		repo: repo.New[models.Certificate](database.DB, "certificates"),
		files: []fileField[models.Certificate]{
			{
				name:    "certificate",
				folder:  "certificates",
				bsonKey: "file",
				current: func(c *models.Certificate) models.Attachment { return c.File },
			},
		},
		key: func(owner primitive.ObjectID, _ *http.Request, _ *formdata.Form) (bson.M, error) {
			return bson.M{"userId": owner}, nil
		},
		validate: func(f *formdata.Form, _ *models.Certificate) error {
			if f.File("certificate") == nil {
				return errors.New("No certificate file uploaded")
			}
			return nil
		},
		fields: func(_ *formdata.Form) bson.M {
			return bson.M{
				"course":         certificateCourse,
				"completionDate": time.Now(),
			}
		},
		sort: bson.D{{Key: "completionDate", Value: -1}},
	}
}

// GetCertificate returns the current user's certificate.
func GetCertificate(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	cert, err := certificateResource().repo.FindOne(ctx, bson.M{"userId": owner})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No certificate found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, cert)
}

// UploadCertificate stores the certificate file and upserts the record.
func UploadCertificate(w http.ResponseWriter, r *http.Request) {
	certificateResource().upsert(w, r)
}
