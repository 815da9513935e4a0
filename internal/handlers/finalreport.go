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

// finalReportResource keys on the owner alone: each user has at most one
// final report and a resubmission replaces it in place.
func finalReportResource() resource[models.FinalReport] {
	return resource[models.FinalReport]{
		name: "Final report",
		repo: repo.New[models.FinalReport](database.DB, "finalreports"),
		files: []fileField[models.FinalReport]{
			{
				name:    "report",
				folder:  "tracker/final-reports",
				bsonKey: "report",
				current: func(fr *models.FinalReport) models.Attachment { return fr.Report },
			},
		},
		key: func(owner primitive.ObjectID, _ *http.Request, _ *formdata.Form) (bson.M, error) {
			return bson.M{"userId": owner}, nil
		},
		validate: func(f *formdata.Form, _ *models.FinalReport) error {
			if f.Value("title") == "" || f.File("report") == nil {
				return errors.New("Missing title or report file")
			}
			return nil
		},
		fields: func(f *formdata.Form) bson.M {
			return bson.M{
				"title":       f.Value("title"),
				"description": f.Value("description"),
				"submittedAt": time.Now(),
			}
		},
		sort: bson.D{{Key: "createdAt", Value: -1}},
	}
}

// GetFinalReports lists the current user's final report, newest first.
func GetFinalReports(w http.ResponseWriter, r *http.Request) {
	finalReportResource().list(w, r)
}

// SubmitFinalReport creates or replaces the user's final report.
func SubmitFinalReport(w http.ResponseWriter, r *http.Request) {
	finalReportResource().upsert(w, r)
}

// FinalReportStatus tells the client whether a report was submitted, with a
// small summary when it was.
func FinalReportStatus(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	report, err := finalReportResource().repo.FindOne(ctx, bson.M{"userId": owner})
	if errors.Is(err, repo.ErrNotFound) {
		respondJSON(w, http.StatusOK, map[string]interface{}{"submitted": false})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"submitted":   true,
		"title":       report.Title,
		"description": report.Description,
		"reportPath":  report.Report.URL,
		"submittedAt": report.SubmittedAt,
	})
}
