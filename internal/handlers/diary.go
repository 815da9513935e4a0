package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/database"
	"github.com/Subodhrana390/tracker-app/internal/models"
	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/pkg/formdata"
)

// diaryResource keys entries on (owner, day): resubmitting a day overwrites
// its fields, and attachments are replaced only when a new file is supplied.
func diaryResource() resource[models.Diary] {
	return diaryResourceWith(repo.New[models.Diary](database.DB, "diaries"))
}

func diaryResourceWith(rp Repository[models.Diary]) resource[models.Diary] {
	return resource[models.Diary]{
		name: "Diary entry",
		repo: rp,
		files: []fileField[models.Diary]{
			{
				name:    "media",
				folder:  "tracker/media",
				bsonKey: "media",
				current: func(d *models.Diary) models.Attachment { return d.Media },
			},
			{
				name:    "report",
				folder:  "tracker/reports",
				bsonKey: "reportPdf",
				current: func(d *models.Diary) models.Attachment { return d.ReportPdf },
			},
		},
		key: func(owner primitive.ObjectID, _ *http.Request, f *formdata.Form) (bson.M, error) {
			day, err := strconv.Atoi(f.Value("day"))
			if err != nil {
				return nil, errors.New("Invalid day number")
			}
			return bson.M{"userId": owner, "day": day}, nil
		},
		validate: func(f *formdata.Form, _ *models.Diary) error {
			if f.Value("title") == "" {
				return errors.New("Title is required")
			}
			return nil
		},
		fields: func(f *formdata.Form) bson.M {
			return bson.M{
				"title":       f.Value("title"),
				"description": f.Value("description"),
				"mood":        f.Value("mood"),
			}
		},
		sort: bson.D{{Key: "day", Value: 1}},
	}
}

// GetDiaries lists the current user's entries, day ascending.
func GetDiaries(w http.ResponseWriter, r *http.Request) {
	diaryResource().list(w, r)
}

// UpsertDiary creates or overwrites the entry for the submitted day.
func UpsertDiary(w http.ResponseWriter, r *http.Request) {
	diaryResource().upsert(w, r)
}

// GetDiaryByDay returns the single entry for one day.
func GetDiaryByDay(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Day must be a number")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	entry, err := diaryResource().repo.FindOne(ctx, bson.M{"userId": owner, "day": day})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Diary entry not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch diary entry")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}
