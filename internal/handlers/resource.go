package handlers

import (
	"context"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/models"
	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/pkg/formdata"
)

// Repository is what the resource engine needs from a storage backend.
// *repo.Repo[T] implements it; tests use an in-memory double.
type Repository[T any] interface {
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	Find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error)
	Upsert(ctx context.Context, filter bson.M, set bson.M) (*T, error)
	Update(ctx context.Context, filter bson.M, set bson.M) (*T, error)
	Insert(ctx context.Context, set bson.M) (*T, error)
	Delete(ctx context.Context, filter bson.M) (*T, error)
}

// fileField is one optional attachment input on a resource form.
type fileField[T any] struct {
	name    string // multipart field name
	folder  string // Cloudinary destination folder
	bsonKey string // document field holding the attachment
	pdfOnly bool
	current func(*T) models.Attachment // stored attachment this field supersedes
}

// resource wires one entity type into the shared handler flow. Each of the
// five resources differs only in its uniqueness key, validation, non-file
// fields and attachment fields; everything else — authenticate, parse,
// upload, persist, clean up superseded files, respond — runs here exactly
// once.
type resource[T any] struct {
	name  string
	repo  Repository[T]
	files []fileField[T]

	// key builds the uniqueness filter for an upsert. A nil filter means
	// "insert a new document". Errors are answered with 400.
	key func(owner primitive.ObjectID, r *http.Request, f *formdata.Form) (bson.M, error)

	// mustExist makes a missing match a 404 instead of an insert
	// (id-scoped updates).
	mustExist bool

	validate func(f *formdata.Form, existing *T) error
	fields   func(f *formdata.Form) bson.M
	sort     bson.D
}

func dbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// upsert is the shared create-or-update flow. Side effects are strictly
// ordered: nothing is uploaded before the token verifies, nothing is
// persisted before every upload in this request succeeded, and superseded
// attachments are destroyed only after the new reference is durably saved.
func (res resource[T]) upsert(w http.ResponseWriter, r *http.Request) {
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

	filter, err := res.key(owner, r, form)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	var existing *T
	if filter != nil {
		existing, err = res.repo.FindOne(ctx, filter)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if existing == nil && res.mustExist {
			respondError(w, http.StatusNotFound, res.name+" not found")
			return
		}
	}

	if res.validate != nil {
		if err := res.validate(form, existing); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Upload every newly supplied file before touching the database.
	uploaded := make(map[string]models.Attachment)
	for _, ff := range res.files {
		fh := form.File(ff.name)
		if fh == nil {
			continue
		}
		if ff.pdfOnly && !isPDF(fh) {
			respondError(w, http.StatusBadRequest, "A valid PDF file is required")
			return
		}
		if attachmentStore == nil {
			respondError(w, http.StatusInternalServerError, "File upload service not available")
			return
		}
		att, err := attachmentStore.Upload(r.Context(), fh, ff.folder)
		if err != nil {
			log.Printf("ERROR: %s upload failed: %v", res.name, err)
			respondError(w, http.StatusInternalServerError, "Failed to upload file")
			return
		}
		uploaded[ff.bsonKey] = att
	}

	set := res.fields(form)
	for key, att := range uploaded {
		set[key] = att
	}

	var saved *T
	switch {
	case filter == nil:
		set["userId"] = owner
		saved, err = res.repo.Insert(ctx, set)
	case res.mustExist:
		saved, err = res.repo.Update(ctx, filter, set)
		if errors.Is(err, repo.ErrNotFound) {
			respondError(w, http.StatusNotFound, res.name+" not found")
			return
		}
	default:
		// Attachment fields not resupplied in this request stay untouched:
		// only the keys in set are written.
		for k, v := range filter {
			set[k] = v
		}
		saved, err = res.repo.Upsert(ctx, filter, set)
	}
	if err != nil {
		log.Printf("ERROR: failed to save %s: %v", res.name, err)
		respondError(w, http.StatusInternalServerError, "Failed to save "+res.name)
		return
	}

	// The new references are durably saved; old files are now safe to drop.
	// Failures here are logged and swallowed.
	if existing != nil {
		for _, ff := range res.files {
			att, replaced := uploaded[ff.bsonKey]
			if !replaced {
				continue
			}
			old := ff.current(existing)
			if !old.IsZero() && old.PublicID != att.PublicID {
				discardAttachment(old)
			}
		}
	}

	status := http.StatusOK
	if existing == nil {
		status = http.StatusCreated
	}
	respondJSON(w, status, saved)
}

// list returns all of the owner's records, sorted per resource.
func (res resource[T]) list(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	docs, err := res.repo.Find(ctx, bson.M{"userId": owner}, res.sort)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch "+res.name)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// delete removes an owner-scoped record by ?id= and then requests deletion
// of its stored attachments.
func (res resource[T]) delete(w http.ResponseWriter, r *http.Request) {
	owner, err := authenticate(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		respondError(w, http.StatusBadRequest, res.name+" ID is required")
		return
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+res.name+" ID")
		return
	}

	ctx, cancel := dbCtx()
	defer cancel()

	doc, err := res.repo.Delete(ctx, bson.M{"_id": id, "userId": owner})
	if errors.Is(err, repo.ErrNotFound) {
		respondError(w, http.StatusNotFound, res.name+" not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete "+res.name)
		return
	}

	for _, ff := range res.files {
		discardAttachment(ff.current(doc))
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": res.name + " deleted successfully"})
}

// discardAttachment requests deletion of a stored file, best-effort.
func discardAttachment(att models.Attachment) {
	if att.IsZero() || attachmentStore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := attachmentStore.Destroy(ctx, att.PublicID); err != nil {
		log.Printf("WARN: failed to delete old attachment %s: %v", att.PublicID, err)
	}
}

func isPDF(fh *multipart.FileHeader) bool {
	return fh.Header.Get("Content-Type") == "application/pdf"
}
