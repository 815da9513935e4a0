package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/config"
	"github.com/Subodhrana390/tracker-app/internal/models"
	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/internal/services"
)

const testSecret = "test-secret"

// fakeStore is an in-memory AttachmentStore recording uploads and deletion
// requests.
type fakeStore struct {
	uploads     int
	destroyed   []string
	failUpload  bool
	failDestroy bool
}

func (s *fakeStore) Upload(_ context.Context, fh *multipart.FileHeader, folder string) (models.Attachment, error) {
	if s.failUpload {
		return models.Attachment{}, errors.New("upload failed")
	}
	s.uploads++
	id := fmt.Sprintf("%s/upload-%d", folder, s.uploads)
	return models.Attachment{
		URL:      "https://files.example.com/" + id,
		PublicID: id,
	}, nil
}

func (s *fakeStore) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	if s.failDestroy {
		return errors.New("destroy failed")
	}
	return nil
}

func setupTest(t *testing.T) *fakeStore {
	t.Helper()
	oldCfg, oldStore := cfg, attachmentStore
	cfg = &config.Config{JWTSecret: testSecret}
	store := &fakeStore{}
	attachmentStore = store
	t.Cleanup(func() {
		cfg, attachmentStore = oldCfg, oldStore
	})
	return store
}

func matchesFilter(filter bson.M, id, userID primitive.ObjectID, day int) bool {
	for k, v := range filter {
		switch k {
		case "_id":
			if id != v.(primitive.ObjectID) {
				return false
			}
		case "userId":
			if userID != v.(primitive.ObjectID) {
				return false
			}
		case "day":
			if day != v.(int) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// fakeDiaryRepo implements Repository[models.Diary] in memory. Each method
// holds the mutex for its whole body, mirroring the atomicity of the real
// FindOneAndUpdate-based operations.
type fakeDiaryRepo struct {
	mu   sync.Mutex
	docs []models.Diary
}

func (r *fakeDiaryRepo) find(filter bson.M) int {
	for i, d := range r.docs {
		if matchesFilter(filter, d.ID, d.UserID, d.Day) {
			return i
		}
	}
	return -1
}

func applyDiarySet(d *models.Diary, set bson.M) {
	for k, v := range set {
		switch k {
		case "title":
			d.Title = v.(string)
		case "description":
			d.Description = v.(string)
		case "mood":
			d.Mood = v.(string)
		case "media":
			d.Media = v.(models.Attachment)
		case "reportPdf":
			d.ReportPdf = v.(models.Attachment)
		case "day":
			d.Day = v.(int)
		case "userId":
			d.UserID = v.(primitive.ObjectID)
		}
	}
}

func (r *fakeDiaryRepo) FindOne(_ context.Context, filter bson.M) (*models.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		d := r.docs[i]
		return &d, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeDiaryRepo) Find(_ context.Context, filter bson.M, _ bson.D) ([]models.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Diary, 0)
	for _, d := range r.docs {
		if matchesFilter(filter, d.ID, d.UserID, d.Day) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDiaryRepo) Upsert(_ context.Context, filter bson.M, set bson.M) (*models.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		applyDiarySet(&r.docs[i], set)
		d := r.docs[i]
		return &d, nil
	}
	d := models.Diary{ID: primitive.NewObjectID()}
	applyDiarySet(&d, filter)
	applyDiarySet(&d, set)
	r.docs = append(r.docs, d)
	return &d, nil
}

func (r *fakeDiaryRepo) Update(_ context.Context, filter bson.M, set bson.M) (*models.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		applyDiarySet(&r.docs[i], set)
		d := r.docs[i]
		return &d, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeDiaryRepo) Insert(_ context.Context, set bson.M) (*models.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := models.Diary{ID: primitive.NewObjectID()}
	applyDiarySet(&d, set)
	r.docs = append(r.docs, d)
	return &d, nil
}

func (r *fakeDiaryRepo) Delete(_ context.Context, filter bson.M) (*models.Diary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		d := r.docs[i]
		r.docs = append(r.docs[:i], r.docs[i+1:]...)
		return &d, nil
	}
	return nil, repo.ErrNotFound
}

// fakeProjectRepo implements Repository[models.Project] in memory.
type fakeProjectRepo struct {
	mu   sync.Mutex
	docs []models.Project
}

func (r *fakeProjectRepo) find(filter bson.M) int {
	for i, p := range r.docs {
		if matchesFilter(filter, p.ID, p.UserID, 0) {
			return i
		}
	}
	return -1
}

func applyProjectSet(p *models.Project, set bson.M) {
	for k, v := range set {
		switch k {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "link":
			p.Link = v.(string)
		case "report":
			p.Report = v.(models.Attachment)
		case "userId":
			p.UserID = v.(primitive.ObjectID)
		case "_id":
			p.ID = v.(primitive.ObjectID)
		}
	}
}

func (r *fakeProjectRepo) FindOne(_ context.Context, filter bson.M) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		p := r.docs[i]
		return &p, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeProjectRepo) Find(_ context.Context, filter bson.M, _ bson.D) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Project, 0)
	for _, p := range r.docs {
		if matchesFilter(filter, p.ID, p.UserID, 0) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) Upsert(_ context.Context, filter bson.M, set bson.M) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		applyProjectSet(&r.docs[i], set)
		p := r.docs[i]
		return &p, nil
	}
	p := models.Project{ID: primitive.NewObjectID()}
	applyProjectSet(&p, set)
	r.docs = append(r.docs, p)
	return &p, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, filter bson.M, set bson.M) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		applyProjectSet(&r.docs[i], set)
		p := r.docs[i]
		return &p, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeProjectRepo) Insert(_ context.Context, set bson.M) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := models.Project{ID: primitive.NewObjectID()}
	applyProjectSet(&p, set)
	r.docs = append(r.docs, p)
	return &p, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, filter bson.M) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		p := r.docs[i]
		r.docs = append(r.docs[:i], r.docs[i+1:]...)
		return &p, nil
	}
	return nil, repo.ErrNotFound
}

// fakeUserRepo implements Repository[models.User] in memory for the auth
// and profile handlers.
type fakeUserRepo struct {
	mu   sync.Mutex
	docs []models.User
}

func matchesUserFilter(filter bson.M, u models.User) bool {
	for k, v := range filter {
		switch k {
		case "_id":
			if u.ID != v.(primitive.ObjectID) {
				return false
			}
		case "email":
			if u.Email != v.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func applyUserSet(u *models.User, set bson.M) {
	for k, v := range set {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "password":
			u.Password = v.(string)
		case "crn":
			u.CRN = v.(string)
		case "urn":
			u.URN = v.(string)
		case "profilePic":
			u.ProfilePic = v.(models.Attachment)
		case "resetPasswordToken":
			u.ResetPasswordToken = v.(string)
		case "resetPasswordExpires":
			u.ResetPasswordExpires = v.(time.Time)
		}
	}
}

func (r *fakeUserRepo) find(filter bson.M) int {
	for i, u := range r.docs {
		if matchesUserFilter(filter, u) {
			return i
		}
	}
	return -1
}

func (r *fakeUserRepo) FindOne(_ context.Context, filter bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		u := r.docs[i]
		return &u, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Find(_ context.Context, filter bson.M, _ bson.D) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range r.docs {
		if matchesUserFilter(filter, u) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, filter bson.M, set bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		applyUserSet(&r.docs[i], set)
		u := r.docs[i]
		return &u, nil
	}
	u := models.User{ID: primitive.NewObjectID()}
	applyUserSet(&u, set)
	r.docs = append(r.docs, u)
	return &u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, filter bson.M, set bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		applyUserSet(&r.docs[i], set)
		u := r.docs[i]
		return &u, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Insert(_ context.Context, set bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := models.User{ID: primitive.NewObjectID()}
	applyUserSet(&u, set)
	r.docs = append(r.docs, u)
	return &u, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, filter bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(filter); i >= 0 {
		u := r.docs[i]
		r.docs = append(r.docs[:i], r.docs[i+1:]...)
		return &u, nil
	}
	return nil, repo.ErrNotFound
}

// testFile is one file part of a multipart request body.
type testFile struct {
	field       string
	filename    string
	contentType string
}

func multipartBody(t *testing.T, fields map[string]string, files ...testFile) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func authedRequest(t *testing.T, owner primitive.ObjectID, method, target string, fields map[string]string, files ...testFile) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	token, err := services.CreateSessionToken(owner.Hex(), "student@example.com", testSecret)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: services.SessionCookieName, Value: token})
	return req
}
