package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subodhrana390/tracker-app/internal/database"
	"github.com/Subodhrana390/tracker-app/internal/models"
	"github.com/Subodhrana390/tracker-app/internal/repo"
	"github.com/Subodhrana390/tracker-app/pkg/formdata"
)

func projectFiles() []fileField[models.Project] {
	return []fileField[models.Project]{
		{
			name:    "projectReport",
			folder:  "tracker/reports",
			bsonKey: "report",
			pdfOnly: true,
			current: func(p *models.Project) models.Attachment { return p.Report },
		},
	}
}

func projectFields(f *formdata.Form) bson.M {
	return bson.M{
		"title":       f.Value("title"),
		"description": f.Value("description"),
		"link":        f.Value("link"),
	}
}

// createProjectResource inserts a new project; the report PDF is required.
func createProjectResource() resource[models.Project] {
	return createProjectResourceWith(repo.New[models.Project](database.DB, "projects"))
}

func createProjectResourceWith(rp Repository[models.Project]) resource[models.Project] {
	return resource[models.Project]{
		name:  "Project",
		repo:  rp,
		files: projectFiles(),
		key: func(_ primitive.ObjectID, _ *http.Request, _ *formdata.Form) (bson.M, error) {
			return nil, nil // always a new document
		},
		validate: func(f *formdata.Form, _ *models.Project) error {
			if f.Value("title") == "" || f.Value("description") == "" {
				return errors.New("Title and description are required")
			}
			if f.File("projectReport") == nil {
				return errors.New("A PDF project report is required for new project")
			}
			return nil
		},
		fields: projectFields,
		sort:   bson.D{{Key: "createdAt", Value: -1}},
	}
}

// updateProjectResource updates an existing project by ?id=, scoped to its
// owner; a new report file is optional and replaces the stored one.
func updateProjectResource() resource[models.Project] {
	return updateProjectResourceWith(repo.New[models.Project](database.DB, "projects"))
}

func updateProjectResourceWith(rp Repository[models.Project]) resource[models.Project] {
	return resource[models.Project]{
		name:      "Project",
		repo:      rp,
		files:     projectFiles(),
		mustExist: true,
		key: func(owner primitive.ObjectID, r *http.Request, _ *formdata.Form) (bson.M, error) {
			idStr := r.URL.Query().Get("id")
			if idStr == "" {
				return nil, errors.New("Project ID is required")
			}
			id, err := primitive.ObjectIDFromHex(idStr)
			if err != nil {
				return nil, errors.New("Invalid project ID")
			}
			return bson.M{"_id": id, "userId": owner}, nil
		},
		validate: func(f *formdata.Form, _ *models.Project) error {
			if f.Value("title") == "" || f.Value("description") == "" {
				return errors.New("Title and description are required")
			}
			return nil
		},
		fields: projectFields,
		sort:   bson.D{{Key: "createdAt", Value: -1}},
	}
}

// GetProjects lists the current user's projects, newest first.
func GetProjects(w http.ResponseWriter, r *http.Request) {
	createProjectResource().list(w, r)
}

// CreateProject creates a project; a PDF report is mandatory.
func CreateProject(w http.ResponseWriter, r *http.Request) {
	createProjectResource().upsert(w, r)
}

// UpdateProject updates a project by id, replacing the report when a new
// PDF is uploaded.
func UpdateProject(w http.ResponseWriter, r *http.Request) {
	updateProjectResource().upsert(w, r)
}

// DeleteProject removes a project and requests deletion of its report file.
func DeleteProject(w http.ResponseWriter, r *http.Request) {
	createProjectResource().delete(w, r)
}
