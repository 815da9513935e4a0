package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/Subodhrana390/tracker-app/internal/models"
)

// AttachmentStore stores uploaded files in durable remote storage and can
// delete them again by their public id. Handlers depend on this interface so
// tests can swap in a fake.
type AttachmentStore interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (models.Attachment, error)
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

var _ AttachmentStore = (*CloudinaryService)(nil)

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

// Upload sends the file to Cloudinary and returns its durable URL plus the
// public id used to delete it later. A failed upload returns a zero
// Attachment; callers must not persist anything from it.
func (s *CloudinaryService) Upload(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (models.Attachment, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	base := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     fmt.Sprintf("%s-%s", base, uuid.NewString()),
		ResourceType: "auto", // image, video or raw, detected from content
	})
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return models.Attachment{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
	}, nil
}

// Destroy deletes a previously uploaded file. Callers replacing or removing
// an attachment treat failures as best-effort: an orphaned remote file is
// acceptable, a lost entity update is not.
func (s *CloudinaryService) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	return nil
}
