package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// UploadService stores base64 image blobs in Cloudinary
type UploadService struct {
	cld *cloudinary.Cloudinary
}

func NewUploadService(cloudName, apiKey, apiSecret string) (*UploadService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &UploadService{cld: cld}, nil
}

// UploadBase64 uploads a base64 data URI (or a remote URL) and returns the
// secure URL of the stored image
func (s *UploadService) UploadBase64(ctx context.Context, data string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return result.SecureURL, nil
}

// Destroy removes a previously uploaded image given its secure URL
func (s *UploadService) Destroy(ctx context.Context, imageURL string) error {
	publicID := publicIDFromURL(imageURL)
	if publicID == "" {
		return nil
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// publicIDFromURL extracts the public ID from a Cloudinary delivery URL: the
// last path segment without its extension
func publicIDFromURL(imageURL string) string {
	idx := strings.LastIndex(imageURL, "/")
	if idx == -1 {
		return ""
	}
	name := imageURL[idx+1:]
	if dot := strings.LastIndex(name, "."); dot != -1 {
		name = name[:dot]
	}
	return name
}
