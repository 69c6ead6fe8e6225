package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

type UploadService struct {
	issuer ports.UploadURLIssuer
}

func NewUploadService(issuer ports.UploadURLIssuer) *UploadService {
	return &UploadService{issuer: issuer}
}

// IssueUploadURL presigns an upload for one gift image owned by ownerID.
func (s *UploadService) IssueUploadURL(ctx context.Context, ownerID, fileExtension string) (*domain.UploadURL, error) {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fileExtension), "."))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return nil, domain.ErrInvalidFileExtension
	}

	key := fmt.Sprintf("gifts/%s/%s.%s", ownerID, uuid.NewString(), ext)
	upload, err := s.issuer.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailed, err)
	}
	return upload, nil
}
