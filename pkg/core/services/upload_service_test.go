package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

type fakeIssuer struct {
	key         string
	contentType string
	err         error
}

func (f *fakeIssuer) PresignUpload(_ context.Context, key, contentType string) (*domain.UploadURL, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key, f.contentType = key, contentType
	return &domain.UploadURL{URL: "https://bucket/" + key + "?sig", ObjectURL: "https://bucket/" + key, ExpirySeconds: 600}, nil
}

func TestIssueUploadURL(t *testing.T) {
	issuer := &fakeIssuer{}
	s := NewUploadService(issuer)

	upload, err := s.IssueUploadURL(context.Background(), "user-1", ".JPG")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", issuer.contentType)
	assert.True(t, strings.HasPrefix(issuer.key, "gifts/user-1/"))
	assert.True(t, strings.HasSuffix(issuer.key, ".jpg"))
	assert.Equal(t, "https://bucket/"+issuer.key, upload.ObjectURL)

	_, err = s.IssueUploadURL(context.Background(), "user-1", "exe")
	assert.ErrorIs(t, err, domain.ErrInvalidFileExtension)
}

func TestIssueUploadURLStorageFailure(t *testing.T) {
	s := NewUploadService(&fakeIssuer{err: errors.New("no credentials")})

	_, err := s.IssueUploadURL(context.Background(), "user-1", "png")
	assert.ErrorIs(t, err, domain.ErrStorageFailed)
	assert.Contains(t, err.Error(), "no credentials")
}
