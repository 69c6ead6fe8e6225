package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

// BundleRepository defines storage operations for bundles, gifts and images.
// Get* methods return nil, nil when the row does not exist.
type BundleRepository interface {
	// CreateBundle stores the bundle, its gifts and their images atomically.
	CreateBundle(ctx context.Context, bundle *domain.Bundle) error
	GetBundle(ctx context.Context, id string) (*domain.Bundle, error)
	GetBundleByLink(ctx context.Context, link string) (*domain.Bundle, error)
	// UpdateBundleInfo writes name and design type only if the stored bundle is still DRAFT.
	UpdateBundleInfo(ctx context.Context, bundle *domain.Bundle) error
	MarkBundleRead(ctx context.Context, id string) error
	// PublishBundle writes the publish fields only if the stored bundle is still DRAFT.
	PublishBundle(ctx context.Context, bundle *domain.Bundle) error
	CountBundlesCreatedBetween(ctx context.Context, ownerID string, from, to time.Time) (int64, error)
	ListBundleSummaries(ctx context.Context, ownerID string, limit, offset int) ([]domain.BundleSummary, error)
	CountBundles(ctx context.Context, ownerID string) (int64, error)
	Dump(ctx context.Context) ([]domain.Bundle, error) // For export

	ListGifts(ctx context.Context, bundleID string) ([]domain.Gift, error)
	GetGift(ctx context.Context, id string) (*domain.Gift, error)
	CountGifts(ctx context.Context, bundleID string) (int64, error)
	ListImages(ctx context.Context, bundleID string) ([]domain.GiftImage, error)
	// ApplyGiftDiff writes deletes, updates, inserts and image replacement in one transaction.
	// It fails with domain.ErrInvalidBundleStatus if the stored bundle is no longer DRAFT.
	ApplyGiftDiff(ctx context.Context, bundle *domain.Bundle, diff *domain.GiftDiff) error
	// CompleteBundle persists the COMPLETED status and stamps each gift with its response.
	// It fails with domain.ErrInvalidBundleStatusForComplete if the stored bundle is not PUBLISHED.
	CompleteBundle(ctx context.Context, bundle *domain.Bundle) error
}

// ResponseRepository defines storage operations for recipient responses.
type ResponseRepository interface {
	// CreateResponse returns domain.ErrAlreadyAnswered when the gift already has a response.
	CreateResponse(ctx context.Context, response *domain.Response) error
	GetResponseByGift(ctx context.Context, giftID string) (*domain.Response, error)
	ListResponses(ctx context.Context, bundleID string) ([]domain.Response, error)
	CountRespondedGifts(ctx context.Context, bundleID string) (int64, error)
}

// UserRepository defines storage operations for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByKakaoID(ctx context.Context, kakaoID int64) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
}

// UploadURLIssuer signs object-storage upload URLs.
type UploadURLIssuer interface {
	PresignUpload(ctx context.Context, key, contentType string) (*domain.UploadURL, error)
}

// OAuthProvider runs the Kakao authorization-code flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*domain.KakaoProfile, error)
}

// BundleService defines the bundle lifecycle operations.
type BundleService interface {
	Create(ctx context.Context, ownerID, name string, designType domain.DesignType, edits []domain.GiftEdit) (*domain.Bundle, error)
	Update(ctx context.Context, bundleID, requesterID string, edits []domain.GiftEdit) (*domain.Bundle, error)
	UpdateInfo(ctx context.Context, bundleID, requesterID, name string, designType domain.DesignType) (*domain.Bundle, error)
	Publish(ctx context.Context, bundleID, requesterID string, character domain.DeliveryCharacterType) (*domain.Bundle, error)
	Complete(ctx context.Context, bundleID string) (*domain.Bundle, error)
	MarkRead(ctx context.Context, bundleID string) error
	Get(ctx context.Context, bundleID, requesterID string) (*domain.Bundle, error)
	List(ctx context.Context, ownerID string, page, limit int) ([]domain.BundleSummary, int64, error)
}

// ResponseService defines recipient-facing operations.
type ResponseService interface {
	ResolveLink(ctx context.Context, link string) (*domain.Bundle, error)
	LoadForRecipient(ctx context.Context, link string) (*domain.Bundle, error)
	SubmitResponse(ctx context.Context, giftID, bundleID string, tag domain.ResponseTag, message *string) (*domain.Response, error)
	CheckCompletion(ctx context.Context, bundleID string) (bool, error)
}

// UserService is the authenticated-principal provider.
type UserService interface {
	Authenticate(ctx context.Context, userID string) (*domain.User, error)
	LoginWithKakao(ctx context.Context, profile *domain.KakaoProfile) (*domain.User, error)
	Withdraw(ctx context.Context, userID string) error
}

// UploadService issues upload URLs for gift images.
type UploadService interface {
	IssueUploadURL(ctx context.Context, ownerID, fileExtension string) (*domain.UploadURL, error)
}
