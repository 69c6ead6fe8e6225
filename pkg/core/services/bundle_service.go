package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/metrics"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

const (
	linkLength       = 12
	linkMaxAttempts  = 5
	defaultPageLimit = 10
)

type BundleService struct {
	repo       ports.BundleRepository
	logger     logging.Logger
	dailyLimit int
	location   *time.Location
	now        func() time.Time
}

// BundleOptions tunes the daily creation quota.
type BundleOptions struct {
	DailyLimit int
	Location   *time.Location
}

func NewBundleService(repo ports.BundleRepository, logger logging.Logger, opts BundleOptions) *BundleService {
	if opts.DailyLimit <= 0 {
		opts.DailyLimit = config.DefaultDailyBundleLimit
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &BundleService{
		repo:       repo,
		logger:     logger.Named("bundles"),
		dailyLimit: opts.DailyLimit,
		location:   opts.Location,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *BundleService) Create(ctx context.Context, ownerID, name string, designType domain.DesignType, edits []domain.GiftEdit) (*domain.Bundle, error) {
	name, err := domain.NormalizeBundleName(name)
	if err != nil {
		return nil, err
	}
	if !designType.Valid() {
		return nil, domain.ErrInvalidDesignType
	}
	if len(edits) < domain.MinGiftsPerBundle {
		return nil, domain.ErrBundleMinimumGiftsRequired
	}

	now := s.now()
	bundleID := uuid.NewString()

	// With no stored gifts every edit is an insert; edits carrying an ID fail as unknown gifts.
	diff, err := Reconcile(bundleID, nil, edits, now)
	if err != nil {
		return nil, err
	}

	from, to := dayBounds(now, s.location)
	count, err := s.repo.CountBundlesCreatedBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count today's bundles: %w", err)
	}
	if count >= int64(s.dailyLimit) {
		return nil, domain.ErrBundleDailyLimitExceeded
	}

	bundle := &domain.Bundle{
		ID:         bundleID,
		OwnerID:    ownerID,
		Name:       name,
		DesignType: designType,
		Status:     domain.BundleStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
		Gifts:      diff.Gifts,
	}

	if err := s.repo.CreateBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("create bundle: %w", err)
	}

	metrics.BundlesCreated.Inc()
	s.logger.Info("bundle created", map[string]interface{}{
		"bundle_id": bundle.ID,
		"owner_id":  ownerID,
		"gifts":     len(bundle.Gifts),
	})
	return bundle, nil
}

func (s *BundleService) Update(ctx context.Context, bundleID, requesterID string, edits []domain.GiftEdit) (*domain.Bundle, error) {
	bundle, err := s.loadOwned(ctx, bundleID, requesterID)
	if err != nil {
		return nil, err
	}
	if bundle.Status != domain.BundleStatusDraft {
		return nil, domain.ErrInvalidBundleStatus
	}

	existing, err := s.repo.ListGifts(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}

	now := s.now()
	diff, err := Reconcile(bundleID, existing, edits, now)
	if err != nil {
		return nil, err
	}
	// The minimum applies to what the bundle would hold, not to the edit count.
	if len(diff.Gifts) < domain.MinGiftsPerBundle {
		return nil, domain.ErrBundleMinimumGiftsRequired
	}

	bundle.UpdatedAt = now
	if err := s.repo.ApplyGiftDiff(ctx, bundle, diff); err != nil {
		return nil, fmt.Errorf("apply gift diff: %w", err)
	}
	bundle.Gifts = diff.Gifts

	s.logger.Info("bundle gifts updated", map[string]interface{}{
		"bundle_id": bundle.ID,
		"updated":   len(diff.ToUpdate),
		"deleted":   len(diff.ToDelete),
		"inserted":  len(diff.ToInsert),
	})
	return bundle, nil
}

// UpdateInfo changes the bundle-level fields. Gifts are left alone.
func (s *BundleService) UpdateInfo(ctx context.Context, bundleID, requesterID, name string, designType domain.DesignType) (*domain.Bundle, error) {
	bundle, err := s.loadOwned(ctx, bundleID, requesterID)
	if err != nil {
		return nil, err
	}
	if bundle.Status != domain.BundleStatusDraft {
		return nil, domain.ErrInvalidBundleStatus
	}

	name, err = domain.NormalizeBundleName(name)
	if err != nil {
		return nil, err
	}
	if !designType.Valid() {
		return nil, domain.ErrInvalidDesignType
	}

	bundle.Name = name
	bundle.DesignType = designType
	bundle.UpdatedAt = s.now()

	if err := s.repo.UpdateBundleInfo(ctx, bundle); err != nil {
		return nil, fmt.Errorf("update bundle: %w", err)
	}
	return bundle, nil
}

func (s *BundleService) Publish(ctx context.Context, bundleID, requesterID string, character domain.DeliveryCharacterType) (*domain.Bundle, error) {
	bundle, err := s.loadOwned(ctx, bundleID, requesterID)
	if err != nil {
		return nil, err
	}
	if bundle.Status != domain.BundleStatusDraft {
		return nil, domain.ErrInvalidBundleStatus
	}
	if !character.Valid() {
		return nil, domain.ErrInvalidCharacterType
	}

	giftCount, err := s.repo.CountGifts(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("count gifts: %w", err)
	}
	if giftCount < domain.MinGiftsPerBundle {
		return nil, domain.ErrBundleMinimumGiftsRequired
	}

	if bundle.Link == nil || *bundle.Link == "" {
		link, err := s.allocateLink(ctx)
		if err != nil {
			return nil, err
		}
		bundle.Link = &link
	}
	if *bundle.Link == "" {
		return nil, domain.ErrIllegalState.Enrich("published bundle has no link")
	}

	now := s.now()
	bundle.DeliveryCharacterType = &character
	bundle.Status = domain.BundleStatusPublished
	bundle.PublishedAt = &now
	bundle.UpdatedAt = now

	if err := s.repo.PublishBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("publish bundle: %w", err)
	}

	metrics.BundlesPublished.Inc()
	s.logger.Info("bundle published", map[string]interface{}{
		"bundle_id": bundle.ID,
		"character": string(character),
	})
	return bundle, nil
}

// Complete moves a PUBLISHED bundle to COMPLETED. Any other status is an error,
// including COMPLETED itself.
func (s *BundleService) Complete(ctx context.Context, bundleID string) (*domain.Bundle, error) {
	bundle, err := s.load(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if bundle.Status != domain.BundleStatusPublished {
		return nil, domain.ErrInvalidBundleStatusForComplete
	}

	bundle.Status = domain.BundleStatusCompleted
	bundle.UpdatedAt = s.now()

	if err := s.repo.CompleteBundle(ctx, bundle); err != nil {
		return nil, err
	}

	metrics.BundlesCompleted.Inc()
	s.logger.Info("bundle completed", map[string]interface{}{"bundle_id": bundle.ID})
	return bundle, nil
}

// MarkRead flips IsRead on a completed bundle the first time its owner views it.
func (s *BundleService) MarkRead(ctx context.Context, bundleID string) error {
	bundle, err := s.load(ctx, bundleID)
	if err != nil {
		return err
	}
	if bundle.Status != domain.BundleStatusCompleted || bundle.IsRead {
		return nil
	}

	if err := s.repo.MarkBundleRead(ctx, bundle.ID); err != nil {
		return fmt.Errorf("mark bundle read: %w", err)
	}
	return nil
}

// Get returns the owner's view of a bundle with gifts and images.
func (s *BundleService) Get(ctx context.Context, bundleID, requesterID string) (*domain.Bundle, error) {
	bundle, err := s.loadOwned(ctx, bundleID, requesterID)
	if err != nil {
		return nil, err
	}

	gifts, err := loadGiftsWithImages(ctx, s.repo, bundleID)
	if err != nil {
		return nil, err
	}
	bundle.Gifts = gifts

	if err := s.MarkRead(ctx, bundleID); err != nil {
		return nil, err
	}
	if bundle.Status == domain.BundleStatusCompleted {
		bundle.IsRead = true
	}
	return bundle, nil
}

// List returns the owner's bundles, unread completed ones first, then newest first.
func (s *BundleService) List(ctx context.Context, ownerID string, page, limit int) ([]domain.BundleSummary, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	offset := (page - 1) * limit

	bundles, err := s.repo.ListBundleSummaries(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.repo.CountBundles(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	return bundles, count, nil
}

func (s *BundleService) load(ctx context.Context, bundleID string) (*domain.Bundle, error) {
	bundle, err := s.repo.GetBundle(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	if bundle == nil {
		return nil, domain.ErrBundleNotFound
	}
	return bundle, nil
}

func (s *BundleService) loadOwned(ctx context.Context, bundleID, requesterID string) (*domain.Bundle, error) {
	bundle, err := s.load(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if !bundle.OwnedBy(requesterID) {
		return nil, domain.ErrBundleAccessDenied
	}
	return bundle, nil
}

func (s *BundleService) allocateLink(ctx context.Context) (string, error) {
	for i := 0; i < linkMaxAttempts; i++ {
		link, err := generateLinkCode(linkLength)
		if err != nil {
			return "", err
		}
		existing, err := s.repo.GetBundleByLink(ctx, link)
		if err != nil {
			return "", fmt.Errorf("check link: %w", err)
		}
		if existing == nil {
			return link, nil
		}
	}
	return "", domain.ErrIllegalState.Enrich("could not allocate a unique link")
}

// dayBounds returns the UTC instants that delimit now's calendar day in loc.
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// loadGiftsWithImages reads a bundle's gifts in order and attaches their images.
func loadGiftsWithImages(ctx context.Context, repo ports.BundleRepository, bundleID string) ([]domain.Gift, error) {
	gifts, err := repo.ListGifts(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}
	images, err := repo.ListImages(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	byGift := make(map[string][]domain.GiftImage, len(gifts))
	for _, img := range images {
		byGift[img.GiftID] = append(byGift[img.GiftID], img)
	}
	for i := range gifts {
		gifts[i].Images = byGift[gifts[i].ID]
	}
	return gifts, nil
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateLinkCode(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
