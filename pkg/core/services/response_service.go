package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/metrics"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

type ResponseService struct {
	repo      ports.BundleRepository
	responses ports.ResponseRepository
	bundles   ports.BundleService
	logger    logging.Logger
	now       func() time.Time
}

func NewResponseService(repo ports.BundleRepository, responses ports.ResponseRepository, bundles ports.BundleService, logger logging.Logger) *ResponseService {
	return &ResponseService{
		repo:      repo,
		responses: responses,
		bundles:   bundles,
		logger:    logger.Named("responses"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ResolveLink finds the bundle behind a recipient link regardless of status.
func (s *ResponseService) ResolveLink(ctx context.Context, link string) (*domain.Bundle, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, domain.ErrInvalidLink
	}
	bundle, err := s.repo.GetBundleByLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("load bundle by link: %w", err)
	}
	if bundle == nil {
		return nil, domain.ErrInvalidLink
	}
	return bundle, nil
}

// LoadForRecipient returns the recipient view of a published bundle. Gift
// messages are never part of this view.
func (s *ResponseService) LoadForRecipient(ctx context.Context, link string) (*domain.Bundle, error) {
	bundle, err := s.ResolveLink(ctx, link)
	if err != nil {
		return nil, err
	}
	if err := checkDeliverable(bundle); err != nil {
		return nil, err
	}

	gifts, err := loadGiftsWithImages(ctx, s.repo, bundle.ID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListResponses(ctx, bundle.ID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}

	answered := make(map[string]bool, len(responses))
	for _, r := range responses {
		answered[r.GiftID] = true
	}
	for i := range gifts {
		gifts[i].IsResponded = answered[gifts[i].ID]
		gifts[i].Message = nil
		gifts[i].ResponseTag = nil
	}
	bundle.Gifts = gifts
	return bundle, nil
}

// SubmitResponse records the first and only response to a gift. It neither
// updates gift flags nor completes the bundle; see CheckCompletion.
func (s *ResponseService) SubmitResponse(ctx context.Context, giftID, bundleID string, tag domain.ResponseTag, message *string) (*domain.Response, error) {
	bundle, err := s.repo.GetBundle(ctx, bundleID)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	if bundle == nil {
		return nil, domain.ErrBundleNotFound
	}
	if err := checkDeliverable(bundle); err != nil {
		return nil, err
	}

	gift, err := s.repo.GetGift(ctx, giftID)
	if err != nil {
		return nil, fmt.Errorf("load gift: %w", err)
	}
	if gift == nil || gift.BundleID != bundleID {
		return nil, domain.ErrGiftNotFound
	}

	if !tag.Valid() {
		return nil, domain.ErrInvalidResponseTag
	}
	message, err = normalizeResponseMessage(message)
	if err != nil {
		return nil, err
	}

	existing, err := s.responses.GetResponseByGift(ctx, giftID)
	if err != nil {
		return nil, fmt.Errorf("load response: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyAnswered
	}

	response := &domain.Response{
		ID:        uuid.NewString(),
		GiftID:    giftID,
		BundleID:  bundleID,
		Tag:       tag,
		Message:   message,
		CreatedAt: s.now(),
	}
	// The unique index on gift_id settles concurrent submissions.
	if err := s.responses.CreateResponse(ctx, response); err != nil {
		return nil, err
	}

	metrics.ResponsesSubmitted.WithLabelValues(string(tag)).Inc()
	s.logger.Info("response recorded", map[string]interface{}{
		"bundle_id": bundleID,
		"gift_id":   giftID,
		"tag":       string(tag),
	})
	return response, nil
}

// CheckCompletion completes the bundle once every gift has a response.
// It reports whether this call performed the transition.
func (s *ResponseService) CheckCompletion(ctx context.Context, bundleID string) (bool, error) {
	bundle, err := s.repo.GetBundle(ctx, bundleID)
	if err != nil {
		return false, fmt.Errorf("load bundle: %w", err)
	}
	if bundle == nil {
		return false, domain.ErrBundleNotFound
	}
	if bundle.Status != domain.BundleStatusPublished {
		return false, nil
	}

	total, err := s.repo.CountGifts(ctx, bundleID)
	if err != nil {
		return false, fmt.Errorf("count gifts: %w", err)
	}
	answered, err := s.responses.CountRespondedGifts(ctx, bundleID)
	if err != nil {
		return false, fmt.Errorf("count responses: %w", err)
	}
	if total == 0 || answered < total {
		return false, nil
	}

	if _, err := s.bundles.Complete(ctx, bundleID); err != nil {
		// Another submission completed the bundle between our read and write.
		if errors.Is(err, domain.ErrInvalidBundleStatusForComplete) {
			s.logger.Debug("bundle already completed", map[string]interface{}{"bundle_id": bundleID})
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// checkDeliverable maps a bundle status to the error a recipient sees.
func checkDeliverable(bundle *domain.Bundle) error {
	switch bundle.Status {
	case domain.BundleStatusPublished:
		return nil
	case domain.BundleStatusDraft:
		return domain.ErrNotDeliveredYet
	case domain.BundleStatusCompleted:
		return domain.ErrInvalidBundleStatus
	default:
		return domain.ErrInvalidLink
	}
}

func normalizeResponseMessage(message *string) (*string, error) {
	if message == nil {
		return nil, nil
	}
	m := strings.TrimSpace(*message)
	if m == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(m) > domain.MaxResponseMessageLength {
		return nil, domain.ErrResponseMessageTooLong
	}
	return &m, nil
}
