package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

// ResolveImages builds the image set of one gift. The first URL becomes the
// primary image; the rest keep their relative order.
func ResolveImages(giftID string, urls []string, now time.Time) ([]domain.GiftImage, error) {
	if len(urls) == 0 {
		return nil, domain.ErrGiftImageRequired
	}

	images := make([]domain.GiftImage, 0, len(urls))
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			return nil, domain.ErrGiftImageRequired.Enrich("image url is blank")
		}
		images = append(images, domain.GiftImage{
			ID:         uuid.NewString(),
			GiftID:     giftID,
			ImageURL:   u,
			IsPrimary:  i == 0,
			SortOrder:  i,
			UploadedAt: now,
		})
	}
	return images, nil
}
