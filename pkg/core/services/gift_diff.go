package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
)

// Reconcile diffs incoming gift edits against the stored gifts of a bundle.
//
// Existing gifts not referenced by an edit are deleted. Referenced gifts are
// updated only when name, message or purchase url changed, but their images
// are always replaced. Edits without an ID become new gifts. The resulting
// gift list follows the order of edits. Any error means nothing may be applied.
func Reconcile(bundleID string, existing []domain.Gift, edits []domain.GiftEdit, now time.Time) (*domain.GiftDiff, error) {
	byID := make(map[string]domain.Gift, len(existing))
	for _, g := range existing {
		byID[g.ID] = g
	}

	diff := &domain.GiftDiff{Gifts: make([]domain.Gift, 0, len(edits))}
	referenced := make(map[string]bool, len(edits))

	for pos, raw := range edits {
		edit, err := raw.Normalize()
		if err != nil {
			return nil, err
		}

		var gift domain.Gift
		if edit.IsNew() {
			gift = domain.Gift{
				ID:          uuid.NewString(),
				BundleID:    bundleID,
				Name:        edit.Name,
				Message:     edit.Message,
				PurchaseURL: edit.PurchaseURL,
				SortOrder:   pos,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if gift.Images, err = ResolveImages(gift.ID, edit.ImageURLs, now); err != nil {
				return nil, err
			}
			diff.ToInsert = append(diff.ToInsert, gift)
			diff.Gifts = append(diff.Gifts, gift)
			continue
		}

		id := *edit.ID
		current, ok := byID[id]
		if !ok {
			return nil, domain.ErrGiftNotFound.Enrich(id)
		}
		if referenced[id] {
			return nil, domain.ErrDuplicateGiftEdit.Enrich(id)
		}
		referenced[id] = true

		gift = current
		gift.SortOrder = pos
		if gift.Images, err = ResolveImages(gift.ID, edit.ImageURLs, now); err != nil {
			return nil, err
		}
		if giftContentChanged(current, edit) {
			gift.Name = edit.Name
			gift.Message = edit.Message
			gift.PurchaseURL = edit.PurchaseURL
			gift.UpdatedAt = now
			diff.ToUpdate = append(diff.ToUpdate, gift)
		}
		diff.Gifts = append(diff.Gifts, gift)
	}

	for _, g := range existing {
		if !referenced[g.ID] {
			diff.ToDelete = append(diff.ToDelete, g)
		}
	}

	return diff, nil
}

// giftContentChanged compares the scalar fields an edit may change.
func giftContentChanged(current domain.Gift, edit domain.GiftEdit) bool {
	return current.Name != edit.Name ||
		!equalOptional(current.Message, edit.Message) ||
		!equalOptional(current.PurchaseURL, edit.PurchaseURL)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
