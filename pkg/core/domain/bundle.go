package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxNameLength applies to bundle and gift names, counted in runes.
const MaxNameLength = 100

// MinGiftsPerBundle is the smallest gift count a bundle may hold.
const MinGiftsPerBundle = 2

type BundleStatus string

const (
	BundleStatusDraft     BundleStatus = "DRAFT"
	BundleStatusPublished BundleStatus = "PUBLISHED"
	BundleStatusCompleted BundleStatus = "COMPLETED"
)

func (s BundleStatus) Valid() bool {
	switch s {
	case BundleStatusDraft, BundleStatusPublished, BundleStatusCompleted:
		return true
	}
	return false
}

// DesignType is the visual theme of a bundle.
type DesignType string

const (
	DesignTypeRed    DesignType = "RED"
	DesignTypeYellow DesignType = "YELLOW"
	DesignTypeGreen  DesignType = "GREEN"
	DesignTypeBlue   DesignType = "BLUE"
	DesignTypePurple DesignType = "PURPLE"
)

func (d DesignType) Valid() bool {
	switch d {
	case DesignTypeRed, DesignTypeYellow, DesignTypeGreen, DesignTypeBlue, DesignTypePurple:
		return true
	}
	return false
}

// ParseDesignType rejects unknown values instead of coercing them.
func ParseDesignType(s string) (DesignType, error) {
	d := DesignType(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", ErrInvalidDesignType
	}
	return d, nil
}

// DeliveryCharacterType is the character that carries a published bundle to the recipient.
type DeliveryCharacterType string

const (
	CharacterBear    DeliveryCharacterType = "BEAR"
	CharacterRabbit  DeliveryCharacterType = "RABBIT"
	CharacterCat     DeliveryCharacterType = "CAT"
	CharacterDog     DeliveryCharacterType = "DOG"
	CharacterDuck    DeliveryCharacterType = "DUCK"
	CharacterPenguin DeliveryCharacterType = "PENGUIN"
)

func (c DeliveryCharacterType) Valid() bool {
	switch c {
	case CharacterBear, CharacterRabbit, CharacterCat, CharacterDog, CharacterDuck, CharacterPenguin:
		return true
	}
	return false
}

func ParseDeliveryCharacterType(s string) (DeliveryCharacterType, error) {
	c := DeliveryCharacterType(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCharacterType
	}
	return c, nil
}

// Bundle is a named collection of gifts owned by one user.
type Bundle struct {
	ID                    string                 `json:"id"`
	OwnerID               string                 `json:"owner_id"`
	Name                  string                 `json:"name"`
	DesignType            DesignType             `json:"design_type"`
	DeliveryCharacterType *DeliveryCharacterType `json:"delivery_character_type"`
	Link                  *string                `json:"link"`
	Status                BundleStatus           `json:"status"`
	IsRead                bool                   `json:"is_read"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	PublishedAt           *time.Time             `json:"published_at"`
	Gifts                 []Gift                 `json:"gifts,omitempty"` // Populated on detail reads
}

func (b *Bundle) OwnedBy(userID string) bool {
	return b.OwnerID == userID
}

// HasDeliveryMetadata reports whether link and character are both set.
func (b *Bundle) HasDeliveryMetadata() bool {
	return b.Link != nil && *b.Link != "" && b.DeliveryCharacterType != nil
}

// CheckIntegrity verifies a fully loaded bundle against the stored-state rules:
// a known status and design, at least two gifts, one or more images per gift with
// exactly one primary, and delivery metadata present exactly when not DRAFT.
func (b *Bundle) CheckIntegrity() error {
	if !b.Status.Valid() {
		return ErrIllegalState.Enrich(fmt.Sprintf("bundle %s: unknown status %q", b.ID, b.Status))
	}
	if !b.DesignType.Valid() {
		return ErrInvalidDesignType.Enrich(fmt.Sprintf("bundle %s: design type %q is not valid", b.ID, b.DesignType))
	}
	if b.DeliveryCharacterType != nil && !b.DeliveryCharacterType.Valid() {
		return ErrInvalidCharacterType.Enrich(fmt.Sprintf("bundle %s: character %q is not valid", b.ID, *b.DeliveryCharacterType))
	}
	isDraft := b.Status == BundleStatusDraft
	if isDraft && (b.Link != nil || b.DeliveryCharacterType != nil) {
		return ErrIllegalState.Enrich(fmt.Sprintf("bundle %s: draft carries delivery metadata", b.ID))
	}
	if !isDraft && !b.HasDeliveryMetadata() {
		return ErrIllegalState.Enrich(fmt.Sprintf("bundle %s: %s without link or character", b.ID, b.Status))
	}
	if len(b.Gifts) < MinGiftsPerBundle {
		return ErrBundleMinimumGiftsRequired.Enrich(fmt.Sprintf("bundle %s has %d gifts", b.ID, len(b.Gifts)))
	}
	for _, g := range b.Gifts {
		if g.BundleID != b.ID {
			return ErrIllegalState.Enrich(fmt.Sprintf("gift %s belongs to bundle %s", g.ID, g.BundleID))
		}
		if len(g.Images) == 0 {
			return ErrGiftImageRequired.Enrich(fmt.Sprintf("gift %s has no images", g.ID))
		}
		primaries := 0
		for _, img := range g.Images {
			if img.IsPrimary {
				primaries++
			}
		}
		if primaries != 1 {
			return ErrIllegalState.Enrich(fmt.Sprintf("gift %s has %d primary images", g.ID, primaries))
		}
	}
	return nil
}

// NormalizeBundleName trims and validates a bundle name.
func NormalizeBundleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrBundleNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrBundleNameTooLong
	}
	return name, nil
}

// BundleSummary is a row of the owner's bundle list.
type BundleSummary struct {
	Bundle
	GiftCount    int     `json:"gift_count"`
	ThumbnailURL *string `json:"thumbnail_url"`
}
