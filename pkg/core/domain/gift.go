package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxGiftMessageLength = 500
	MaxPurchaseURLLength = 2048
)

// Gift is one item within a bundle.
type Gift struct {
	ID          string       `json:"id"`
	BundleID    string       `json:"bundle_id"`
	Name        string       `json:"name"`
	Message     *string      `json:"message"`
	PurchaseURL *string      `json:"purchase_url"`
	ResponseTag *ResponseTag `json:"response_tag"`
	IsResponded bool         `json:"is_responded"`
	SortOrder   int          `json:"sort_order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Images      []GiftImage  `json:"images,omitempty"`
}

// GiftImage is one image attached to a gift. Exactly one per gift is primary.
type GiftImage struct {
	ID         string    `json:"id"`
	GiftID     string    `json:"gift_id"`
	ImageURL   string    `json:"image_url"`
	IsPrimary  bool      `json:"is_primary"`
	SortOrder  int       `json:"sort_order"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GiftEdit is an incoming gift payload. A nil ID means a new gift.
type GiftEdit struct {
	ID          *string  `json:"id,omitempty"`
	Name        string   `json:"name"`
	Message     *string  `json:"message,omitempty"`
	PurchaseURL *string  `json:"purchase_url,omitempty"`
	ImageURLs   []string `json:"image_urls"`
}

// IsNew reports whether the edit creates a gift.
func (e GiftEdit) IsNew() bool {
	return e.ID == nil || *e.ID == ""
}

// Normalize trims the edit's text fields and checks their limits.
// Blank optional fields collapse to nil.
func (e GiftEdit) Normalize() (GiftEdit, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return e, ErrGiftNameRequired
	}
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return e, ErrGiftNameTooLong
	}
	e.Message = blankToNil(e.Message)
	if e.Message != nil && utf8.RuneCountInString(*e.Message) > MaxGiftMessageLength {
		return e, ErrGiftMessageTooLong
	}
	e.PurchaseURL = blankToNil(e.PurchaseURL)
	if e.PurchaseURL != nil && len(*e.PurchaseURL) > MaxPurchaseURLLength {
		return e, ErrPurchaseURLTooLong
	}
	return e, nil
}

// GiftDiff is the outcome of reconciling edits against a bundle's stored gifts.
type GiftDiff struct {
	ToUpdate []Gift
	ToDelete []Gift
	ToInsert []Gift
	// Gifts is the resulting gift list in request order, images attached.
	Gifts []Gift
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
