package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error for the transport layer.
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindNotFound
	KindValidation
	KindStateConflict
	KindAccessDenied
	KindUnauthorized
	KindExternalDependency
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state_conflict"
	case KindAccessDenied:
		return "access_denied"
	case KindUnauthorized:
		return "unauthorized"
	case KindExternalDependency:
		return "external_dependency"
	default:
		return "unexpected"
	}
}

// Verify Interface Compliance
var _ error = (*Error)(nil)

// Error is a business error with a stable code.
type Error struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"error"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so that enriched copies still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Enrich returns a copy of e with extra detail appended to the message.
func (e *Error) Enrich(detail string) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %s", e.Message, detail),
	}
}

// AsError unwraps err into a domain Error. Errors outside the taxonomy become nil, false.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Not found
var (
	ErrBundleNotFound = newError(KindNotFound, "BUNDLE_NOT_FOUND", "bundle not found")
	ErrGiftNotFound   = newError(KindNotFound, "GIFT_NOT_FOUND", "gift not found")
	ErrInvalidLink    = newError(KindNotFound, "INVALID_LINK", "link is not valid")
	ErrUserNotFound   = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
)

// Validation
var (
	ErrBundleNameRequired     = newError(KindValidation, "BUNDLE_NAME_REQUIRED", "bundle name is required")
	ErrBundleNameTooLong      = newError(KindValidation, "BUNDLE_NAME_TOO_LONG", "bundle name must be at most 100 characters")
	ErrInvalidDesignType      = newError(KindValidation, "INVALID_DESIGN_TYPE", "design type is not valid")
	ErrInvalidCharacterType   = newError(KindValidation, "INVALID_CHARACTER_TYPE", "delivery character type is not valid")
	ErrInvalidResponseTag     = newError(KindValidation, "INVALID_RESPONSE_TAG", "response tag is not valid")
	ErrGiftNameRequired       = newError(KindValidation, "GIFT_NAME_REQUIRED", "gift name is required")
	ErrGiftNameTooLong        = newError(KindValidation, "GIFT_NAME_TOO_LONG", "gift name must be at most 100 characters")
	ErrGiftMessageTooLong     = newError(KindValidation, "GIFT_MESSAGE_TOO_LONG", "gift message must be at most 500 characters")
	ErrPurchaseURLTooLong     = newError(KindValidation, "PURCHASE_URL_TOO_LONG", "purchase url is too long")
	ErrGiftImageRequired      = newError(KindValidation, "GIFT_IMAGE_REQUIRED", "every gift needs at least one image")
	ErrDuplicateGiftEdit      = newError(KindValidation, "DUPLICATE_GIFT_EDIT", "a gift is referenced more than once")
	ErrInvalidFileExtension   = newError(KindValidation, "INVALID_FILE_EXTENSION", "file extension is not allowed")
	ErrResponseMessageTooLong = newError(KindValidation, "RESPONSE_MESSAGE_TOO_LONG", "response message must be at most 500 characters")
	ErrInvalidRequest         = newError(KindValidation, "INVALID_REQUEST", "request is not valid")
)

// State conflicts
var (
	ErrBundleMinimumGiftsRequired     = newError(KindStateConflict, "BUNDLE_MINIMUM_GIFTS_REQUIRED", "a bundle needs at least 2 gifts")
	ErrBundleDailyLimitExceeded       = newError(KindStateConflict, "BUNDLE_DAILY_LIMIT_EXCEEDED", "daily bundle creation limit exceeded")
	ErrInvalidBundleStatus            = newError(KindStateConflict, "INVALID_BUNDLE_STATUS", "operation not allowed in the current bundle status")
	ErrInvalidBundleStatusForComplete = newError(KindStateConflict, "INVALID_BUNDLE_STATUS_FOR_COMPLETE", "only a published bundle can be completed")
	ErrNotDeliveredYet                = newError(KindStateConflict, "NOT_DELIVERED_YET", "bundle has not been delivered yet")
	ErrAlreadyAnswered                = newError(KindStateConflict, "ALREADY_ANSWERED", "gift has already been answered")
	ErrAlreadyDeletedUser             = newError(KindStateConflict, "ALREADY_DELETED_USER", "user has been deleted")
)

// Access
var (
	ErrBundleAccessDenied = newError(KindAccessDenied, "BUNDLE_ACCESS_DENIED", "only the owner can modify this bundle")
	ErrInvalidJwt         = newError(KindUnauthorized, "INVALID_JWT", "token is missing or invalid")
)

// External dependencies
var (
	ErrOAuthFailed   = newError(KindExternalDependency, "OAUTH_FAILED", "oauth provider request failed")
	ErrStorageFailed = newError(KindExternalDependency, "STORAGE_FAILED", "object storage request failed")
)

// ErrIllegalState marks an invariant that should never be observed.
var ErrIllegalState = newError(KindUnexpected, "ILLEGAL_STATE", "illegal bundle state")
