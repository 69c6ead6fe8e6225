package domain

import (
	"strings"
	"time"
)

const MaxResponseMessageLength = 500

// ResponseTag is a recipient's reaction to a gift.
type ResponseTag string

const (
	ResponseLoveIt      ResponseTag = "LOVE_IT"
	ResponseLikeIt      ResponseTag = "LIKE_IT"
	ResponseNotSure     ResponseTag = "NOT_SURE"
	ResponseNotMyStyle  ResponseTag = "NOT_MY_STYLE"
	ResponseAlreadyHave ResponseTag = "ALREADY_HAVE"
)

func (t ResponseTag) Valid() bool {
	switch t {
	case ResponseLoveIt, ResponseLikeIt, ResponseNotSure, ResponseNotMyStyle, ResponseAlreadyHave:
		return true
	}
	return false
}

func ParseResponseTag(s string) (ResponseTag, error) {
	t := ResponseTag(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidResponseTag
	}
	return t, nil
}

// Response is the single answer a recipient gives to a gift.
type Response struct {
	ID        string      `json:"id"`
	GiftID    string      `json:"gift_id"`
	BundleID  string      `json:"bundle_id"`
	Tag       ResponseTag `json:"tag"`
	Message   *string     `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}
