package domain

import "time"

// User is an account created through Kakao login.
type User struct {
	ID              string     `json:"id"`
	KakaoID         int64      `json:"-"`
	Nickname        string     `json:"nickname"`
	ProfileImageURL string     `json:"profile_image_url"`
	IsDeleted       bool       `json:"is_deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// KakaoProfile is what the OAuth provider tells us about a user.
type KakaoProfile struct {
	ID              int64
	Nickname        string
	ProfileImageURL string
}

// UploadURL is a presigned object-storage upload target.
type UploadURL struct {
	URL           string `json:"url"`
	ObjectURL     string `json:"object_url"`
	ExpirySeconds int64  `json:"expiry_seconds"`
}
