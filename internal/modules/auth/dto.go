package auth

import "vidtube/internal/domain"

// RegisterRequest carries the multipart form fields plus the local paths of
// the files the transport layer has already staged. CoverImagePath may be
// empty; AvatarPath being empty means no avatar file was sent.
type RegisterRequest struct {
	FullName string `form:"fullName"`
	Email    string `form:"email"`
	Username string `form:"username"`
	Password string `form:"password"`

	AvatarPath     string `form:"-"`
	CoverImagePath string `form:"-"`
}

// LoginRequest needs a password and at least one of username/email.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User *domain.User
	TokenPair
}
