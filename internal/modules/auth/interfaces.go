package auth

import (
	"context"

	"vidtube/internal/domain"
	jwtpkg "vidtube/internal/pkg/jwt"
	"vidtube/internal/pkg/uploader"
)

// UserRepositoryInterface — only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateRefreshToken(ctx context.Context, id int64, token *string) error
}

// TokenIssuerInterface signs and parses the access/refresh token pair.
type TokenIssuerInterface interface {
	GenerateAccessToken(userID int64, username, email string) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ParseRefreshToken(token string) (*jwtpkg.RefreshClaims, error)
}

// UploaderInterface is the external media-upload service seam. A usable
// artifact always carries a resolvable URL.
type UploaderInterface interface {
	Upload(ctx context.Context, localPath string) (*uploader.Artifact, error)
}
