package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"vidtube/internal/domain"
	"vidtube/internal/pkg/apierror"
)

// Service contains all business logic for registration and the session
// lifecycle: credential verification, token issuance and rotation,
// revocation.
type Service struct {
	users   UserRepositoryInterface
	tokens  TokenIssuerInterface
	uploads UploaderInterface
}

func NewService(users UserRepositoryInterface, tokens TokenIssuerInterface, uploads UploaderInterface) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		uploads: uploads,
	}
}

// Register creates a user from the staged request. Field validation and the
// uniqueness pre-check run before any upload or write; the unique indexes
// in the store close the pre-check's race window.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	for _, field := range []string{req.FullName, req.Email, req.Username, req.Password} {
		if strings.TrimSpace(field) == "" {
			return nil, apierror.BadRequest("FIELDS_REQUIRED", "All fields are required")
		}
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apierror.Internal(err, "REGISTRATION_FAILED", "Something went wrong while registering the user")
	}
	if exists {
		return nil, apierror.Conflict("USER_EXISTS", "User with email or username already exists")
	}

	if req.AvatarPath == "" {
		return nil, apierror.BadRequest("AVATAR_REQUIRED", "Avatar file is required")
	}

	avatar, err := s.uploads.Upload(ctx, req.AvatarPath)
	if err != nil || avatar == nil || avatar.URL == "" {
		// A failed avatar upload is reported exactly like a missing avatar.
		return nil, apierror.BadRequest("AVATAR_REQUIRED", "Avatar file is required")
	}

	coverURL := ""
	if req.CoverImagePath != "" {
		if cover, err := s.uploads.Upload(ctx, req.CoverImagePath); err == nil && cover != nil {
			coverURL = cover.URL
		}
	}

	user := &domain.User{
		Username:      strings.ToLower(req.Username),
		Email:         req.Email,
		FullName:      req.FullName,
		Password:      req.Password, // hashed by the repository
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("USER_EXISTS", "User with email or username already exists")
		}
		return nil, apierror.Internal(err, "REGISTRATION_FAILED", "Something went wrong while registering the user")
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, apierror.Internal(err, "REGISTRATION_FAILED", "Something went wrong while registering the user")
	}

	created.Sanitize()
	return created, nil
}

// Login verifies credentials and issues a fresh token pair, rotating the
// stored refresh token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.Username) == "" && strings.TrimSpace(req.Email) == "" {
		return nil, apierror.BadRequest("IDENTIFIER_REQUIRED", "Username or email is required")
	}

	user, err := s.verifyCredentials(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	loggedIn, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, apierror.Internal(err, "LOGIN_FAILED", "Something went wrong while logging in")
	}

	loggedIn.Sanitize()
	return &LoginResult{User: loggedIn, TokenPair: pair}, nil
}

// Logout revokes the caller's session by clearing the stored refresh token.
// Only the token slot is written; no other field is touched or re-validated.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return apierror.Internal(err, "LOGOUT_FAILED", "Something went wrong while logging out")
	}
	return nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The presented
// token must match the stored single-slot value exactly; an expired,
// forged, or already-rotated token is rejected.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apierror.Unauthorized("UNAUTHORIZED", "Unauthorized request")
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apierror.Unauthorized("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apierror.Unauthorized("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, apierror.Unauthorized("REFRESH_TOKEN_EXPIRED", "Refresh token is expired or used")
	}

	pair, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	user.Sanitize()
	return &LoginResult{User: user, TokenPair: pair}, nil
}

// verifyCredentials is the credential verifier: resolve the identifier to
// exactly one user, then check the password against the stored hash. It has
// no side effects.
func (s *Service) verifyCredentials(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("USER_NOT_FOUND", "User not found")
		}
		return nil, apierror.Internal(err, "LOGIN_FAILED", "Something went wrong while logging in")
	}

	if !user.CheckPassword(password) {
		return nil, apierror.Unauthorized("INVALID_CREDENTIALS", "Invalid user credentials")
	}

	return user, nil
}

// issueTokenPair is the token issuer: it loads the user (the caller has
// already proven the id exists, so absence is an internal fault), signs
// both tokens, and persists the new refresh token before returning. The
// write overwrites any previous value and must complete first — a client
// must never hold a refresh token the store has not recorded. Underlying
// causes are wrapped and never leak to the caller.
func (s *Service) issueTokenPair(ctx context.Context, userID int64) (TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return TokenPair{}, apierror.Internal(err, "TOKEN_GENERATION_FAILED", "Token generation failed")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Username, user.Email)
	if err != nil {
		return TokenPair{}, apierror.Internal(err, "TOKEN_GENERATION_FAILED", "Token generation failed")
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return TokenPair{}, apierror.Internal(err, "TOKEN_GENERATION_FAILED", "Token generation failed")
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return TokenPair{}, apierror.Internal(err, "TOKEN_GENERATION_FAILED", "Token generation failed")
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
