package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vidtube/internal/domain"
	"vidtube/internal/pkg/apierror"
	jwtpkg "vidtube/internal/pkg/jwt"
	"vidtube/internal/pkg/uploader"
)

// Mock user repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateRefreshToken(ctx context.Context, id int64, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

// Mock token issuer
type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) GenerateAccessToken(userID int64, username, email string) (string, error) {
	args := m.Called(userID, username, email)
	return args.String(0), args.Error(1)
}

func (m *mockTokenIssuer) GenerateRefreshToken(userID int64) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *mockTokenIssuer) ParseRefreshToken(token string) (*jwtpkg.RefreshClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwtpkg.RefreshClaims), args.Error(1)
}

// Mock media uploader
type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, localPath string) (*uploader.Artifact, error) {
	args := m.Called(ctx, localPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uploader.Artifact), args.Error(1)
}

func newTestService() (*Service, *mockUserRepo, *mockTokenIssuer, *mockUploader) {
	users := new(mockUserRepo)
	tokens := new(mockTokenIssuer)
	uploads := new(mockUploader)
	return NewService(users, tokens, uploads), users, tokens, uploads
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func apiStatus(t *testing.T, err error) *apierror.Error {
	t.Helper()
	var apiErr *apierror.Error
	assert.True(t, errors.As(err, &apiErr), "expected *apierror.Error, got %v", err)
	return apiErr
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		FullName:   "Ada Lovelace",
		Email:      "ada@x.com",
		Username:   "Ada",
		Password:   "p@ss",
		AvatarPath: "/tmp/avatar.png",
	}
}

func TestService_Register_BlankField(t *testing.T) {
	for name, mutate := range map[string]func(*RegisterRequest){
		"full name": func(r *RegisterRequest) { r.FullName = "   " },
		"email":     func(r *RegisterRequest) { r.Email = "" },
		"username":  func(r *RegisterRequest) { r.Username = "\t" },
		"password":  func(r *RegisterRequest) { r.Password = " " },
	} {
		t.Run(name, func(t *testing.T) {
			service, users, _, _ := newTestService()
			req := validRegister()
			mutate(&req)

			user, err := service.Register(context.Background(), req)

			assert.Nil(t, user)
			apiErr := apiStatus(t, err)
			assert.Equal(t, 400, apiErr.Status)
			assert.Equal(t, "All fields are required", apiErr.Message)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Register_DuplicateUser(t *testing.T) {
	service, users, _, _ := newTestService()
	users.On("ExistsByUsernameOrEmail", mock.Anything, "Ada", "ada@x.com").Return(true, nil)

	user, err := service.Register(context.Background(), validRegister())

	assert.Nil(t, user)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 409, apiErr.Status)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_MissingAvatar(t *testing.T) {
	service, users, _, uploads := newTestService()
	users.On("ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	req := validRegister()
	req.AvatarPath = ""
	user, err := service.Register(context.Background(), req)

	assert.Nil(t, user)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Avatar file is required", apiErr.Message)
	uploads.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_AvatarUploadFails(t *testing.T) {
	service, users, _, uploads := newTestService()
	users.On("ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	uploads.On("Upload", mock.Anything, "/tmp/avatar.png").Return(nil, errors.New("backend down"))

	user, err := service.Register(context.Background(), validRegister())

	assert.Nil(t, user)
	apiErr := apiStatus(t, err)
	// upload failure is reported exactly like a missing avatar
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "Avatar file is required", apiErr.Message)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_Success(t *testing.T) {
	service, users, _, uploads := newTestService()

	users.On("ExistsByUsernameOrEmail", mock.Anything, "Ada", "ada@x.com").Return(false, nil)
	uploads.On("Upload", mock.Anything, "/tmp/avatar.png").
		Return(&uploader.Artifact{URL: "/static/uploads/a.png"}, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "ada" && u.AvatarURL == "/static/uploads/a.png" && u.CoverImageURL == ""
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 7
	}).Return(nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{
		ID:           7,
		Username:     "ada",
		Email:        "ada@x.com",
		FullName:     "Ada Lovelace",
		PasswordHash: "stored-hash",
		AvatarURL:    "/static/uploads/a.png",
	}, nil)

	user, err := service.Register(context.Background(), validRegister())

	assert.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.Empty(t, user.Password)
	assert.Empty(t, user.PasswordHash)
	assert.Nil(t, user.RefreshToken)
	users.AssertExpectations(t)
	uploads.AssertExpectations(t)
}

func TestService_Register_CoverImageOptionalFailure(t *testing.T) {
	service, users, _, uploads := newTestService()

	users.On("ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	uploads.On("Upload", mock.Anything, "/tmp/avatar.png").
		Return(&uploader.Artifact{URL: "/static/uploads/a.png"}, nil)
	uploads.On("Upload", mock.Anything, "/tmp/cover.png").Return(nil, errors.New("backend down"))
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.CoverImageURL == ""
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 8
	}).Return(nil)
	users.On("GetByID", mock.Anything, int64(8)).Return(&domain.User{ID: 8, Username: "ada"}, nil)

	req := validRegister()
	req.CoverImagePath = "/tmp/cover.png"
	user, err := service.Register(context.Background(), req)

	assert.NoError(t, err)
	assert.Empty(t, user.CoverImageURL)
	users.AssertExpectations(t)
}

func TestService_Register_RefetchMiss(t *testing.T) {
	service, users, _, uploads := newTestService()

	users.On("ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	uploads.On("Upload", mock.Anything, mock.Anything).
		Return(&uploader.Artifact{URL: "/static/uploads/a.png"}, nil)
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 9
	}).Return(nil)
	users.On("GetByID", mock.Anything, int64(9)).Return(nil, gorm.ErrRecordNotFound)

	user, err := service.Register(context.Background(), validRegister())

	assert.Nil(t, user)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 500, apiErr.Status)
}

func TestService_Login_MissingIdentifier(t *testing.T) {
	service, users, _, _ := newTestService()

	res, err := service.Login(context.Background(), LoginRequest{Password: "p@ss"})

	assert.Nil(t, res)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 400, apiErr.Status)
	users.AssertNotCalled(t, "GetByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Login_UnknownUser(t *testing.T) {
	service, users, tokens, _ := newTestService()
	users.On("GetByUsernameOrEmail", mock.Anything, "ghost", "").Return(nil, gorm.ErrRecordNotFound)

	res, err := service.Login(context.Background(), LoginRequest{Username: "ghost", Password: "p@ss"})

	assert.Nil(t, res)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 404, apiErr.Status)
	tokens.AssertNotCalled(t, "GenerateRefreshToken", mock.Anything)
	users.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Login_WrongPassword(t *testing.T) {
	service, users, tokens, _ := newTestService()
	users.On("GetByUsernameOrEmail", mock.Anything, "ada", "").Return(&domain.User{
		ID:           7,
		Username:     "ada",
		PasswordHash: hashOf(t, "p@ss"),
	}, nil)

	res, err := service.Login(context.Background(), LoginRequest{Username: "ada", Password: "wrong"})

	assert.Nil(t, res)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid user credentials", apiErr.Message)
	tokens.AssertNotCalled(t, "GenerateRefreshToken", mock.Anything)
	users.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Login_Success_RotatesRefreshToken(t *testing.T) {
	service, users, tokens, _ := newTestService()

	stored := &domain.User{
		ID:           7,
		Username:     "ada",
		Email:        "ada@x.com",
		PasswordHash: hashOf(t, "p@ss"),
	}
	users.On("GetByUsernameOrEmail", mock.Anything, "ada", "").Return(stored, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{
		ID:           7,
		Username:     "ada",
		Email:        "ada@x.com",
		PasswordHash: stored.PasswordHash,
	}, nil)
	tokens.On("GenerateAccessToken", int64(7), "ada", "ada@x.com").Return("access-1", nil)
	tokens.On("GenerateRefreshToken", int64(7)).Return("refresh-1", nil)

	var persisted *string
	users.On("UpdateRefreshToken", mock.Anything, int64(7), mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(2).(*string)
		}).Return(nil)

	res, err := service.Login(context.Background(), LoginRequest{Username: "ada", Password: "p@ss"})

	assert.NoError(t, err)
	assert.Equal(t, "access-1", res.AccessToken)
	assert.Equal(t, "refresh-1", res.RefreshToken)
	// the stored slot holds exactly the issued value
	if assert.NotNil(t, persisted) {
		assert.Equal(t, "refresh-1", *persisted)
	}
	assert.Empty(t, res.User.PasswordHash)
	assert.Nil(t, res.User.RefreshToken)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestService_Login_ByEmail(t *testing.T) {
	service, users, tokens, _ := newTestService()

	users.On("GetByUsernameOrEmail", mock.Anything, "", "ada@x.com").Return(&domain.User{
		ID:           7,
		Username:     "ada",
		Email:        "ada@x.com",
		PasswordHash: hashOf(t, "p@ss"),
	}, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Username: "ada", Email: "ada@x.com"}, nil)
	tokens.On("GenerateAccessToken", int64(7), mock.Anything, mock.Anything).Return("access-1", nil)
	tokens.On("GenerateRefreshToken", int64(7)).Return("refresh-1", nil)
	users.On("UpdateRefreshToken", mock.Anything, int64(7), mock.Anything).Return(nil)

	res, err := service.Login(context.Background(), LoginRequest{Email: "ada@x.com", Password: "p@ss"})

	assert.NoError(t, err)
	assert.Equal(t, "refresh-1", res.RefreshToken)
}

func TestService_IssueTokenPair_PersistFailure(t *testing.T) {
	service, users, tokens, _ := newTestService()

	users.On("GetByUsernameOrEmail", mock.Anything, "ada", "").Return(&domain.User{
		ID:           7,
		Username:     "ada",
		PasswordHash: hashOf(t, "p@ss"),
	}, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Username: "ada"}, nil)
	tokens.On("GenerateAccessToken", int64(7), mock.Anything, mock.Anything).Return("access-1", nil)
	tokens.On("GenerateRefreshToken", int64(7)).Return("refresh-1", nil)
	users.On("UpdateRefreshToken", mock.Anything, int64(7), mock.Anything).Return(errors.New("disk full"))

	res, err := service.Login(context.Background(), LoginRequest{Username: "ada", Password: "p@ss"})

	assert.Nil(t, res)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 500, apiErr.Status)
	// underlying cause stays out of the caller-visible message
	assert.Equal(t, "Token generation failed", apiErr.Message)
}

func TestService_Logout_ClearsStoredToken(t *testing.T) {
	service, users, _, _ := newTestService()
	users.On("UpdateRefreshToken", mock.Anything, int64(7), (*string)(nil)).Return(nil)

	err := service.Logout(context.Background(), 7)

	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestService_Refresh_InvalidToken(t *testing.T) {
	service, _, tokens, _ := newTestService()
	tokens.On("ParseRefreshToken", "garbage").Return(nil, jwtpkg.ErrInvalidToken)

	res, err := service.Refresh(context.Background(), "garbage")

	assert.Nil(t, res)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 401, apiErr.Status)
}

func TestService_Refresh_RotatedOutToken(t *testing.T) {
	service, users, tokens, _ := newTestService()

	current := "refresh-current"
	tokens.On("ParseRefreshToken", "refresh-old").Return(&jwtpkg.RefreshClaims{UserID: 7}, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, RefreshToken: &current}, nil)

	res, err := service.Refresh(context.Background(), "refresh-old")

	assert.Nil(t, res)
	apiErr := apiStatus(t, err)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Refresh token is expired or used", apiErr.Message)
	users.AssertNotCalled(t, "UpdateRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Refresh_Success(t *testing.T) {
	service, users, tokens, _ := newTestService()

	current := "refresh-current"
	tokens.On("ParseRefreshToken", current).Return(&jwtpkg.RefreshClaims{UserID: 7}, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{
		ID:           7,
		Username:     "ada",
		Email:        "ada@x.com",
		RefreshToken: &current,
	}, nil)
	tokens.On("GenerateAccessToken", int64(7), "ada", "ada@x.com").Return("access-2", nil)
	tokens.On("GenerateRefreshToken", int64(7)).Return("refresh-2", nil)
	users.On("UpdateRefreshToken", mock.Anything, int64(7), mock.MatchedBy(func(tok *string) bool {
		return tok != nil && *tok == "refresh-2"
	})).Return(nil)

	res, err := service.Refresh(context.Background(), current)

	assert.NoError(t, err)
	assert.Equal(t, "access-2", res.AccessToken)
	assert.Equal(t, "refresh-2", res.RefreshToken)
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}
