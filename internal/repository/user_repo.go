package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vidtube/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	Username      string    `gorm:"column:username;uniqueIndex"`
	Email         string    `gorm:"column:email;uniqueIndex"`
	FullName      string    `gorm:"column:full_name"`
	PasswordHash  string    `gorm:"column:password_hash"`
	AvatarURL     string    `gorm:"column:avatar_url"`
	CoverImageURL *string   `gorm:"column:cover_image_url"`
	RefreshToken  *string   `gorm:"column:refresh_token"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

// AutoMigrate creates the users table with its unique indexes. The store,
// not the application, is the arbiter of username/email uniqueness.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{})
}

func toDomainUser(m userModel) *domain.User {
	var cover string
	if m.CoverImageURL != nil {
		cover = *m.CoverImageURL
	}

	return &domain.User{
		ID:            m.ID,
		Username:      m.Username,
		Email:         m.Email,
		FullName:      m.FullName,
		PasswordHash:  m.PasswordHash,
		AvatarURL:     m.AvatarURL,
		CoverImageURL: cover,
		RefreshToken:  m.RefreshToken,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var cover *string
	if u.CoverImageURL != "" {
		v := u.CoverImageURL
		cover = &v
	}

	return userModel{
		ID:            u.ID,
		Username:      strings.ToLower(strings.TrimSpace(u.Username)),
		Email:         strings.ToLower(strings.TrimSpace(u.Email)),
		FullName:      u.FullName,
		PasswordHash:  u.PasswordHash,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: cover,
		RefreshToken:  u.RefreshToken,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// Create inserts a new user. Plaintext passwords are hashed here, one-way,
// before anything touches the database; the caller never hashes.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = string(hash)
		u.Password = ""
	}

	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		if isDuplicateKey(tx.Error) {
			return gorm.ErrDuplicatedKey
		}
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

// isDuplicateKey also recognizes untranslated unique-violation errors from
// the sqlite and postgres drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

// GetByUsernameOrEmail resolves an identifier that may be a username, an
// email, or both. Matching is case-insensitive; blank identifiers match
// nothing because both columns are non-empty for every stored record.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = ?", normalize(username), normalize(email)).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("username = ? OR LOWER(email) = ?", normalize(username), normalize(email)).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// UpdateRefreshToken writes the single refresh-token slot for a user.
// UpdateColumn bypasses hooks and field validation: rotating or clearing a
// session must never re-validate unrelated record fields. Passing nil
// clears the slot.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id int64, token *string) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token", token).Error
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
