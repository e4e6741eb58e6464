package domain

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered account. Username and email are globally unique;
// usernames are stored lowercased. RefreshToken holds the single currently
// valid refresh token for the account, nil when the user has no session.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Password      string    `json:"-"` // plaintext, set only on create; hashed by the repository
	PasswordHash  string    `json:"-"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	RefreshToken  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CheckPassword compares a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Sanitize strips credential material before the record is returned to a caller.
func (u *User) Sanitize() {
	u.Password = ""
	u.PasswordHash = ""
	u.RefreshToken = nil
}
