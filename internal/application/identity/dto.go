package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/identity"
)

// RegisterInput contains the input for self-registration
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID         uuid.UUID
	TokenJTI       string
	TokenExpiresAt time.Time
}

// UpdateProfileInput contains the user-editable profile fields. Nil fields
// keep their current values.
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// CreateAdminInput contains the input for creating a staff user
type CreateAdminInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair contains an issued access and refresh token pair
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// UserInfo contains the user information returned to the user themselves
type UserInfo struct {
	ID          uuid.UUID  `json:"id" swaggertype:"string" format:"uuid"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	IsStaff     bool       `json:"is_staff"`
	Permissions []string   `json:"permissions"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AuthResult contains the result of a successful register or login
type AuthResult struct {
	Tokens TokenPair `json:"tokens"`
	User   UserInfo  `json:"user"`
}

// ToUserInfo converts a domain User to UserInfo
func ToUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		IsStaff:     user.IsStaff,
		Permissions: user.Permissions(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
