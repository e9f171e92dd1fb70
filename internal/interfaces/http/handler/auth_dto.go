package handler

// RegisterRequest represents the request body for self-registration
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=150" example:"jdoe"`
	Email     string `json:"email" binding:"required,email" example:"jdoe@example.com"`
	Password  string `json:"password" binding:"required,min=8,max=128" example:"s3cret-pass"`
	FirstName string `json:"first_name" binding:"max=150" example:"Jane"`
	LastName  string `json:"last_name" binding:"max=150" example:"Doe"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateProfileRequest represents the editable profile fields
type UpdateProfileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email" example:"jdoe@example.com"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150" example:"Jane"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150" example:"Doe"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}
