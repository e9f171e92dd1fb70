package identity

import (
	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeUser = "User"

// Event type constants
const (
	EventTypeUserCreated        = "UserCreated"
	EventTypeUserProfileUpdated = "UserProfileUpdated"
)

// UserCreatedEvent is published when a user registers or is created by an operator
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		UserID:          user.ID,
		Username:        user.Username,
		Email:           user.Email,
	}
}

// UserProfileUpdatedEvent is published when a user changes their profile
type UserProfileUpdatedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// NewUserProfileUpdatedEvent creates a new UserProfileUpdatedEvent
func NewUserProfileUpdatedEvent(user *User) *UserProfileUpdatedEvent {
	return &UserProfileUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserProfileUpdated, AggregateTypeUser, user.ID),
		UserID:          user.ID,
		Email:           user.Email,
	}
}
