// Package usersvc holds the user domain model. Tasks reference users through
// the task's assigned-user field only; a user's tasks are derived by querying
// the task store, never held as an in-memory back-reference.
package usersvc

import (
	"context"
	"errors"
	"strings"
	"time"
)

type User struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:254;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `gorm:"size:100" json:"createdBy"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
	UpdatedBy string     `gorm:"size:100" json:"updatedBy,omitempty"`
}

// ValidationError carries every input violation found, in the order checked.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// NewUser validates the inputs and returns a user ready to be stored. Email
// uniqueness is the store's concern, checked by the service before saving.
func NewUser(name, email, createdBy string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	var messages []string
	if name == "" {
		messages = append(messages, "Name cannot be empty")
	}
	if email == "" {
		messages = append(messages, "Email cannot be empty")
	}
	if len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}

	return &User{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}, nil
}

// UserRepository is the store abstraction for users. Email lookups are exact
// byte matches; no case folding is applied anywhere.
type UserRepository interface {
	Find(ctx context.Context, id uint64) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Create(ctx context.Context, user *User) error
	Delete(ctx context.Context, user *User) error
	Transact(ctx context.Context, fn func(UserRepository) error) error
}

var ErrUserNotFound = errors.New("user not found")
