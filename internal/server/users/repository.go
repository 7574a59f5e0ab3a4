// Package users manages token service accounts and their refresh tokens.
package users

import (
	"context"
	"time"
)

// Repository stores accounts. GetUserByLogin returns common.ErrNotFound
// for unknown names; Create returns ErrUserExists for taken ones.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByLogin(ctx context.Context, login string) (*User, error)
}

// TokenRepository stores refresh tokens. Find returns common.ErrNotFound
// for unknown or deleted tokens.
type TokenRepository interface {
	CreateToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	FindToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteToken(ctx context.Context, token string) error
}
