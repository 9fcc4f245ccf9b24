package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
}
