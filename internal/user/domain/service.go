package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	Name  string
	Email string
	Role  string
}

type GetUserRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateUserRequest) (User, error)
	GetByID(context.Context, GetUserRequest) (User, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrEmailExists  = errors.New("email_exists")
	ErrNotFound     = errors.New("not_found")
)
