package domain

import "errors"

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrInvalidLoginResponse = errors.New("invalid response from server")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
)
