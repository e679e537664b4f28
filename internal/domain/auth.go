package domain

import "context"

// TokenPair is the access and refresh credential issued by the authentication service.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether neither token is set.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

type LoginResponse struct {
	Success bool
	Message string
	Tokens  TokenPair
}

type RegisterResponse struct {
	Success bool
	Message string
	User    User
}

// AuthService is the authentication backend consumed by the session manager.
// CurrentUser relies on the transport to attach the bearer token.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Register(ctx context.Context, email, password string) (*RegisterResponse, error)
	CurrentUser(ctx context.Context) (*User, error)
}
