package domain

import "context"

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"accessToken"`
	User  User   `json:"user"`
}

type Service interface {
	// SignUp creates the account and its mirrored profile record.
	SignUp(ctx context.Context, req SignUpRequest) (User, error)
	// Login verifies credentials and mints a bearer token.
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	// Verify resolves a bearer token to the caller's principal.
	Verify(ctx context.Context, rawToken string) (Principal, error)
	// Profile loads the caller's mirrored profile record.
	Profile(ctx context.Context, userID string) (User, error)
	// FindParentByEmail scans profile records for a parent account with
	// the given email. Returns nil when no such account exists.
	FindParentByEmail(ctx context.Context, email string) (*User, error)
}
