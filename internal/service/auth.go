// Package service contains the authentication flow and the background jobs
// that run next to the HTTP server
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/model"
	"bitwise74/user-api/internal/repository"
	"bitwise74/user-api/pkg/security"
)

var ErrInvalidCredentials = apperr.New(apperr.ErrUnauthenticated, "Incorrect username or password")

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *model.User
}

// Authenticator ties the credential verifier, the token issuer and the
// ledger together
type Authenticator struct {
	Users  *repository.UserStore
	Ledger *repository.TokenLedger
	Tokens *security.TokenIssuer
	Argon  *security.ArgonHash
}

// Login checks the credentials and issues a recorded token. Unknown users and
// wrong passwords fail with the same error.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := a.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			a.Argon.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	ok, err := a.Argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := a.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	if err := a.Ledger.Record(ctx, token, user.ID); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

// Validate resolves a bearer token to its live owner. It never changes any
// state.
func (a *Authenticator) Validate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, apperr.New(apperr.ErrUnauthenticated, "Missing authorization token")
	}

	claims, err := a.Tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, apperr.ErrExpired
		}

		return nil, apperr.ErrUnauthenticated
	}

	active, err := a.Ledger.IsActive(ctx, token)
	if err != nil {
		return nil, err
	}

	if !active {
		return nil, apperr.ErrRevoked
	}

	user, err := a.Users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

// Logout blacklists token
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	return a.Ledger.Revoke(ctx, token)
}
