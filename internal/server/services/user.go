// Package services contains server-side business logic. This file implements
// UserService, which handles registration, sign-in and session token checks.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/dmitrijs2005/authdir/internal/server/auth"
	"github.com/dmitrijs2005/authdir/internal/server/models"
	"github.com/dmitrijs2005/authdir/internal/server/validation"
)

// Credentials is the subset of CredentialStore used by UserService.
type Credentials interface {
	Lookup(ctx context.Context, userName string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// UserService provides authentication-related operations:
// - Register: create users
// - Authenticate: verify credentials and issue a session token
// - ValidateToken: verify a session token and return its claims
type UserService struct {
	store  Credentials
	hasher auth.PasswordHasher
	tokens *auth.TokenCodec

	// verified against when the user does not exist, so that an unknown
	// name costs about as much as a wrong password
	dummyDigest string
}

func NewUserService(store Credentials, h auth.PasswordHasher, tc *auth.TokenCodec) (*UserService, error) {
	dummy, err := h.Hash("unknown-user-placeholder")
	if err != nil {
		return nil, fmt.Errorf("dummy digest: %w", err)
	}
	return &UserService{store: store, hasher: h, tokens: tc, dummyDigest: dummy}, nil
}

// Register creates a user after validating role, username and password in
// that order.
func (s *UserService) Register(ctx context.Context, userName, password, role string) (*models.User, error) {
	if !validation.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role", common.ErrorValidation)
	}
	if !validation.ValidUsername(userName) {
		return nil, fmt.Errorf("%w: username must be at least 4 characters", common.ErrorValidation)
	}
	if !validation.ValidPassword(password) {
		return nil, fmt.Errorf("%w: password must be 4 to %d bytes long", common.ErrorValidation, validation.MaxPasswordLength)
	}

	// Create reports a name taken after this check.
	_, err := s.store.Lookup(ctx, userName)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorEncoding, err)
	}

	u, err := s.store.Create(ctx, &models.User{UserName: userName, PasswordHash: digest, Role: role})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks the password and issues a session token. An unknown
// user and a wrong password both yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (string, auth.SessionClaims, error) {
	if !validation.ValidUsername(userName) || !validation.ValidPassword(password) {
		return "", auth.SessionClaims{}, fmt.Errorf("%w: username must be at least 4 characters and password 4 to %d bytes long", common.ErrorValidation, validation.MaxPasswordLength)
	}

	user, err := s.store.Lookup(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return "", auth.SessionClaims{}, common.ErrorUnauthorized
		}
		return "", auth.SessionClaims{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", auth.SessionClaims{}, common.ErrorUnauthorized
	}

	return s.tokens.Issue(userName, user.Role)
}

// ValidateToken returns the claims carried by a valid, unexpired token.
func (s *UserService) ValidateToken(ctx context.Context, token string) (auth.SessionClaims, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return auth.SessionClaims{}, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return claims, nil
}
