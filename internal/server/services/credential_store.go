package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/dmitrijs2005/authdir/internal/logging"
	"github.com/dmitrijs2005/authdir/internal/server/metrics"
	"github.com/dmitrijs2005/authdir/internal/server/models"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/cache"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/users"
)

// CredentialStore puts the cache in front of the durable users table.
// The table decides what exists; the cache only ever mirrors rows that
// were read from or written to it.
type CredentialStore struct {
	cache   cache.Repository
	users   users.Repository
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewCredentialStore(c cache.Repository, u users.Repository, m *metrics.Metrics, l logging.Logger) *CredentialStore {
	return &CredentialStore{cache: c, users: u, metrics: m, logger: l.With("module", "credential_store")}
}

// Lookup returns the credential for userName, reading through the cache.
// A missing, corrupt or unreachable cache falls back to the durable store.
func (s *CredentialStore) Lookup(ctx context.Context, userName string) (*models.User, error) {
	u, err := s.cache.Get(ctx, userName)
	switch {
	case err == nil:
		s.metrics.CacheLookup(metrics.CacheHit)
		return u, nil
	case errors.Is(err, common.ErrorNotFound):
		s.metrics.CacheLookup(metrics.CacheMiss)
	default:
		s.metrics.CacheLookup(metrics.CacheError)
		s.logger.Warn(ctx, "cache lookup failed, using durable store", "error", err)
	}

	u, err = s.users.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorNotAvailable, err)
	}

	s.populate(ctx, u)
	return u, nil
}

// Create persists a new credential. The durable insert comes first and its
// unique constraint decides conflicts; the cache write afterwards is best
// effort.
func (s *CredentialStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorNotAvailable, err)
	}

	s.populate(ctx, u)
	return u, nil
}

func (s *CredentialStore) populate(ctx context.Context, u *models.User) {
	if err := s.cache.Set(ctx, u); err != nil {
		s.logger.Warn(ctx, "cache write failed", "username", u.UserName, "error", err)
	}
}
