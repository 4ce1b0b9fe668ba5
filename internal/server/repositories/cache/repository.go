// Package cache holds the read-through credential cache. Records are keyed by
// username and carry the password digest and role; the durable store stays
// the source of truth.
package cache

import (
	"context"

	"github.com/dmitrijs2005/authdir/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound on a miss or an undecodable record and
	// common.ErrorNotAvailable when the cache cannot be reached.
	Get(ctx context.Context, userName string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
}
