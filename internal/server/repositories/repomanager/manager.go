// Package repomanager opens the durable store and vends repositories bound to
// it, including schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authdir/internal/dbx"
	"github.com/dmitrijs2005/authdir/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
