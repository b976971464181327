package pgsql

import (
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires up all pgsql-backed repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	return &portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		TransactionRepo: newPgxTransactionRepository(pool, accountRepo),
		UserRepo:        newPgxUserRepository(pool),
	}
}
