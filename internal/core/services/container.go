package services

import (
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	portssvc "github.com/dhanrajs/fx_exchange_app/internal/core/ports/services"
	"github.com/dhanrajs/fx_exchange_app/internal/platform/config"
)

// NewServiceContainer wires all services against the given repositories.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, cfg *config.Config) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo),
		Ledger:  NewLedgerService(repos.TransactionRepo, cfg.SettlementCurrency, cfg.LedgerMaxRetries),
		User:    NewUserService(repos.UserRepo),
	}
}
