package services

// ServiceContainer holds instances of all the application services. This is the
// main entry point for accessing service functionality from the handlers.
type ServiceContainer struct {
	Account AccountSvcFacade
	Ledger  LedgerSvcFacade
	User    UserSvcFacade
}
