package contract

import (
	"context"

	"github.com/honeycarbs/contractsync/internal/domain"
)

// Source is the remote API holding contract records
type Source interface {
	// e.g. "contracts-api"
	Name() string

	// Authenticate obtains a fresh credential
	Authenticate(ctx context.Context) (domain.Credential, error)

	// Page returns the records of one page; an empty slice ends the walk
	Page(ctx context.Context, cred domain.Credential, page int) ([]domain.Contract, error)
}
