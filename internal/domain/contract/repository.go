package contract

import (
	"context"

	"github.com/honeycarbs/contractsync/internal/domain"
)

// Repository reads and appends to the destination table
type Repository interface {
	// ExistingCodes returns every code already stored
	ExistingCodes(ctx context.Context) (domain.KeySet, error)

	// Append adds rows without checking for existing keys
	Append(ctx context.Context, table domain.Table) (int, error)
}
