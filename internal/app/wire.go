//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/honeycarbs/contractsync/internal/config"
	"github.com/honeycarbs/contractsync/internal/domain/contract"
	"github.com/honeycarbs/contractsync/internal/domain/contract/providers/remote"
	"github.com/honeycarbs/contractsync/internal/metrics"
	storage "github.com/honeycarbs/contractsync/internal/storage/sqlstore"
	"github.com/honeycarbs/contractsync/pkg/contracts"
	"github.com/honeycarbs/contractsync/pkg/logging"
)

// InitializeSyncer creates a Syncer with all dependencies wired up
func InitializeSyncer(cfg config.Config, logger *logging.Logger) (*Syncer, func(), error) {
	wire.Build(
		// Infrastructure - destination database
		provideSQLConfig,
		provideSQLClient,
		provideTableName,

		// Infrastructure - contracts API
		provideAPIConfig,
		contracts.NewClient,

		// Repositories
		storage.NewContractRepository,
		wire.Bind(new(contract.Repository), new(*storage.ContractRepository)),

		// Sources
		provideRemoteProvider,
		wire.Bind(new(contract.Source), new(*remote.Provider)),

		// Metrics
		metrics.NewCollector,
		wire.Bind(new(contract.Recorder), new(*metrics.Collector)),

		// Services
		provideLimits,
		contract.NewServiceWithDeps,
		newSyncer,
	)

	return &Syncer{}, nil, nil
}
