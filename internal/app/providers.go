package app

import (
	"context"
	"net/http"

	"github.com/honeycarbs/contractsync/internal/config"
	"github.com/honeycarbs/contractsync/internal/domain"
	"github.com/honeycarbs/contractsync/internal/domain/contract"
	"github.com/honeycarbs/contractsync/internal/domain/contract/providers/remote"
	"github.com/honeycarbs/contractsync/internal/metrics"
	storage "github.com/honeycarbs/contractsync/internal/storage/sqlstore"
	"github.com/honeycarbs/contractsync/pkg/contracts"
	"github.com/honeycarbs/contractsync/pkg/logging"
	"github.com/honeycarbs/contractsync/pkg/sqlstore"
)

// Syncer is the wired job: one service plus its metrics collector
type Syncer struct {
	Service   contract.Service
	Collector *metrics.Collector
}

// Sync runs the pipeline once
func (s *Syncer) Sync(ctx context.Context) (domain.SyncResult, error) {
	return s.Service.Sync(ctx)
}

func newSyncer(svc contract.Service, collector *metrics.Collector) *Syncer {
	return &Syncer{Service: svc, Collector: collector}
}

// provideSQLConfig extracts database config from main config
func provideSQLConfig(cfg config.Config) sqlstore.Config {
	return sqlstore.Config{
		Driver:   cfg.DB.Driver,
		Server:   cfg.DB.Server,
		Port:     cfg.DB.Port,
		Database: cfg.DB.Name,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
	}
}

// provideSQLClient opens the database and hands back its close func
func provideSQLClient(cfg sqlstore.Config, logger *logging.Logger) (*sqlstore.Client, func(), error) {
	client, err := sqlstore.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close database", "err", err)
		}
	}

	return client, cleanup, nil
}

// provideTableName extracts the destination table from main config
func provideTableName(cfg config.Config) storage.TableName {
	return storage.TableName(cfg.DB.Table)
}

// provideAPIConfig extracts contracts API config from main config
func provideAPIConfig(cfg config.Config) contracts.Config {
	return contracts.Config{
		Host:       cfg.API.Host,
		APIURL:     cfg.API.URL,
		APIKey:     cfg.API.Key,
		GrantType:  cfg.API.GrantType,
		Username:   cfg.API.Username,
		Password:   cfg.API.Password,
		PageSize:   cfg.API.PageSize,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
	}
}

// provideRemoteProvider creates a remote provider from client
func provideRemoteProvider(client *contracts.Client) (*remote.Provider, error) {
	return remote.NewProvider(client)
}

// provideLimits extracts run limits from main config
func provideLimits(cfg config.Config) contract.Limits {
	return contract.Limits{MaxPages: cfg.MaxPages}
}
