package main

import (
	"context"
	"fmt"

	"resumecms/config"
	"resumecms/config/database"
	contentrepo "resumecms/internal/content/repository"
	publishrepo "resumecms/internal/publish/repository"
	settingsrepo "resumecms/internal/settings/repository"
	"resumecms/pkg/logger"
	"resumecms/store"
)

// backend is the storage selected by STORE_DRIVER.
type backend struct {
	stores   contentrepo.Stores
	ledger   publishrepo.Ledger
	settings settingsrepo.Store
	tx       store.Transactor
	close    func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := contentrepo.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		if err := publishrepo.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		if err := settingsrepo.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &backend{
			stores:   contentrepo.NewPostgresStores(db),
			ledger:   publishrepo.NewPostgresLedger(db),
			settings: settingsrepo.NewPostgresStore(db),
			tx:       store.SQLTx{DB: db},
			close:    func() { db.Close() },
		}, nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if err := contentrepo.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
		if err := publishrepo.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
		var tx store.Transactor = store.NoTx{}
		if cfg.Mongo.Transactions {
			tx = store.MongoTx{Client: client}
		} else {
			logger.Sugar.Warn("MONGO_TRANSACTIONS is off: a failed publish can leave sections partially promoted")
		}
		return &backend{
			stores:   contentrepo.NewMongoStores(db),
			ledger:   publishrepo.NewMongoLedger(db),
			settings: settingsrepo.NewMongoStore(db),
			tx:       tx,
			close:    func() { client.Disconnect(context.Background()) },
		}, nil

	case config.DriverMemory:
		logger.Sugar.Warn("Using in-memory storage: content is lost on restart")
		return &backend{
			stores:   contentrepo.NewMemoryStores(),
			ledger:   publishrepo.NewMemoryLedger(),
			settings: settingsrepo.NewMemoryStore(),
			tx:       store.NoTx{},
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
