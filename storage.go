package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/egannguyen/inventory-ledger/internal/config"
	"github.com/egannguyen/inventory-ledger/internal/repository"
	"github.com/egannguyen/inventory-ledger/internal/repository/memory"
	"github.com/egannguyen/inventory-ledger/internal/repository/mongodb"
	"github.com/egannguyen/inventory-ledger/internal/repository/postgres"
)

type storage struct {
	products repository.ProductRepository
	sales    repository.SaleRepository
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return &storage{
			products: mongodb.NewProductRepository(db),
			sales:    mongodb.NewSaleRepository(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					slog.Error("Failed to disconnect mongodb", "err", err)
				}
			},
		}, nil

	case config.DriverPostgres:
		db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &storage{
			products: postgres.NewProductRepository(db),
			sales:    postgres.NewSaleRepository(db),
			close:    func() { db.Close() },
		}, nil

	case config.DriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			products: memory.NewProductRepository(),
			sales:    memory.NewSaleRepository(),
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
