package service

import (
	"context"
	"errors"
	"sync"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

var errStorage = errors.New("storage unavailable")

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
	keys   []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, key string, event entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type reportKey struct {
	generation    int64
	thresholdDays int
}

// mapCache keys reports by generation like the Redis cache does.
type mapCache struct {
	mu            sync.Mutex
	reports       map[reportKey][]entity.DeadInventoryItem
	generation    int64
	invalidations int
	sets          int
}

func newMapCache() *mapCache {
	return &mapCache{reports: map[reportKey][]entity.DeadInventoryItem{}}
}

func (c *mapCache) Get(_ context.Context, thresholdDays int) ([]entity.DeadInventoryItem, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.reports[reportKey{c.generation, thresholdDays}]
	return items, c.generation, ok, nil
}

func (c *mapCache) Set(_ context.Context, generation int64, thresholdDays int, items []entity.DeadInventoryItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.reports[reportKey{generation, thresholdDays}] = items
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.generation++
	return nil
}

// brokenCache fails every read and counts writes.
type brokenCache struct {
	sets int
}

func (c *brokenCache) Get(context.Context, int) ([]entity.DeadInventoryItem, int64, bool, error) {
	return nil, 0, false, errStorage
}

func (c *brokenCache) Set(context.Context, int64, int, []entity.DeadInventoryItem) error {
	c.sets++
	return nil
}

func (c *brokenCache) Invalidate(context.Context) error { return nil }

// failingSaleRepository refuses every write after running beforeFail.
type failingSaleRepository struct {
	repository.SaleRepository
	beforeFail func()
}

func (r failingSaleRepository) Create(context.Context, *entity.Sale) error {
	if r.beforeFail != nil {
		r.beforeFail()
	}
	return errStorage
}

// racingProductRepository runs beforeApply ahead of the first stock change,
// standing in for a concurrent writer.
type racingProductRepository struct {
	repository.ProductRepository
	beforeApply func()
	applies     int
}

func (r *racingProductRepository) ApplyStockChange(ctx context.Context, productID string, change entity.StockChange) (int, error) {
	r.applies++
	if r.applies == 1 && r.beforeApply != nil {
		r.beforeApply()
	}
	return r.ProductRepository.ApplyStockChange(ctx, productID, change)
}

// invalidatingProductRepository runs duringFindAll while a report is being read,
// standing in for a write that lands mid-computation.
type invalidatingProductRepository struct {
	repository.ProductRepository
	duringFindAll func()
}

func (r *invalidatingProductRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	products, err := r.ProductRepository.FindAll(ctx)
	if r.duringFindAll != nil {
		hook := r.duringFindAll
		r.duringFindAll = nil
		hook()
	}
	return products, err
}

// brokenProductRepository fails every read.
type brokenProductRepository struct {
	repository.ProductRepository
}

func (brokenProductRepository) FindAll(context.Context) ([]entity.Product, error) {
	return nil, errStorage
}

func (brokenProductRepository) FindByID(context.Context, string) (*entity.Product, error) {
	return nil, errStorage
}
