package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

type storeDocument struct {
	StoreName    string     `bson:"storeName"`
	Location     string     `bson:"location"`
	Quantity     int        `bson:"quantity"`
	LastSoldDate *time.Time `bson:"lastSoldDate,omitempty"`
}

type productDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	SKU         string               `bson:"SKU"`
	Category    string               `bson:"category"`
	Price       primitive.Decimal128 `bson:"price"`
	Description string               `bson:"description"`
	Stores      []storeDocument      `bson:"stores"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func toStoreDocuments(stores []entity.StoreStock) []storeDocument {
	docs := make([]storeDocument, 0, len(stores))
	for _, s := range stores {
		doc := storeDocument{StoreName: s.StoreName, Location: s.Location, Quantity: s.Quantity}
		if s.HasSaleDate() {
			soldAt := s.LastSoldDate.UTC()
			doc.LastSoldDate = &soldAt
		}
		docs = append(docs, doc)
	}
	return docs
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert price %s: %w", d, err)
	}
	return v, nil
}

func (d productDocument) toEntity() (entity.Product, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return entity.Product{}, fmt.Errorf("failed to decode price of product %s: %w", d.ID.Hex(), err)
	}

	stores := make([]entity.StoreStock, 0, len(d.Stores))
	for _, s := range d.Stores {
		store := entity.StoreStock{StoreName: s.StoreName, Location: s.Location, Quantity: s.Quantity}
		if s.LastSoldDate != nil {
			store.LastSoldDate = s.LastSoldDate.UTC()
		}
		stores = append(stores, store)
	}

	return entity.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		SKU:         d.SKU,
		Category:    d.Category,
		Price:       price,
		Description: d.Description,
		Stores:      stores,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

type productRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewProductRepository creates a new ProductRepository backed by MongoDB.
func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepository{collection: db.Collection(productCollectionName), now: time.Now}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]entity.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	p, err := doc.toEntity()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	price, err := toDecimal128(product.Price)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	doc := productDocument{
		Name:        product.Name,
		SKU:         product.SKU,
		Category:    product.Category,
		Price:       price,
		Description: product.Description,
		Stores:      toStoreDocuments(product.Stores),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid.Hex()
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (r *productRepository) Replace(ctx context.Context, id string, product *entity.Product) (*entity.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	price, err := toDecimal128(product.Price)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"SKU":         product.SKU,
			"category":    product.Category,
			"price":       price,
			"description": product.Description,
			"stores":      toStoreDocuments(product.Stores),
			"updatedAt":   r.now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := doc.toEntity()
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ApplyStockChange addresses the store entry by position so that a single
// FindOneAndUpdate both checks and changes it. A sale date guarded by
// ExpectedLastSoldDate is written by a second conditional update.
func (r *productRepository) ApplyStockChange(ctx context.Context, productID string, change entity.StockChange) (int, error) {
	oid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return 0, repository.ErrNotFound
	}

	prefix := fmt.Sprintf("stores.%d.", change.StoreIndex)
	filter := bson.M{
		"_id":                oid,
		prefix + "storeName": change.StoreName,
		prefix + "quantity":  bson.M{"$gte": -change.Delta},
	}
	set := bson.M{"updatedAt": r.now().UTC()}
	if change.ExpectedLastSoldDate.IsZero() {
		set[prefix+"lastSoldDate"] = lastSoldDateValue(change.LastSoldDate)
	}
	update := bson.M{
		"$inc": bson.M{prefix + "quantity": change.Delta},
		"$set": set,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		if change.StoreIndex < 0 || change.StoreIndex >= len(doc.Stores) {
			return 0, fmt.Errorf("store index %d missing after update of product %s", change.StoreIndex, productID)
		}
		if !change.ExpectedLastSoldDate.IsZero() {
			if err := r.replaceSaleDate(ctx, oid, prefix, change); err != nil {
				return 0, err
			}
		}
		return doc.Stores[change.StoreIndex].Quantity, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to update product stock: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to check product existence: %w", err)
	}
	if count == 0 {
		return 0, repository.ErrNotFound
	}
	return 0, repository.ErrStockConflict
}

// replaceSaleDate sets the entry's last sale date only while it still holds
// change.ExpectedLastSoldDate.
func (r *productRepository) replaceSaleDate(ctx context.Context, oid primitive.ObjectID, prefix string, change entity.StockChange) error {
	filter := bson.M{
		"_id":                   oid,
		prefix + "storeName":    change.StoreName,
		prefix + "lastSoldDate": change.ExpectedLastSoldDate.UTC(),
	}
	update := bson.M{"$set": bson.M{prefix + "lastSoldDate": lastSoldDateValue(change.LastSoldDate)}}
	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update last sale date: %w", err)
	}
	return nil
}

func lastSoldDateValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range products {
		p := products[i]
		if err := r.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}
	return nil
}
