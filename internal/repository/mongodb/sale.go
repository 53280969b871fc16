package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/egannguyen/inventory-ledger/internal/entity"
	"github.com/egannguyen/inventory-ledger/internal/repository"
)

type saleDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ProductID   string             `bson:"productId"`
	ProductName string             `bson:"productName"`
	StoreID     string             `bson:"storeId"`
	StoreName   string             `bson:"storeName"`
	Quantity    int                `bson:"quantity"`
	Date        time.Time          `bson:"date"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d saleDocument) toEntity() entity.Sale {
	return entity.Sale{
		ID:          d.ID.Hex(),
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		StoreID:     d.StoreID,
		StoreName:   d.StoreName,
		Quantity:    d.Quantity,
		Date:        d.Date.UTC(),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type saleRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewSaleRepository creates a new SaleRepository backed by MongoDB.
func NewSaleRepository(db *mongo.Database) repository.SaleRepository {
	return &saleRepository{collection: db.Collection(saleCollectionName), now: time.Now}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	now := r.now().UTC()
	doc := saleDocument{
		ProductID:   sale.ProductID,
		ProductName: sale.ProductName,
		StoreID:     sale.StoreID,
		StoreName:   sale.StoreName,
		Quantity:    sale.Quantity,
		Date:        sale.Date.UTC(),
		CreatedAt:   now,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sale.ID = oid.Hex()
	}
	sale.CreatedAt = now
	return nil
}

func (r *saleRepository) FindAll(ctx context.Context) ([]entity.Sale, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []saleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}

	sales := make([]entity.Sale, 0, len(docs))
	for _, d := range docs {
		sales = append(sales, d.toEntity())
	}
	return sales, nil
}
