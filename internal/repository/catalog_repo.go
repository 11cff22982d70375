package repository

import (
	"context"
	"time"

	"catalogfinder/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepo handles MongoDB operations for catalogs
type CatalogRepo interface {
	Create(ctx context.Context, catalog *model.Catalog) (string, error)
	GetByID(ctx context.Context, id string) (*model.Catalog, error)
	GetByMerchantID(ctx context.Context, merchantID string) ([]*model.Catalog, error)
	Delete(ctx context.Context, id string) error
}

type catalogRepo struct {
	collection *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		collection: db.Collection("catalogs"),
	}
}

func (r *catalogRepo) Create(ctx context.Context, catalog *model.Catalog) (string, error) {
	catalog.CreatedAt = time.Now()
	catalog.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, catalog)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *catalogRepo) GetByID(ctx context.Context, id string) (*model.Catalog, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var catalog model.Catalog
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&catalog)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	catalog.ID = id
	return &catalog, nil
}

func (r *catalogRepo) GetByMerchantID(ctx context.Context, merchantID string) ([]*model.Catalog, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"merchantId": merchantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var catalogs []*model.Catalog
	if err := cursor.All(ctx, &catalogs); err != nil {
		return nil, err
	}
	return catalogs, nil
}

func (r *catalogRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
