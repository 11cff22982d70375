package repository

import (
	"context"
	"time"

	"catalogfinder/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TreeRepo handles MongoDB operations for tree snapshots. Snapshots are
// append-only: a rebuild inserts a new document and readers keep whichever
// snapshot their session started on.
type TreeRepo interface {
	Insert(ctx context.Context, snapshot *model.TreeSnapshot) (string, error)
	GetByID(ctx context.Context, id string) (*model.TreeSnapshot, error)
	GetLatestByCatalogID(ctx context.Context, catalogID string) (*model.TreeSnapshot, error)
}

type treeRepo struct {
	collection *mongo.Collection
}

// NewTreeRepo creates a new tree snapshot repository
func NewTreeRepo(db *mongo.Database) TreeRepo {
	return &treeRepo{
		collection: db.Collection("tree_snapshots"),
	}
}

func (r *treeRepo) Insert(ctx context.Context, snapshot *model.TreeSnapshot) (string, error) {
	snapshot.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, snapshot)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *treeRepo) GetByID(ctx context.Context, id string) (*model.TreeSnapshot, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var snapshot model.TreeSnapshot
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snapshot.ID = id
	return &snapshot, nil
}

func (r *treeRepo) GetLatestByCatalogID(ctx context.Context, catalogID string) (*model.TreeSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var snapshot model.TreeSnapshot
	err := r.collection.FindOne(ctx, bson.M{"catalogId": catalogID}, opts).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
