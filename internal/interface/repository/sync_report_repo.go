package repository

import (
	"context"

	"logsync-service/internal/domain/entity"
	"logsync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSyncReportRepository implements SyncReportRepository
type MongoSyncReportRepository struct {
	collection *mongo.Collection
}

// NewMongoSyncReportRepository creates a new sync report repository
func NewMongoSyncReportRepository(db *mongo.Database) repository.SyncReportRepository {
	collection := db.Collection("sync_reports")

	// Create index on startedAt for latest-report queries
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.M{"startedAt": -1},
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoSyncReportRepository{
		collection: collection,
	}
}

// Save archives one sync cycle report
func (r *MongoSyncReportRepository) Save(ctx context.Context, report *entity.SyncReport) error {
	if report.ID == "" {
		report.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

// FindLatest returns the most recent sync cycle report
func (r *MongoSyncReportRepository) FindLatest(ctx context.Context) (*entity.SyncReport, error) {
	var report entity.SyncReport
	opts := options.FindOne().SetSort(bson.M{"startedAt": -1})
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
