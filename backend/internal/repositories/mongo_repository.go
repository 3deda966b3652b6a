package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

const (
	lotteriesCollection    = "lotteries"
	applicationsCollection = "applications"
	mongoTimeout           = 10 * time.Second
)

type MongoRepository struct {
	client       *mongo.Client
	lotteries    *mongo.Collection
	applications *mongo.Collection
}

func NewMongoRepository(ctx context.Context, uri, database string) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoRepository{
		client:       client,
		lotteries:    db.Collection(lotteriesCollection),
		applications: db.Collection(applicationsCollection),
	}, nil
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Save(ctx context.Context, lotteries []domain.Lottery) error {
	if len(lotteries) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(lotteries))
	for _, l := range lotteries {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": l.ID}).
			SetReplacement(l).
			SetUpsert(true))
	}
	if _, err := r.lotteries.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("save lotteries: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]domain.Lottery, error) {
	return r.findLotteries(ctx, bson.D{})
}

func (r *MongoRepository) FindByType(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	return r.findLotteries(ctx, bson.D{{Key: "lottery_type", Value: t}})
}

func (r *MongoRepository) findLotteries(ctx context.Context, filter bson.D) ([]domain.Lottery, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lottery_type", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.lotteries.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	lotteries := make([]domain.Lottery, 0)
	if err := cursor.All(ctx, &lotteries); err != nil {
		return nil, err
	}
	return lotteries, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (domain.Lottery, error) {
	var l domain.Lottery
	err := r.lotteries.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return l, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l, err
}

func (r *MongoRepository) SaveApplications(ctx context.Context, runID string, results []domain.ApplicationResult) error {
	if len(results) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(results))
	for _, res := range withRunID(runID, results) {
		docs = append(docs, res)
	}
	if _, err := r.applications.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("save applications: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindApplications(ctx context.Context) ([]domain.ApplicationResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "processed_at", Value: 1}})
	cursor, err := r.applications.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]domain.ApplicationResult, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
