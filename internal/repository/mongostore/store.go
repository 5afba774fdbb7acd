// Package mongostore implements the repositories on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/repository"
)

const (
	ColUsers    = "users"
	ColProducts = "products"
	ColCarts    = "carts"
	ColOrders   = "orders"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logging.Logger
}

// Connect dials uri, verifies the connection and makes sure the indexes the
// repositories rely on exist.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration, log *logging.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName), log: log.Named("mongostore")}
	if err := s.ensureIndexes(ctx); err != nil {
		s.log.WithError(err).Warn("ensure indexes failed")
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Repositories bundles the collection repositories for the services.
func (s *Store) Repositories() *repository.Repositories {
	return repository.NewRepositories(
		&userRepository{s: s, col: s.col(ColUsers)},
		&productRepository{s: s, col: s.col(ColProducts)},
		&cartRepository{s: s, col: s.col(ColCarts)},
		&orderRepository{s: s, col: s.col(ColOrders)},
		s.Close,
	)
}

func (s *Store) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},
		{ColCarts, bson.D{{Key: "userId", Value: 1}}, true},
		{ColProducts, bson.D{{Key: "category", Value: 1}}, false},
		{ColProducts, bson.D{{Key: "collection", Value: 1}}, false},
		{ColProducts, bson.D{{Key: "createdAt", Value: -1}}, false},
		{ColOrders, bson.D{{Key: "userId", Value: 1}, {Key: "orderDate", Value: -1}}, false},
		{ColOrders, bson.D{{Key: "paymentId", Value: 1}}, false},
		{ColOrders, bson.D{{Key: "status", Value: 1}}, false},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.col, err)
		}
	}
	return nil
}

func (s *Store) observe(op, col string, start time.Time, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		err = nil
	}
	s.log.DBQueryLog(op, col, time.Since(start), err)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	results := []*T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func updateByID(ctx context.Context, col *mongo.Collection, id any, update bson.M) error {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
