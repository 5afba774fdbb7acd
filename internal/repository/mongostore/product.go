package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

type productRepository struct {
	s   *Store
	col *mongo.Collection
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	start := time.Now()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, product)
	err = wrapError(err)
	r.s.observe("insert", ColProducts, start, err)
	return err
}

func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	start := time.Now()
	product, err := findOne[models.Product](ctx, r.col, bson.M{"_id": id})
	r.s.observe("find", ColProducts, start, err)
	return product, err
}

func productQuery(f models.ProductFilter) bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["isActive"] = true
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Collection != "" {
		q["collection"] = f.Collection
	}
	if f.Brand != "" {
		q["brand"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Brand) + "$", "$options": "i"}
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		q["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"brand": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return q
}

func (r *productRepository) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	products, err := findMany[models.Product](ctx, r.col, productQuery(filter), opts)
	r.s.observe("find", ColProducts, start, err)
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	start := time.Now()
	product.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	err = wrapError(err)
	if err == nil && res.MatchedCount == 0 {
		err = repository.ErrNotFound
	}
	r.s.observe("replace", ColProducts, start, err)
	return err
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	err = wrapError(err)
	if err == nil && res.DeletedCount == 0 {
		err = repository.ErrNotFound
	}
	r.s.observe("delete", ColProducts, start, err)
	return err
}

func (r *productRepository) DeleteAll(ctx context.Context) (int64, error) {
	start := time.Now()
	res, err := r.col.DeleteMany(ctx, bson.M{})
	err = wrapError(err)
	r.s.observe("delete", ColProducts, start, err)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
