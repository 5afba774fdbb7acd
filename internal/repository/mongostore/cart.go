package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

type cartRepository struct {
	s   *Store
	col *mongo.Collection
}

func (r *cartRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	start := time.Now()
	cart, err := findOne[models.Cart](ctx, r.col, bson.M{"userId": userID})
	r.s.observe("find", ColCarts, start, err)
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	start := time.Now()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, cart)
	err = wrapError(err)
	r.s.observe("insert", ColCarts, start, err)
	return err
}

func (r *cartRepository) Save(ctx context.Context, cart *models.Cart) error {
	start := time.Now()
	now := time.Now()

	filter := bson.M{"_id": cart.ID, "version": cart.Version}
	update := bson.M{
		"$set": bson.M{
			"items":       cart.Items,
			"totalAmount": cart.TotalAmount,
			"updatedAt":   now,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	err = wrapError(err)
	if err == nil && res.MatchedCount == 0 {
		err = repository.ErrConflict
	}
	r.s.observe("update", ColCarts, start, err)
	if err != nil {
		return err
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}
