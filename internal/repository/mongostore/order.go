package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/models"
)

type orderRepository struct {
	s   *Store
	col *mongo.Collection
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	start := time.Now()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, order)
	err = wrapError(err)
	r.s.observe("insert", ColOrders, start, err)
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	start := time.Now()
	order, err := findOne[models.Order](ctx, r.col, bson.M{"_id": id})
	r.s.observe("find", ColOrders, start, err)
	return order, err
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}})

func (r *orderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	start := time.Now()
	orders, err := findMany[models.Order](ctx, r.col, bson.M{"userId": userID}, newestFirst)
	r.s.observe("find", ColOrders, start, err)
	return orders, err
}

func (r *orderRepository) List(ctx context.Context, status string) ([]*models.Order, error) {
	start := time.Now()
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	orders, err := findMany[models.Order](ctx, r.col, filter, newestFirst)
	r.s.observe("find", ColOrders, start, err)
	return orders, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	start := time.Now()
	err := updateByID(ctx, r.col, id, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	r.s.observe("update", ColOrders, start, err)
	return err
}

func (r *orderRepository) MarkPayment(ctx context.Context, paymentID, status string) (int64, error) {
	start := time.Now()
	res, err := r.col.UpdateMany(ctx,
		bson.M{"paymentId": paymentID},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}},
	)
	err = wrapError(err)
	r.s.observe("update", ColOrders, start, err)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}
