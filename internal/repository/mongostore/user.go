package mongostore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/models"
)

type userRepository struct {
	s   *Store
	col *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	start := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(user.Email)
	_, err := r.col.InsertOne(ctx, user)
	err = wrapError(err)
	r.s.observe("insert", ColUsers, start, err)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	start := time.Now()
	user, err := findOne[models.User](ctx, r.col, bson.M{"_id": id})
	r.s.observe("find", ColUsers, start, err)
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	start := time.Now()
	user, err := findOne[models.User](ctx, r.col, bson.M{"email": strings.ToLower(email)})
	r.s.observe("find", ColUsers, start, err)
	return user, err
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	users, err := findMany[models.User](ctx, r.col, bson.M{}, opts)
	r.s.observe("find", ColUsers, start, err)
	return users, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	start := time.Now()
	user.UpdatedAt = time.Now()
	err := updateByID(ctx, r.col, user.ID, bson.M{"$set": bson.M{
		"name":        user.Name,
		"phone":       user.Phone,
		"dateOfBirth": user.DateOfBirth,
		"gender":      user.Gender,
		"address":     user.Address,
		"updatedAt":   user.UpdatedAt,
	}})
	r.s.observe("update", ColUsers, start, err)
	return err
}

func (r *userRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	start := time.Now()
	err := updateByID(ctx, r.col, id, bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}})
	r.s.observe("update", ColUsers, start, err)
	return err
}

func (r *userRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	start := time.Now()
	err := updateByID(ctx, r.col, id, bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}})
	r.s.observe("update", ColUsers, start, err)
	return err
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	start := time.Now()
	err := updateByID(ctx, r.col, id, bson.M{"$set": bson.M{"lastLogin": at}})
	r.s.observe("update", ColUsers, start, err)
	return err
}
