package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"mfs-service/internal/adapters/persistence/models"
	"mfs-service/internal/core/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoUserRepository implements UserRepository on a MongoDB collection
type mongoUserRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB-backed user repository
func NewMongoUserRepository(client *mongo.Client, database, collection string) UserRepository {
	return &mongoUserRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// EnsureUserIndexes creates the indexes the users collection relies on.
// The unique indexes back up the pre-insert duplicate check.
func EnsureUserIndexes(ctx context.Context, client *mongo.Client, database, collection string) error {
	coll := client.Database(database).Collection(collection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "mobileNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	doc := models.NewUserDocument(user)
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}

	user.ID = oid.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID gets a user by its ObjectID hex string
func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidUserID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByContact gets a user by mobile number or email
func (r *mongoUserRepository) FindByContact(ctx context.Context, mobileNumber, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"mobileNumber": mobileNumber},
		bson.M{"email": email},
	}})
}

// List lists users with filter and skip/limit paging
func (r *mongoUserRepository) List(ctx context.Context, filter domain.UserFilter, offset, limit int) ([]*domain.User, int64, error) {
	query := buildUserQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, len(docs))
	for i := range docs {
		users[i] = docs[i].ToDomain()
	}
	return users, total, nil
}

// Count counts users matching filter
func (r *mongoUserRepository) Count(ctx context.Context, filter domain.UserFilter) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, buildUserQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// UpdateActivation applies an activation update.
// The bonus credit path filters on bonus=false so concurrent activations
// cannot both match.
func (r *mongoUserRepository) UpdateActivation(ctx context.Context, id string, patch domain.UserPatch, credit *float64) (*domain.ActivationResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidUserID
	}

	set := bson.M{
		"bonus":     true,
		"updatedAt": time.Now().UTC(),
	}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Role != nil {
		set["role"] = string(*patch.Role)
	}

	filter := bson.M{"_id": oid}
	if credit != nil {
		set["balance"] = *credit
		filter["bonus"] = false
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &domain.ActivationResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Ping checks the server connection
func (r *mongoUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close disconnects the client
func (r *mongoUserRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *mongoUserRepository) findOne(ctx context.Context, query bson.M) (*domain.User, error) {
	var doc models.UserDocument
	if err := r.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.ToDomain(), nil
}

// buildUserQuery translates a filter into a MongoDB query document
func buildUserQuery(filter domain.UserFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"mobileNumber": pattern},
			bson.M{"email": pattern},
		}
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	return query
}
