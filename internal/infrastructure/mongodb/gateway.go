package mongodb

import (
	"context"
	"errors"
	"fmt"

	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection         = "users"
	coursesCollection       = "courses"
	instructorsCollection   = "instructors"
	schoolsCollection       = "schools"
	registrationsCollection = "registrations"
)

var _ interfaces.Gateway = (*Gateway)(nil)

// Gateway implements the persistence gateway on MongoDB.
type Gateway struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

func NewGateway(client *mongo.Client, cfg Config) *Gateway {
	return &Gateway{
		client:       client,
		db:           client.Database(cfg.Database),
		transactions: cfg.Transactions,
	}
}

func (g *Gateway) Users() interfaces.UserRepository {
	return &userRepository{coll: g.db.Collection(usersCollection)}
}

func (g *Gateway) Courses() interfaces.CourseRepository {
	return &courseRepository{coll: g.db.Collection(coursesCollection)}
}

func (g *Gateway) Instructors() interfaces.InstructorRepository {
	return &instructorRepository{coll: g.db.Collection(instructorsCollection)}
}

func (g *Gateway) Schools() interfaces.SchoolRepository {
	return &schoolRepository{coll: g.db.Collection(schoolsCollection)}
}

func (g *Gateway) Registrations() interfaces.RegistrationRepository {
	return &registrationRepository{coll: g.db.Collection(registrationsCollection)}
}

// WithTransaction runs fn inside a session transaction when transactions
// are enabled. Otherwise fn runs directly and writes are not rolled back.
func (g *Gateway) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Gateway) error) error {
	if !g.transactions {
		return fn(ctx, g)
	}

	sess, err := g.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, g)
	})
	return err
}

func (g *Gateway) Transactional() bool { return g.transactions }

func (g *Gateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx, readpref.Primary())
}

func (g *Gateway) Close() error {
	return g.client.Disconnect(context.Background())
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", interfaces.ErrDuplicateKey, err)
	}
	return err
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	opts := options.FindOne().SetSort(newestFirst)
	if err := coll.FindOne(ctx, filter, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// updateOne applies $set to the first match of filter and returns the
// document after the update, or nil when nothing matched.
func updateOne[T any](ctx context.Context, coll *mongo.Collection, filter, fields bson.M) (*T, error) {
	var out T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &out, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func idFilter(ids []string, exclude string) bson.M {
	cond := bson.M{}
	if ids != nil {
		cond["$in"] = ids
	}
	if exclude != "" {
		cond["$ne"] = exclude
	}
	return cond
}
