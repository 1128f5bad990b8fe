package mongodb

import (
	"context"
	"fmt"

	"course-marketplace/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexModels() map[string][]mongo.IndexModel {
	createdAt := mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}
	return map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_users_email")},
			createdAt,
		},
		instructorsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_instructors_user_id")},
			createdAt,
		},
		schoolsCollection: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("idx_schools_owner_id")},
			createdAt,
		},
		coursesCollection: {
			{Keys: bson.D{{Key: "creator.id", Value: 1}, {Key: "creator.type", Value: 1}}, Options: options.Index().SetName("idx_courses_creator")},
			createdAt,
		},
		registrationsCollection: {
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_registrations_student_course"),
			},
			{Keys: bson.D{{Key: "course_id", Value: 1}}},
			createdAt,
		},
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func (g *Gateway) EnsureIndexes(ctx context.Context) error {
	for name, models := range indexModels() {
		created, err := g.db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
		logger.Info("Ensured indexes on %s: %v", name, created)
	}
	return nil
}
