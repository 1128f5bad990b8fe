package mongodb

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func withUpdatedAt(fields map[string]any) bson.M {
	m := bson.M(fields)
	m["updated_at"] = time.Now().UTC()
	return m
}

// users

type userRepository struct {
	coll *mongo.Collection
}

func userFilter(f interfaces.UserFilter) bson.M {
	m := bson.M{}
	if cond := idFilter(f.IDs, f.ExcludeID); len(cond) > 0 {
		m["_id"] = cond
	}
	if f.Email != "" {
		m["email"] = f.Email
	}
	if f.Role != "" {
		m["role"] = f.Role
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	return m
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.coll, bson.M{"_id": id})
}

func (r *userRepository) FindOne(ctx context.Context, filter interfaces.UserFilter) (*domain.User, error) {
	return findOne[domain.User](ctx, r.coll, userFilter(filter))
}

func (r *userRepository) Find(ctx context.Context, filter interfaces.UserFilter) ([]*domain.User, error) {
	return findMany[domain.User](ctx, r.coll, userFilter(filter))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return translateError(err)
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	return updateOne[domain.User](ctx, r.coll, bson.M{"_id": id}, withUpdatedAt(update.Fields()))
}

func (r *userRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, r.coll, id)
}

func (r *userRepository) Exists(ctx context.Context, filter interfaces.UserFilter) (bool, error) {
	return exists(ctx, r.coll, userFilter(filter))
}

// courses

type courseRepository struct {
	coll *mongo.Collection
}

func courseFilter(f interfaces.CourseFilter) bson.M {
	m := bson.M{}
	if cond := idFilter(f.IDs, ""); len(cond) > 0 {
		m["_id"] = cond
	}
	if f.Creator != nil {
		m["creator.id"] = f.Creator.ID
		m["creator.type"] = f.Creator.Type
	}
	if f.Category != "" {
		m["category"] = f.Category
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	return m
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return findOne[domain.Course](ctx, r.coll, bson.M{"_id": id})
}

func (r *courseRepository) FindOne(ctx context.Context, filter interfaces.CourseFilter) (*domain.Course, error) {
	return findOne[domain.Course](ctx, r.coll, courseFilter(filter))
}

func (r *courseRepository) Find(ctx context.Context, filter interfaces.CourseFilter) ([]*domain.Course, error) {
	return findMany[domain.Course](ctx, r.coll, courseFilter(filter))
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	_, err := r.coll.InsertOne(ctx, course)
	return translateError(err)
}

func (r *courseRepository) UpdateByID(ctx context.Context, id string, update domain.CourseUpdate) (*domain.Course, error) {
	return updateOne[domain.Course](ctx, r.coll, bson.M{"_id": id}, withUpdatedAt(update.Fields()))
}

func (r *courseRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, r.coll, id)
}

func (r *courseRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *courseRepository) Exists(ctx context.Context, filter interfaces.CourseFilter) (bool, error) {
	return exists(ctx, r.coll, courseFilter(filter))
}

func (r *courseRepository) Count(ctx context.Context, filter interfaces.CourseFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, courseFilter(filter))
}

// ReserveSeat is a single conditional UpdateOne; the document-level write
// lock makes the capacity check and the increment atomic.
func (r *courseRepository) ReserveSeat(ctx context.Context, id string) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": domain.StatusActive,
		"$or": bson.A{
			bson.M{"max_participants": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$current_participants", "$max_participants"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"current_participants": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *courseRepository) SetCapacity(ctx context.Context, id string, capacity int) (bool, error) {
	filter := bson.M{"_id": id, "current_participants": bson.M{"$lte": capacity}}
	update := bson.M{"$set": bson.M{"max_participants": capacity, "updated_at": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (r *courseRepository) ReleaseSeat(ctx context.Context, id string) (bool, error) {
	filter := bson.M{"_id": id, "current_participants": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"current_participants": -1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// instructors

type instructorRepository struct {
	coll *mongo.Collection
}

func instructorFilter(f interfaces.InstructorFilter) bson.M {
	m := bson.M{}
	if f.UserID != "" {
		m["user_id"] = f.UserID
	}
	if f.WorkArea != "" {
		m["work_area"] = f.WorkArea
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	return m
}

func (r *instructorRepository) GetByID(ctx context.Context, id string) (*domain.Instructor, error) {
	return findOne[domain.Instructor](ctx, r.coll, bson.M{"_id": id})
}

func (r *instructorRepository) FindOne(ctx context.Context, filter interfaces.InstructorFilter) (*domain.Instructor, error) {
	return findOne[domain.Instructor](ctx, r.coll, instructorFilter(filter))
}

func (r *instructorRepository) Find(ctx context.Context, filter interfaces.InstructorFilter) ([]*domain.Instructor, error) {
	return findMany[domain.Instructor](ctx, r.coll, instructorFilter(filter))
}

func (r *instructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	_, err := r.coll.InsertOne(ctx, instructor)
	return translateError(err)
}

func (r *instructorRepository) UpdateByID(ctx context.Context, id string, update domain.InstructorUpdate) (*domain.Instructor, error) {
	return updateOne[domain.Instructor](ctx, r.coll, bson.M{"_id": id}, withUpdatedAt(update.Fields()))
}

func (r *instructorRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, r.coll, id)
}

func (r *instructorRepository) Exists(ctx context.Context, filter interfaces.InstructorFilter) (bool, error) {
	return exists(ctx, r.coll, instructorFilter(filter))
}

// schools

type schoolRepository struct {
	coll *mongo.Collection
}

func schoolFilter(f interfaces.SchoolFilter) bson.M {
	m := bson.M{}
	if f.OwnerID != "" {
		m["owner_id"] = f.OwnerID
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	return m
}

func (r *schoolRepository) GetByID(ctx context.Context, id string) (*domain.School, error) {
	return findOne[domain.School](ctx, r.coll, bson.M{"_id": id})
}

func (r *schoolRepository) FindOne(ctx context.Context, filter interfaces.SchoolFilter) (*domain.School, error) {
	return findOne[domain.School](ctx, r.coll, schoolFilter(filter))
}

func (r *schoolRepository) Find(ctx context.Context, filter interfaces.SchoolFilter) ([]*domain.School, error) {
	return findMany[domain.School](ctx, r.coll, schoolFilter(filter))
}

func (r *schoolRepository) Create(ctx context.Context, school *domain.School) error {
	_, err := r.coll.InsertOne(ctx, school)
	return translateError(err)
}

func (r *schoolRepository) UpdateByID(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error) {
	return updateOne[domain.School](ctx, r.coll, bson.M{"_id": id}, withUpdatedAt(update.Fields()))
}

func (r *schoolRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	return deleteOne(ctx, r.coll, id)
}

func (r *schoolRepository) Exists(ctx context.Context, filter interfaces.SchoolFilter) (bool, error) {
	return exists(ctx, r.coll, schoolFilter(filter))
}

// registrations

type registrationRepository struct {
	coll *mongo.Collection
}

func registrationFilter(f interfaces.RegistrationFilter) bson.M {
	m := bson.M{}
	if f.StudentID != "" {
		m["student_id"] = f.StudentID
	}
	if f.CourseID != "" {
		m["course_id"] = f.CourseID
	}
	status := bson.M{}
	if f.Status != "" {
		status["$eq"] = f.Status
	}
	if f.HoldingSeat {
		status["$ne"] = domain.RegistrationCancelled
	}
	if len(status) > 0 {
		m["status"] = status
	}
	return m
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return findOne[domain.Registration](ctx, r.coll, bson.M{"_id": id})
}

func (r *registrationRepository) FindOne(ctx context.Context, filter interfaces.RegistrationFilter) (*domain.Registration, error) {
	return findOne[domain.Registration](ctx, r.coll, registrationFilter(filter))
}

func (r *registrationRepository) Find(ctx context.Context, filter interfaces.RegistrationFilter) ([]*domain.Registration, error) {
	return findMany[domain.Registration](ctx, r.coll, registrationFilter(filter))
}

func (r *registrationRepository) Create(ctx context.Context, registration *domain.Registration) error {
	_, err := r.coll.InsertOne(ctx, registration)
	return translateError(err)
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RegistrationStatus) (*domain.Registration, error) {
	filter := bson.M{"_id": id, "status": from}
	return updateOne[domain.Registration](ctx, r.coll, filter, withUpdatedAt(map[string]any{"status": to}))
}

func (r *registrationRepository) DeleteByID(ctx context.Context, id string, status domain.RegistrationStatus) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "status": status})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *registrationRepository) Exists(ctx context.Context, filter interfaces.RegistrationFilter) (bool, error) {
	return exists(ctx, r.coll, registrationFilter(filter))
}

func (r *registrationRepository) Count(ctx context.Context, filter interfaces.RegistrationFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, registrationFilter(filter))
}
