package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/infrastructure/database"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteGateway(t *testing.T) *GormGateway {
	t.Helper()
	db, err := database.NewConnection(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	gateway := NewGormGateway(db)
	t.Cleanup(func() { _ = gateway.Close() })
	return gateway
}

// eachGateway runs fn against every backend that can run in-process.
func eachGateway(t *testing.T, fn func(t *testing.T, g interfaces.Gateway)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryGateway()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteGateway(t)) })
}

func testCourse(capacity *int) *domain.Course {
	price := 80.0
	return domain.NewCourse(&domain.CreateCourseRequest{
		Title:           "Morning Yoga",
		Description:     "Vinyasa flow",
		Price:           &price,
		Category:        domain.CategoryTraining,
		TargetAudience:  "Everyone",
		Creator:         domain.CreatorRef{ID: domain.NewID(), Type: domain.CreatorInstructor},
		MaxParticipants: capacity,
	})
}

func intPtr(v int) *int { return &v }

func TestGateway_ReserveSeatHonoursCapacity(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		course := testCourse(intPtr(2))
		require.NoError(t, g.Courses().Create(ctx, course))

		for i := 0; i < 2; i++ {
			ok, err := g.Courses().ReserveSeat(ctx, course.ID)
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := g.Courses().ReserveSeat(ctx, course.ID)
		require.NoError(t, err)
		assert.False(t, ok, "third seat on a two seat course")

		ok, err = g.Courses().ReleaseSeat(ctx, course.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		stored, err := g.Courses().GetByID(ctx, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.CurrentParticipants)
	})
}

func TestGateway_ReserveSeatRequiresActiveCourse(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		course := testCourse(nil)
		require.NoError(t, g.Courses().Create(ctx, course))

		inactive := domain.StatusInactive
		_, err := g.Courses().UpdateByID(ctx, course.ID, domain.CourseUpdate{Status: &inactive})
		require.NoError(t, err)

		ok, err := g.Courses().ReserveSeat(ctx, course.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = g.Courses().ReserveSeat(ctx, domain.NewID())
		require.NoError(t, err)
		assert.False(t, ok, "unknown course")
	})
}

func TestGateway_ReleaseSeatNeverGoesNegative(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		course := testCourse(intPtr(3))
		require.NoError(t, g.Courses().Create(ctx, course))

		ok, err := g.Courses().ReleaseSeat(ctx, course.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := g.Courses().GetByID(ctx, course.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, stored.CurrentParticipants)
	})
}

func TestGateway_DuplicateRegistration(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		studentID, courseID := domain.NewID(), domain.NewID()

		require.NoError(t, g.Registrations().Create(ctx, domain.NewRegistration(studentID, courseID)))

		err := g.Registrations().Create(ctx, domain.NewRegistration(studentID, courseID))
		assert.True(t, errors.Is(err, interfaces.ErrDuplicateKey), "got %v", err)

		require.NoError(t, g.Registrations().Create(ctx, domain.NewRegistration(domain.NewID(), courseID)))
	})
}

func TestGateway_DuplicateEmail(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		require.NoError(t, g.Users().Create(ctx, domain.NewUser("Dana", "dana@example.com", "0501234567", "hash", domain.RoleStudent)))

		err := g.Users().Create(ctx, domain.NewUser("Dana Two", "dana@example.com", "0501234567", "hash", domain.RoleStudent))
		assert.True(t, errors.Is(err, interfaces.ErrDuplicateKey), "got %v", err)

		found, err := g.Users().FindOne(ctx, interfaces.UserFilter{Email: "dana@example.com"})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Dana", found.FullName)
	})
}

func TestGateway_RegistrationQueries(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		courseID := domain.NewID()
		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		var ids []string
		for i, status := range []domain.RegistrationStatus{
			domain.RegistrationPending,
			domain.RegistrationPaid,
			domain.RegistrationCancelled,
		} {
			r := domain.NewRegistration(domain.NewID(), courseID)
			r.Status = status
			r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			r.UpdatedAt = r.CreatedAt
			require.NoError(t, g.Registrations().Create(ctx, r))
			ids = append(ids, r.ID)
		}

		held, err := g.Registrations().Count(ctx, interfaces.RegistrationFilter{CourseID: courseID, HoldingSeat: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), held)

		all, err := g.Registrations().Find(ctx, interfaces.RegistrationFilter{CourseID: courseID})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})

		updated, err := g.Registrations().UpdateStatus(ctx, ids[2], domain.RegistrationCancelled, domain.RegistrationPaid)
		require.NoError(t, err)
		assert.Equal(t, domain.RegistrationPaid, updated.Status)

		missing, err := g.Registrations().GetByID(ctx, domain.NewID())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestGateway_UpdateStatusRequiresExpectedStatus(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		r := domain.NewRegistration(domain.NewID(), domain.NewID())
		require.NoError(t, g.Registrations().Create(ctx, r))

		first, err := g.Registrations().UpdateStatus(ctx, r.ID, domain.RegistrationPending, domain.RegistrationCancelled)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, domain.RegistrationCancelled, first.Status)

		// a second writer that also read Pending must miss
		second, err := g.Registrations().UpdateStatus(ctx, r.ID, domain.RegistrationPending, domain.RegistrationCancelled)
		require.NoError(t, err)
		assert.Nil(t, second)

		unknown, err := g.Registrations().UpdateStatus(ctx, domain.NewID(), domain.RegistrationPending, domain.RegistrationPaid)
		require.NoError(t, err)
		assert.Nil(t, unknown)
	})
}

func TestGateway_DeleteRegistrationRequiresExpectedStatus(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		r := domain.NewRegistration(domain.NewID(), domain.NewID())
		require.NoError(t, g.Registrations().Create(ctx, r))

		deleted, err := g.Registrations().DeleteByID(ctx, r.ID, domain.RegistrationPaid)
		require.NoError(t, err)
		assert.False(t, deleted, "status does not match")

		stored, err := g.Registrations().GetByID(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)

		deleted, err = g.Registrations().DeleteByID(ctx, r.ID, domain.RegistrationPending)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = g.Registrations().DeleteByID(ctx, r.ID, domain.RegistrationPending)
		require.NoError(t, err)
		assert.False(t, deleted, "already gone")
	})
}

func TestGateway_SetCapacityKeepsOccupancy(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		course := testCourse(intPtr(5))
		require.NoError(t, g.Courses().Create(ctx, course))
		for i := 0; i < 3; i++ {
			ok, err := g.Courses().ReserveSeat(ctx, course.ID)
			require.NoError(t, err)
			require.True(t, ok)
		}

		ok, err := g.Courses().SetCapacity(ctx, course.ID, 2)
		require.NoError(t, err)
		assert.False(t, ok, "below the three held seats")

		ok, err = g.Courses().SetCapacity(ctx, course.ID, 3)
		require.NoError(t, err)
		assert.True(t, ok)

		stored, err := g.Courses().GetByID(ctx, course.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.MaxParticipants)
		assert.Equal(t, 3, *stored.MaxParticipants)
		assert.Equal(t, 3, stored.CurrentParticipants)

		ok, err = g.Courses().ReserveSeat(ctx, course.ID)
		require.NoError(t, err)
		assert.False(t, ok, "course is now full")

		ok, err = g.Courses().SetCapacity(ctx, domain.NewID(), 10)
		require.NoError(t, err)
		assert.False(t, ok, "unknown course")
	})
}

func TestGateway_CourseFiltersAndDeleteAll(t *testing.T) {
	eachGateway(t, func(t *testing.T, g interfaces.Gateway) {
		ctx := context.Background()
		first := testCourse(nil)
		second := testCourse(intPtr(10))
		second.Category = domain.CategoryTherapy
		for _, c := range []*domain.Course{first, second} {
			require.NoError(t, g.Courses().Create(ctx, c))
		}

		therapy, err := g.Courses().Find(ctx, interfaces.CourseFilter{Category: domain.CategoryTherapy})
		require.NoError(t, err)
		require.Len(t, therapy, 1)
		assert.Equal(t, second.ID, therapy[0].ID)
		require.NotNil(t, therapy[0].MaxParticipants)
		assert.Equal(t, 10, *therapy[0].MaxParticipants)

		byCreator, err := g.Courses().Find(ctx, interfaces.CourseFilter{Creator: &first.Creator})
		require.NoError(t, err)
		require.Len(t, byCreator, 1)
		assert.Equal(t, first.ID, byCreator[0].ID)
		assert.Nil(t, byCreator[0].MaxParticipants)

		removed, err := g.Courses().DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		n, err := g.Courses().Count(ctx, interfaces.CourseFilter{})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestGormGateway_TransactionRollsBack(t *testing.T) {
	g := newSQLiteGateway(t)
	ctx := context.Background()
	course := testCourse(intPtr(5))
	require.NoError(t, g.Courses().Create(ctx, course))
	require.True(t, g.Transactional())

	boom := errors.New("boom")
	err := g.WithTransaction(ctx, func(ctx context.Context, tx interfaces.Gateway) error {
		ok, err := tx.Courses().ReserveSeat(ctx, course.ID)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := g.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentParticipants)
}

func TestMemoryGateway_IsNotTransactional(t *testing.T) {
	g := NewMemoryGateway()
	assert.False(t, g.Transactional())
	assert.NoError(t, g.Ping(context.Background()))
}
