package service

import (
	"errors"
	"sync"
	"testing"

	"course-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRegistration_Success(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, domain.RoleStudent)
	course := f.addCourse(t, 3)

	registration, err := f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
	require.NoError(t, err)

	assert.True(t, domain.IsValidID(registration.ID))
	assert.Equal(t, domain.RegistrationPending, registration.Status)
	assert.Equal(t, student.ID, registration.StudentID)
	assert.Equal(t, course.ID, registration.CourseID)
	assert.Equal(t, 1, f.occupancy(t, course.ID))
	assert.Equal(t, []string{domain.TopicRegistrationCreated}, f.events.topics())
}

func TestCreateRegistration_CheckOrder(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, domain.RoleStudent)

	t.Run("missing ids", func(t *testing.T) {
		_, err := f.registrations.CreateRegistration(f.ctx, "", domain.NewID())
		assert.ErrorIs(t, err, domain.ErrMissingFields)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.registrations.CreateRegistration(f.ctx, "not-an-id", domain.NewID())
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("unknown student before unknown course", func(t *testing.T) {
		_, err := f.registrations.CreateRegistration(f.ctx, domain.NewID(), domain.NewID())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := f.registrations.CreateRegistration(f.ctx, student.ID, domain.NewID())
		assert.ErrorIs(t, err, domain.ErrCourseNotFound)
	})

	t.Run("duplicate before inactive", func(t *testing.T) {
		course := f.addCourse(t, 5)
		_, err := f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
		require.NoError(t, err)

		inactive := domain.StatusInactive
		_, err = f.gateway.Courses().UpdateByID(f.ctx, course.ID, domain.CourseUpdate{Status: &inactive})
		require.NoError(t, err)

		_, err = f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
		assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
	})

	t.Run("inactive before full", func(t *testing.T) {
		course := f.addCourse(t, 1)
		_, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
		require.NoError(t, err)

		inactive := domain.StatusInactive
		_, err = f.gateway.Courses().UpdateByID(f.ctx, course.ID, domain.CourseUpdate{Status: &inactive})
		require.NoError(t, err)

		_, err = f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
		assert.ErrorIs(t, err, domain.ErrCourseInactive)
	})
}

func TestCreateRegistration_SequentialCapacity(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 2)

	for i := 0; i < 2; i++ {
		if _, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID); err != nil {
			t.Fatalf("Registration %d failed: %v", i, err)
		}
	}

	_, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
	if !errors.Is(err, domain.ErrCourseFull) {
		t.Fatalf("Expected course full, got %v", err)
	}
	if got := f.occupancy(t, course.ID); got != 2 {
		t.Errorf("Expected occupancy 2, got %d", got)
	}
}

func TestCreateRegistration_ConcurrentNeverExceedsCapacity(t *testing.T) {
	const capacity, extra = 10, 15

	f := newFixture(t)
	course := f.addCourse(t, capacity)

	students := make([]*domain.User, capacity+extra)
	for i := range students {
		students[i] = f.addUser(t, domain.RoleStudent)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		full     int
		other    []error
	)
	start := make(chan struct{})
	for _, student := range students {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			<-start
			_, err := f.registrations.CreateRegistration(f.ctx, studentID, course.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, domain.ErrCourseFull):
				full++
			default:
				other = append(other, err)
			}
		}(student.ID)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, capacity, accepted)
	assert.Equal(t, extra, full)
	assert.Equal(t, capacity, f.occupancy(t, course.ID))

	stored, err := f.registrations.GetRegistrationsByCourse(f.ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, stored, capacity)
}

func TestCreateRegistration_UnlimitedCourse(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, -1)

	for i := 0; i < 5; i++ {
		_, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, f.occupancy(t, course.ID))
}

func TestCreateRegistration_DuplicateAfterStatusChange(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, domain.RoleStudent)
	course := f.addCourse(t, 5)

	registration, err := f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
	require.NoError(t, err)

	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, registration.ID, domain.RegistrationCancelled)
	require.NoError(t, err)

	_, err = f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
	assert.Equal(t, 0, f.occupancy(t, course.ID))
}

func TestCreateRegistration_ReleasesSeatWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, domain.RoleStudent)
	course := f.addCourse(t, 1)

	svc := NewRegistrationService(failingCreateGateway{f.gateway}, nil, nil, nil)
	_, err := svc.CreateRegistration(f.ctx, student.ID, course.ID)

	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, 0, f.occupancy(t, course.ID))
}

func TestUpdateRegistrationStatus_SeatAccounting(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 1)
	first := f.addUser(t, domain.RoleStudent)
	second := f.addUser(t, domain.RoleStudent)

	registration, err := f.registrations.CreateRegistration(f.ctx, first.ID, course.ID)
	require.NoError(t, err)

	paid, err := f.registrations.UpdateRegistrationStatus(f.ctx, registration.ID, domain.RegistrationPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationPaid, paid.Status)
	assert.Equal(t, 1, f.occupancy(t, course.ID))

	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, registration.ID, domain.RegistrationCancelled)
	require.NoError(t, err)
	assert.Equal(t, 0, f.occupancy(t, course.ID))

	_, err = f.registrations.CreateRegistration(f.ctx, second.ID, course.ID)
	require.NoError(t, err)

	// the seat went to someone else
	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, registration.ID, domain.RegistrationPending)
	assert.ErrorIs(t, err, domain.ErrCourseFull)
	assert.Equal(t, 1, f.occupancy(t, course.ID))

	stored, err := f.gateway.Registrations().GetByID(f.ctx, registration.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationCancelled, stored.Status)
}

func TestUpdateRegistrationStatus_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.registrations.UpdateRegistrationStatus(f.ctx, "bad", domain.RegistrationPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, domain.NewID(), "Refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, domain.NewID(), domain.RegistrationPaid)
	assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)
}

func TestDeleteRegistration_FreesSeat(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 1)
	student := f.addUser(t, domain.RoleStudent)

	registration, err := f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.occupancy(t, course.ID))

	require.NoError(t, f.registrations.DeleteRegistration(f.ctx, registration.ID))
	assert.Equal(t, 0, f.occupancy(t, course.ID))

	assert.ErrorIs(t, f.registrations.DeleteRegistration(f.ctx, registration.ID), domain.ErrRegistrationNotFound)

	// the same student may register again once the record is gone
	_, err = f.registrations.CreateRegistration(f.ctx, student.ID, course.ID)
	assert.NoError(t, err)
}

func TestDeleteRegistration_CancelledDoesNotReleaseTwice(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 2)

	kept, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
	require.NoError(t, err)
	cancelled, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
	require.NoError(t, err)

	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, cancelled.ID, domain.RegistrationCancelled)
	require.NoError(t, err)
	require.NoError(t, f.registrations.DeleteRegistration(f.ctx, cancelled.ID))

	assert.Equal(t, 1, f.occupancy(t, course.ID))
	assert.NotNil(t, kept)
}

// fillCourse registers n students on the course and returns the records.
func fillCourse(t *testing.T, f *fixture, courseID string, n int) []*domain.Registration {
	t.Helper()
	out := make([]*domain.Registration, 0, n)
	for i := 0; i < n; i++ {
		r, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, courseID)
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestUpdateRegistrationStatus_ConcurrentCancelsReleaseOnce(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 3)
	registrations := fillCourse(t, f, course.ID, 3)
	require.Equal(t, 3, f.occupancy(t, course.ID))

	racing := NewRegistrationService(barrierGateway{f.gateway, newReadBarrier(2)}, f.events, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = racing.UpdateRegistrationStatus(f.ctx, registrations[0].ID, domain.RegistrationCancelled)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, f.occupancy(t, course.ID))
	assert.Equal(t, f.heldSeats(t, course.ID), f.occupancy(t, course.ID))

	admitted := 0
	for i := 0; i < 3; i++ {
		_, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrCourseFull)
	}
	assert.Equal(t, 1, admitted, "only the one freed seat is available")
	assert.Equal(t, 3, f.heldSeats(t, course.ID))
	assert.Equal(t, 3, f.occupancy(t, course.ID))
}

func TestDeleteRegistration_RacingCancelReleasesOnce(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 3)
	registrations := fillCourse(t, f, course.ID, 3)

	racing := NewRegistrationService(barrierGateway{f.gateway, newReadBarrier(2)}, f.events, nil, nil)

	var (
		wg        sync.WaitGroup
		cancelErr error
		deleteErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = racing.UpdateRegistrationStatus(f.ctx, registrations[0].ID, domain.RegistrationCancelled)
	}()
	go func() {
		defer wg.Done()
		deleteErr = racing.DeleteRegistration(f.ctx, registrations[0].ID)
	}()
	wg.Wait()

	require.NoError(t, deleteErr)
	if cancelErr != nil {
		assert.ErrorIs(t, cancelErr, domain.ErrRegistrationNotFound, "delete won, cancel found nothing")
	}

	gone, err := f.gateway.Registrations().GetByID(f.ctx, registrations[0].ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, 2, f.occupancy(t, course.ID))
	assert.Equal(t, f.heldSeats(t, course.ID), f.occupancy(t, course.ID))
}

func TestRegistrationStatusChurn_OccupancyMatchesHeldSeats(t *testing.T) {
	const capacity, workers, rounds = 4, 12, 25

	f := newFixture(t)
	course := f.addCourse(t, capacity)
	registrations := fillCourse(t, f, course.ID, capacity)
	statuses := []domain.RegistrationStatus{
		domain.RegistrationCancelled,
		domain.RegistrationPending,
		domain.RegistrationPaid,
		domain.RegistrationCancelled,
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		other []error
	)
	start := make(chan struct{})
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			for i := 0; i < rounds; i++ {
				id := registrations[(w+i)%len(registrations)].ID
				_, err := f.registrations.UpdateRegistrationStatus(f.ctx, id, statuses[(w*i+i)%len(statuses)])
				if err == nil || errors.Is(err, domain.ErrCourseFull) || errors.Is(err, domain.ErrConcurrentUpdate) {
					continue
				}
				mu.Lock()
				other = append(other, err)
				mu.Unlock()
			}
		}(w)
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	occupancy := f.occupancy(t, course.ID)
	assert.Equal(t, f.heldSeats(t, course.ID), occupancy)
	assert.LessOrEqual(t, occupancy, capacity)
}

func TestGetRegistrations_JoinedAndNewestFirst(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, domain.RoleStudent)
	older := f.addCourse(t, 5)
	newer := f.addCourse(t, 5)

	_, err := f.registrations.CreateRegistration(f.ctx, student.ID, older.ID)
	require.NoError(t, err)
	_, err = f.registrations.CreateRegistration(f.ctx, student.ID, newer.ID)
	require.NoError(t, err)

	byStudent, err := f.registrations.GetRegistrationsByStudent(f.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, byStudent, 2)
	assert.False(t, byStudent[0].CreatedAt.Before(byStudent[1].CreatedAt))
	for _, r := range byStudent {
		require.NotNil(t, r.Course)
		assert.Equal(t, r.CourseID, r.Course.ID)
	}

	byCourse, err := f.registrations.GetRegistrationsByCourse(f.ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, byCourse, 1)
	require.NotNil(t, byCourse[0].Student)
	assert.Equal(t, student.ID, byCourse[0].Student.ID)
	assert.Empty(t, byCourse[0].Student.PasswordHash)

	empty, err := f.registrations.GetRegistrationsByStudent(f.ctx, f.addUser(t, domain.RoleStudent).ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRegistrationLifecycle(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 2)
	alice := f.addUser(t, domain.RoleStudent)
	bob := f.addUser(t, domain.RoleStudent)
	carol := f.addUser(t, domain.RoleStudent)

	a, err := f.registrations.CreateRegistration(f.ctx, alice.ID, course.ID)
	require.NoError(t, err)
	_, err = f.registrations.CreateRegistration(f.ctx, bob.ID, course.ID)
	require.NoError(t, err)

	_, err = f.registrations.CreateRegistration(f.ctx, carol.ID, course.ID)
	require.ErrorIs(t, err, domain.ErrCourseFull)

	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, a.ID, domain.RegistrationPaid)
	require.NoError(t, err)

	require.NoError(t, f.registrations.DeleteRegistration(f.ctx, a.ID))
	_, err = f.registrations.CreateRegistration(f.ctx, carol.ID, course.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, f.occupancy(t, course.ID))
	assert.Equal(t, []string{
		domain.TopicRegistrationCreated,
		domain.TopicRegistrationCreated,
		domain.TopicRegistrationStatusChanged,
		domain.TopicRegistrationDeleted,
		domain.TopicRegistrationCreated,
	}, f.events.topics())
}

func TestExportRoster_RequiresExporter(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 1)

	_, err := f.registrations.ExportRoster(f.ctx, course.ID)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
