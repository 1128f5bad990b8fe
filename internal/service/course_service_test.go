package service

import (
	"sync"
	"testing"

	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)
	instructor := f.addInstructor(t)
	creator := domain.CreatorRef{ID: instructor.ID, Type: domain.CreatorInstructor}

	course, err := f.courses.CreateCourse(f.ctx, courseRequest(creator, intPtr(12)))
	require.NoError(t, err)

	assert.Equal(t, "intro-to-pottery", course.Slug)
	assert.Equal(t, domain.StatusActive, course.Status)
	assert.Equal(t, 0, course.CurrentParticipants)
	require.NotNil(t, course.MaxParticipants)
	assert.Equal(t, 12, *course.MaxParticipants)
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newFixture(t)
	instructor := f.addInstructor(t)
	creator := domain.CreatorRef{ID: instructor.ID, Type: domain.CreatorInstructor}

	tests := []struct {
		name   string
		mutate func(*domain.CreateCourseRequest)
		want   error
	}{
		{"missing title", func(r *domain.CreateCourseRequest) { r.Title = "" }, domain.ErrMissingFields},
		{"negative price", func(r *domain.CreateCourseRequest) { p := -5.0; r.Price = &p }, domain.ErrInvalidPrice},
		{"bad category", func(r *domain.CreateCourseRequest) { r.Category = "Cooking" }, domain.ErrInvalidCategory},
		{"bad creator type", func(r *domain.CreateCourseRequest) { r.Creator.Type = "Guild" }, domain.ErrInvalidCreatorType},
		{"zero capacity", func(r *domain.CreateCourseRequest) { r.MaxParticipants = intPtr(0) }, domain.ErrInvalidCapacity},
		{"unknown instructor", func(r *domain.CreateCourseRequest) { r.Creator.ID = domain.NewID() }, domain.ErrInstructorNotFound},
		{"unknown school", func(r *domain.CreateCourseRequest) {
			r.Creator = domain.CreatorRef{ID: domain.NewID(), Type: domain.CreatorSchool}
		}, domain.ErrSchoolNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := courseRequest(creator, nil)
			tt.mutate(req)
			_, err := f.courses.CreateCourse(f.ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateCourse_InactiveCreator(t *testing.T) {
	f := newFixture(t)
	instructor := f.addInstructor(t)

	inactive := domain.StatusInactive
	_, err := f.gateway.Instructors().UpdateByID(f.ctx, instructor.ID, domain.InstructorUpdate{Status: &inactive})
	require.NoError(t, err)

	_, err = f.courses.CreateCourse(f.ctx, courseRequest(domain.CreatorRef{ID: instructor.ID, Type: domain.CreatorInstructor}, nil))
	assert.ErrorIs(t, err, domain.ErrCreatorInactive)
}

func TestListCourses_Filters(t *testing.T) {
	f := newFixture(t)
	first := f.addCourse(t, 5)
	second := f.addCourse(t, 5)

	all, err := f.courses.ListCourses(f.ctx, serviceInterfaces.CourseQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.courses.ListCourses(f.ctx, serviceInterfaces.CourseQuery{
		CreatorID:   second.Creator.ID,
		CreatorType: domain.CreatorInstructor,
	})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)

	_, err = f.courses.ListCourses(f.ctx, serviceInterfaces.CourseQuery{Category: "Cooking"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestUpdateCourse(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 3)

	for i := 0; i < 2; i++ {
		_, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
		require.NoError(t, err)
	}

	otherCreator := domain.CreatorRef{ID: domain.NewID(), Type: domain.CreatorSchool}
	updated, err := f.courses.UpdateCourse(f.ctx, course.ID, &domain.UpdateCourseRequest{
		Title:               strPtr("Advanced Pottery"),
		Creator:             &otherCreator,
		Slug:                strPtr("hijacked"),
		CurrentParticipants: intPtr(0),
	})
	require.NoError(t, err)

	assert.Equal(t, "Advanced Pottery", updated.Title)
	assert.Equal(t, "advanced-pottery", updated.Slug)
	assert.Equal(t, course.Creator, updated.Creator)
	assert.Equal(t, 2, updated.CurrentParticipants)

	_, err = f.courses.UpdateCourse(f.ctx, course.ID, &domain.UpdateCourseRequest{MaxParticipants: intPtr(1)})
	assert.ErrorIs(t, err, domain.ErrCapacityBelowOccupancy)

	_, err = f.courses.UpdateCourse(f.ctx, course.ID, &domain.UpdateCourseRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)

	_, err = f.courses.UpdateCourse(f.ctx, domain.NewID(), &domain.UpdateCourseRequest{Title: strPtr("Ghost")})
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestUpdateCourse_CapacityCheckedAgainstLiveOccupancy(t *testing.T) {
	f := newFixture(t)
	course := f.addCourse(t, 5)
	fillCourse(t, f, course.ID, 2)

	// a student is admitted after UpdateCourse has read the course
	late := f.addUser(t, domain.RoleStudent)
	gateway := courseReadHookGateway{
		MemoryGateway: f.gateway,
		once:          &sync.Once{},
		hook: func() {
			_, err := f.registrations.CreateRegistration(f.ctx, late.ID, course.ID)
			require.NoError(t, err)
		},
	}
	courses := NewCourseService(gateway, f.events, nil)

	_, err := courses.UpdateCourse(f.ctx, course.ID, &domain.UpdateCourseRequest{MaxParticipants: intPtr(2)})
	assert.ErrorIs(t, err, domain.ErrCapacityBelowOccupancy)

	stored, err := f.gateway.Courses().GetByID(f.ctx, course.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MaxParticipants)
	assert.Equal(t, 5, *stored.MaxParticipants)
	assert.Equal(t, 3, stored.CurrentParticipants)

	updated, err := courses.UpdateCourse(f.ctx, course.ID, &domain.UpdateCourseRequest{
		MaxParticipants: intPtr(3),
		Title:           strPtr("Pottery Nights"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.MaxParticipants)
	assert.Equal(t, 3, *updated.MaxParticipants)
	assert.Equal(t, "Pottery Nights", updated.Title)

	_, err = f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, course.ID)
	assert.ErrorIs(t, err, domain.ErrCourseFull)
}

func TestDeleteCourse(t *testing.T) {
	f := newFixture(t)

	empty := f.addCourse(t, 3)
	result, err := f.courses.DeleteCourse(f.ctx, empty.ID)
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	_, err = f.courses.GetCourse(f.ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	busy := f.addCourse(t, 3)
	_, err = f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, busy.ID)
	require.NoError(t, err)

	result, err = f.courses.DeleteCourse(f.ctx, busy.ID)
	require.NoError(t, err)
	assert.True(t, result.Deactivated)
	assert.Equal(t, "course has registrations", result.Reason)

	_, err = f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, busy.ID)
	assert.ErrorIs(t, err, domain.ErrCourseInactive)
}

func TestResetCourses(t *testing.T) {
	f := newFixture(t)
	f.addCourse(t, 3)
	f.addCourse(t, 3)

	creator := domain.CreatorRef{ID: domain.NewID(), Type: domain.CreatorInstructor}

	bad := courseRequest(creator, nil)
	bad.Category = "Cooking"
	_, err := f.courses.ResetCourses(f.ctx, []*domain.CreateCourseRequest{courseRequest(creator, nil), bad})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	// a rejected batch leaves the catalogue untouched
	all, err := f.courses.ListCourses(f.ctx, serviceInterfaces.CourseQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	loaded, err := f.courses.ResetCourses(f.ctx, []*domain.CreateCourseRequest{courseRequest(creator, intPtr(8))})
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	all, err = f.courses.ListCourses(f.ctx, serviceInterfaces.CourseQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, loaded[0].ID, all[0].ID)
}

func TestReconcileOccupancy(t *testing.T) {
	f := newFixture(t)
	drifted := f.addCourse(t, 5)
	healthy := f.addCourse(t, 5)

	for _, courseID := range []string{drifted.ID, healthy.ID} {
		_, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, courseID)
		require.NoError(t, err)
	}
	cancelled, err := f.registrations.CreateRegistration(f.ctx, f.addUser(t, domain.RoleStudent).ID, drifted.ID)
	require.NoError(t, err)
	_, err = f.registrations.UpdateRegistrationStatus(f.ctx, cancelled.ID, domain.RegistrationCancelled)
	require.NoError(t, err)

	_, err = f.gateway.Courses().UpdateByID(f.ctx, drifted.ID, domain.CourseUpdate{CurrentParticipants: intPtr(4)})
	require.NoError(t, err)

	report, err := f.courses.ReconcileOccupancy(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	require.Len(t, report.Corrected, 1)
	assert.Equal(t, drifted.ID, report.Corrected[0].CourseID)
	assert.Equal(t, 4, report.Corrected[0].Previous)
	assert.Equal(t, 1, report.Corrected[0].Current)
	assert.Equal(t, 1, f.occupancy(t, drifted.ID))
	assert.Contains(t, f.events.topics(), domain.TopicCourseOccupancyCorrected)
}
