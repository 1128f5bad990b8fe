package service

import (
	"testing"

	"course-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInstructor(t *testing.T) {
	f := newFixture(t)
	svc := NewInstructorService(f.gateway)
	user := f.addUser(t, domain.RoleInstructor)

	rate := 150.0
	instructor, err := svc.CreateInstructor(f.ctx, &domain.CreateInstructorRequest{
		UserID:       user.ID,
		WorkArea:     "Haifa",
		HourlyRate:   &rate,
		Certificates: []string{"Yoga 200h"},
	})
	require.NoError(t, err)

	assert.Equal(t, user.FullName, instructor.FullName)
	assert.Equal(t, user.Phone, instructor.Phone)
	assert.Equal(t, []string{"Yoga 200h"}, []string(instructor.Certificates))
	assert.Equal(t, domain.StatusActive, instructor.Status)

	byUser, err := svc.GetInstructorByUser(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, instructor.ID, byUser.ID)

	_, err = svc.CreateInstructor(f.ctx, &domain.CreateInstructorRequest{UserID: user.ID, WorkArea: "Haifa"})
	assert.ErrorIs(t, err, domain.ErrProfileExists)
}

func TestCreateInstructor_Preconditions(t *testing.T) {
	f := newFixture(t)
	svc := NewInstructorService(f.gateway)
	student := f.addUser(t, domain.RoleStudent)
	instructorUser := f.addUser(t, domain.RoleInstructor)
	negative := -1.0

	tests := []struct {
		name string
		req  *domain.CreateInstructorRequest
		want error
	}{
		{"missing work area", &domain.CreateInstructorRequest{UserID: instructorUser.ID}, domain.ErrMissingFields},
		{"malformed user id", &domain.CreateInstructorRequest{UserID: "x", WorkArea: "Eilat"}, domain.ErrInvalidID},
		{"negative rate", &domain.CreateInstructorRequest{UserID: instructorUser.ID, WorkArea: "Eilat", HourlyRate: &negative}, domain.ErrInvalidHourlyRate},
		{"unknown user", &domain.CreateInstructorRequest{UserID: domain.NewID(), WorkArea: "Eilat"}, domain.ErrUserNotFound},
		{"wrong role", &domain.CreateInstructorRequest{UserID: student.ID, WorkArea: "Eilat"}, domain.ErrWrongRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateInstructor(f.ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateInstructor_IgnoresIdentityFields(t *testing.T) {
	f := newFixture(t)
	svc := NewInstructorService(f.gateway)
	instructor := f.addInstructor(t)

	otherUser := domain.NewID()
	updated, err := svc.UpdateInstructor(f.ctx, instructor.ID, &domain.UpdateInstructorRequest{
		UserID:   &otherUser,
		WorkArea: strPtr("Jerusalem"),
	})
	require.NoError(t, err)
	assert.Equal(t, instructor.UserID, updated.UserID)
	assert.Equal(t, "Jerusalem", updated.WorkArea)

	unchanged, err := svc.UpdateInstructor(f.ctx, instructor.ID, &domain.UpdateInstructorRequest{UserID: &otherUser})
	require.NoError(t, err)
	assert.Equal(t, "Jerusalem", unchanged.WorkArea)
}

func TestDeleteInstructor(t *testing.T) {
	f := newFixture(t)
	svc := NewInstructorService(f.gateway)

	idle := f.addInstructor(t)
	result, err := svc.DeleteInstructor(f.ctx, idle.ID)
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	course := f.addCourse(t, 3)
	result, err = svc.DeleteInstructor(f.ctx, course.Creator.ID)
	require.NoError(t, err)
	assert.True(t, result.Deactivated)

	stored, err := svc.GetInstructor(f.ctx, course.Creator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, stored.Status)
}

func TestSchoolLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewSchoolService(f.gateway)
	owner := f.addUser(t, domain.RoleSchool)

	_, err := svc.CreateSchool(f.ctx, &domain.CreateSchoolRequest{OwnerID: f.addUser(t, domain.RoleStudent).ID, Name: "Wrong"})
	assert.ErrorIs(t, err, domain.ErrWrongRole)

	_, err = svc.CreateSchool(f.ctx, &domain.CreateSchoolRequest{OwnerID: owner.ID, Name: "Studio", ContactPhone: "123"})
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	school, err := svc.CreateSchool(f.ctx, &domain.CreateSchoolRequest{OwnerID: owner.ID, Name: " Studio ", ContactPhone: "0531112222"})
	require.NoError(t, err)
	assert.Equal(t, "Studio", school.Name)

	_, err = svc.CreateSchool(f.ctx, &domain.CreateSchoolRequest{OwnerID: owner.ID, Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrProfileExists)

	byOwner, err := svc.GetSchoolByOwner(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, school.ID, byOwner.ID)

	_, err = f.courses.CreateCourse(f.ctx, courseRequest(domain.CreatorRef{ID: school.ID, Type: domain.CreatorSchool}, nil))
	require.NoError(t, err)

	result, err := svc.DeleteSchool(f.ctx, school.ID)
	require.NoError(t, err)
	assert.True(t, result.Deactivated)
	assert.Equal(t, "school has courses", result.Reason)
}
