package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"course-marketplace/internal/domain"
	"course-marketplace/internal/infrastructure/repository"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
)

type recordedEvent struct {
	Topic string
	Event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Topic)
	}
	return out
}

type fixture struct {
	ctx           context.Context
	gateway       *repository.MemoryGateway
	events        *recordingPublisher
	registrations *RegistrationService
	courses       *CourseService
	seq           int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gateway := repository.NewMemoryGateway()
	events := &recordingPublisher{}
	return &fixture{
		ctx:           context.Background(),
		gateway:       gateway,
		events:        events,
		registrations: NewRegistrationService(gateway, events, nil, nil),
		courses:       NewCourseService(gateway, events, nil),
	}
}

func (f *fixture) addUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	f.seq++
	user := domain.NewUser(fmt.Sprintf("User %d", f.seq), fmt.Sprintf("user%d@example.com", f.seq), "0501234567", "hash", role)
	if err := f.gateway.Users().Create(f.ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func (f *fixture) addInstructor(t *testing.T) *domain.Instructor {
	t.Helper()
	user := f.addUser(t, domain.RoleInstructor)
	now := nowUTC()
	instructor := &domain.Instructor{
		ID:        domain.NewID(),
		UserID:    user.ID,
		FullName:  user.FullName,
		Phone:     user.Phone,
		WorkArea:  "Tel Aviv",
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.gateway.Instructors().Create(f.ctx, instructor); err != nil {
		t.Fatalf("Failed to create instructor: %v", err)
	}
	return instructor
}

func courseRequest(creator domain.CreatorRef, maxParticipants *int) *domain.CreateCourseRequest {
	price := 120.0
	return &domain.CreateCourseRequest{
		Title:           "Intro to Pottery",
		Description:     "Wheel throwing basics",
		Price:           &price,
		Category:        domain.CategoryLearning,
		TargetAudience:  "Adults",
		Creator:         creator,
		MaxParticipants: maxParticipants,
	}
}

// addCourse stores a course directly; capacity < 0 means unlimited.
func (f *fixture) addCourse(t *testing.T, capacity int) *domain.Course {
	t.Helper()
	var maxParticipants *int
	if capacity >= 0 {
		maxParticipants = &capacity
	}
	instructor := f.addInstructor(t)
	course := domain.NewCourse(courseRequest(domain.CreatorRef{ID: instructor.ID, Type: domain.CreatorInstructor}, maxParticipants))
	if err := f.gateway.Courses().Create(f.ctx, course); err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	return course
}

func (f *fixture) occupancy(t *testing.T, courseID string) int {
	t.Helper()
	course, err := f.gateway.Courses().GetByID(f.ctx, courseID)
	if err != nil || course == nil {
		t.Fatalf("Failed to read course %s: %v", courseID, err)
	}
	return course.CurrentParticipants
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// failingCreateGateway rejects every registration insert.
type failingCreateGateway struct {
	*repository.MemoryGateway
}

type failingRegistrations struct {
	interfaces.RegistrationRepository
}

func (failingRegistrations) Create(ctx context.Context, registration *domain.Registration) error {
	return errors.New("disk full")
}

func (g failingCreateGateway) Registrations() interfaces.RegistrationRepository {
	return failingRegistrations{g.MemoryGateway.Registrations()}
}

func (g failingCreateGateway) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Gateway) error) error {
	return fn(ctx, g)
}

// readBarrier holds the first parties callers of wait until all of them
// have arrived. Later callers pass straight through.
type readBarrier struct {
	parties int
	mu      sync.Mutex
	arrived int
	release chan struct{}
}

func newReadBarrier(parties int) *readBarrier {
	return &readBarrier{parties: parties, release: make(chan struct{})}
}

func (b *readBarrier) wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.parties {
		close(b.release)
	}
	b.mu.Unlock()
	<-b.release
}

// barrierGateway makes concurrent callers read the same registration
// snapshot before any of them writes.
type barrierGateway struct {
	*repository.MemoryGateway
	barrier *readBarrier
}

type barrierRegistrations struct {
	interfaces.RegistrationRepository
	barrier *readBarrier
}

func (r barrierRegistrations) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	registration, err := r.RegistrationRepository.GetByID(ctx, id)
	r.barrier.wait()
	return registration, err
}

func (g barrierGateway) Registrations() interfaces.RegistrationRepository {
	return barrierRegistrations{g.MemoryGateway.Registrations(), g.barrier}
}

func (g barrierGateway) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Gateway) error) error {
	return fn(ctx, g)
}

// courseReadHookGateway runs hook once, right after the first course read.
type courseReadHookGateway struct {
	*repository.MemoryGateway
	once *sync.Once
	hook func()
}

type hookedCourses struct {
	interfaces.CourseRepository
	once *sync.Once
	hook func()
}

func (r hookedCourses) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	course, err := r.CourseRepository.GetByID(ctx, id)
	r.once.Do(r.hook)
	return course, err
}

func (g courseReadHookGateway) Courses() interfaces.CourseRepository {
	return hookedCourses{g.MemoryGateway.Courses(), g.once, g.hook}
}

func (g courseReadHookGateway) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Gateway) error) error {
	return fn(ctx, g)
}

// heldSeats counts the registrations that occupy a seat on the course.
func (f *fixture) heldSeats(t *testing.T, courseID string) int {
	t.Helper()
	n, err := f.gateway.Registrations().Count(f.ctx, interfaces.RegistrationFilter{CourseID: courseID, HoldingSeat: true})
	if err != nil {
		t.Fatalf("Failed to count registrations: %v", err)
	}
	return int(n)
}
