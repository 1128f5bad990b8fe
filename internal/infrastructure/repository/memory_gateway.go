package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
)

// memoryStore holds every record kind behind a single lock so the
// conditional seat updates are atomic with respect to each other.
type memoryStore struct {
	mutex         sync.RWMutex
	users         map[string]*domain.User
	courses       map[string]*domain.Course
	instructors   map[string]*domain.Instructor
	schools       map[string]*domain.School
	registrations map[string]*domain.Registration
}

var _ interfaces.Gateway = (*MemoryGateway)(nil)

// MemoryGateway is an in-process gateway for development and tests. It has
// no rollback: WithTransaction runs fn directly.
type MemoryGateway struct {
	store *memoryStore
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{store: &memoryStore{
		users:         make(map[string]*domain.User),
		courses:       make(map[string]*domain.Course),
		instructors:   make(map[string]*domain.Instructor),
		schools:       make(map[string]*domain.School),
		registrations: make(map[string]*domain.Registration),
	}}
}

func (g *MemoryGateway) Users() interfaces.UserRepository {
	return &memoryUserRepository{s: g.store}
}

func (g *MemoryGateway) Courses() interfaces.CourseRepository {
	return &memoryCourseRepository{s: g.store}
}

func (g *MemoryGateway) Instructors() interfaces.InstructorRepository {
	return &memoryInstructorRepository{s: g.store}
}

func (g *MemoryGateway) Schools() interfaces.SchoolRepository {
	return &memorySchoolRepository{s: g.store}
}

func (g *MemoryGateway) Registrations() interfaces.RegistrationRepository {
	return &memoryRegistrationRepository{s: g.store}
}

func (g *MemoryGateway) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Gateway) error) error {
	return fn(ctx, g)
}

func (g *MemoryGateway) Transactional() bool { return false }

func (g *MemoryGateway) Ping(ctx context.Context) error { return ctx.Err() }

func (g *MemoryGateway) Close() error { return nil }

func newestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// users

type memoryUserRepository struct {
	s *memoryStore
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func matchUser(u *domain.User, f interfaces.UserFilter) bool {
	if f.IDs != nil && !containsID(f.IDs, u.ID) {
		return false
	}
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Status != "" && u.Status != f.Status {
		return false
	}
	if f.ExcludeID != "" && u.ID == f.ExcludeID {
		return false
	}
	return true
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	if u, ok := r.s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, nil
}

func (r *memoryUserRepository) FindOne(ctx context.Context, filter interfaces.UserFilter) (*domain.User, error) {
	users, err := r.Find(ctx, filter)
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return users[0], nil
}

func (r *memoryUserRepository) Find(ctx context.Context, filter interfaces.UserFilter) ([]*domain.User, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var out []*domain.User
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			out = append(out, cloneUser(u))
		}
	}
	newestFirst(out, func(u *domain.User) time.Time { return u.CreatedAt }, func(u *domain.User) string { return u.ID })
	return out, nil
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, exists := r.s.users[user.ID]; exists {
		return interfaces.ErrDuplicateKey
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return interfaces.ErrDuplicateKey
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memoryUserRepository) UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if update.Email != nil {
		for _, existing := range r.s.users {
			if existing.ID != id && existing.Email == *update.Email {
				return nil, interfaces.ErrDuplicateKey
			}
		}
	}
	update.Apply(u)
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *memoryUserRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	return true, nil
}

func (r *memoryUserRepository) Exists(ctx context.Context, filter interfaces.UserFilter) (bool, error) {
	u, err := r.FindOne(ctx, filter)
	return u != nil, err
}

// courses

type memoryCourseRepository struct {
	s *memoryStore
}

func cloneCourse(c *domain.Course) *domain.Course {
	cp := *c
	if c.MaxParticipants != nil {
		m := *c.MaxParticipants
		cp.MaxParticipants = &m
	}
	return &cp
}

func matchCourse(c *domain.Course, f interfaces.CourseFilter) bool {
	if f.IDs != nil && !containsID(f.IDs, c.ID) {
		return false
	}
	if f.Creator != nil && c.Creator != *f.Creator {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return true
}

func (r *memoryCourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	if c, ok := r.s.courses[id]; ok {
		return cloneCourse(c), nil
	}
	return nil, nil
}

func (r *memoryCourseRepository) FindOne(ctx context.Context, filter interfaces.CourseFilter) (*domain.Course, error) {
	courses, err := r.Find(ctx, filter)
	if err != nil || len(courses) == 0 {
		return nil, err
	}
	return courses[0], nil
}

func (r *memoryCourseRepository) Find(ctx context.Context, filter interfaces.CourseFilter) ([]*domain.Course, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var out []*domain.Course
	for _, c := range r.s.courses {
		if matchCourse(c, filter) {
			out = append(out, cloneCourse(c))
		}
	}
	newestFirst(out, func(c *domain.Course) time.Time { return c.CreatedAt }, func(c *domain.Course) string { return c.ID })
	return out, nil
}

func (r *memoryCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, exists := r.s.courses[course.ID]; exists {
		return interfaces.ErrDuplicateKey
	}
	r.s.courses[course.ID] = cloneCourse(course)
	return nil
}

func (r *memoryCourseRepository) UpdateByID(ctx context.Context, id string, update domain.CourseUpdate) (*domain.Course, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	c, ok := r.s.courses[id]
	if !ok {
		return nil, nil
	}
	update.Apply(c)
	c.UpdatedAt = time.Now().UTC()
	return cloneCourse(c), nil
}

func (r *memoryCourseRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.courses[id]; !ok {
		return false, nil
	}
	delete(r.s.courses, id)
	return true, nil
}

func (r *memoryCourseRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	n := int64(len(r.s.courses))
	r.s.courses = make(map[string]*domain.Course)
	return n, nil
}

func (r *memoryCourseRepository) Exists(ctx context.Context, filter interfaces.CourseFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *memoryCourseRepository) Count(ctx context.Context, filter interfaces.CourseFilter) (int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var n int64
	for _, c := range r.s.courses {
		if matchCourse(c, filter) {
			n++
		}
	}
	return n, nil
}

func (r *memoryCourseRepository) ReserveSeat(ctx context.Context, id string) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	c, ok := r.s.courses[id]
	if !ok || !c.IsActive() || !c.HasCapacity() {
		return false, nil
	}
	c.CurrentParticipants++
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memoryCourseRepository) ReleaseSeat(ctx context.Context, id string) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	c, ok := r.s.courses[id]
	if !ok || c.CurrentParticipants <= 0 {
		return false, nil
	}
	c.CurrentParticipants--
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memoryCourseRepository) SetCapacity(ctx context.Context, id string, capacity int) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	c, ok := r.s.courses[id]
	if !ok || c.CurrentParticipants > capacity {
		return false, nil
	}
	c.MaxParticipants = &capacity
	c.UpdatedAt = time.Now().UTC()
	return true, nil
}

// instructors

type memoryInstructorRepository struct {
	s *memoryStore
}

func cloneInstructor(i *domain.Instructor) *domain.Instructor {
	cp := *i
	if i.Certificates != nil {
		cp.Certificates = append(cp.Certificates[:0:0], i.Certificates...)
	}
	if i.HourlyRate != nil {
		r := *i.HourlyRate
		cp.HourlyRate = &r
	}
	return &cp
}

func matchInstructor(i *domain.Instructor, f interfaces.InstructorFilter) bool {
	if f.UserID != "" && i.UserID != f.UserID {
		return false
	}
	if f.WorkArea != "" && i.WorkArea != f.WorkArea {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	return true
}

func (r *memoryInstructorRepository) GetByID(ctx context.Context, id string) (*domain.Instructor, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	if i, ok := r.s.instructors[id]; ok {
		return cloneInstructor(i), nil
	}
	return nil, nil
}

func (r *memoryInstructorRepository) FindOne(ctx context.Context, filter interfaces.InstructorFilter) (*domain.Instructor, error) {
	list, err := r.Find(ctx, filter)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *memoryInstructorRepository) Find(ctx context.Context, filter interfaces.InstructorFilter) ([]*domain.Instructor, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var out []*domain.Instructor
	for _, i := range r.s.instructors {
		if matchInstructor(i, filter) {
			out = append(out, cloneInstructor(i))
		}
	}
	newestFirst(out, func(i *domain.Instructor) time.Time { return i.CreatedAt }, func(i *domain.Instructor) string { return i.ID })
	return out, nil
}

func (r *memoryInstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, exists := r.s.instructors[instructor.ID]; exists {
		return interfaces.ErrDuplicateKey
	}
	for _, existing := range r.s.instructors {
		if existing.UserID == instructor.UserID {
			return interfaces.ErrDuplicateKey
		}
	}
	r.s.instructors[instructor.ID] = cloneInstructor(instructor)
	return nil
}

func (r *memoryInstructorRepository) UpdateByID(ctx context.Context, id string, update domain.InstructorUpdate) (*domain.Instructor, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	i, ok := r.s.instructors[id]
	if !ok {
		return nil, nil
	}
	update.Apply(i)
	i.UpdatedAt = time.Now().UTC()
	return cloneInstructor(i), nil
}

func (r *memoryInstructorRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.instructors[id]; !ok {
		return false, nil
	}
	delete(r.s.instructors, id)
	return true, nil
}

func (r *memoryInstructorRepository) Exists(ctx context.Context, filter interfaces.InstructorFilter) (bool, error) {
	i, err := r.FindOne(ctx, filter)
	return i != nil, err
}

// schools

type memorySchoolRepository struct {
	s *memoryStore
}

func cloneSchool(s *domain.School) *domain.School {
	c := *s
	return &c
}

func matchSchool(s *domain.School, f interfaces.SchoolFilter) bool {
	if f.OwnerID != "" && s.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}

func (r *memorySchoolRepository) GetByID(ctx context.Context, id string) (*domain.School, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	if s, ok := r.s.schools[id]; ok {
		return cloneSchool(s), nil
	}
	return nil, nil
}

func (r *memorySchoolRepository) FindOne(ctx context.Context, filter interfaces.SchoolFilter) (*domain.School, error) {
	list, err := r.Find(ctx, filter)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *memorySchoolRepository) Find(ctx context.Context, filter interfaces.SchoolFilter) ([]*domain.School, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var out []*domain.School
	for _, s := range r.s.schools {
		if matchSchool(s, filter) {
			out = append(out, cloneSchool(s))
		}
	}
	newestFirst(out, func(s *domain.School) time.Time { return s.CreatedAt }, func(s *domain.School) string { return s.ID })
	return out, nil
}

func (r *memorySchoolRepository) Create(ctx context.Context, school *domain.School) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, exists := r.s.schools[school.ID]; exists {
		return interfaces.ErrDuplicateKey
	}
	for _, existing := range r.s.schools {
		if existing.OwnerID == school.OwnerID {
			return interfaces.ErrDuplicateKey
		}
	}
	r.s.schools[school.ID] = cloneSchool(school)
	return nil
}

func (r *memorySchoolRepository) UpdateByID(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	s, ok := r.s.schools[id]
	if !ok {
		return nil, nil
	}
	update.Apply(s)
	s.UpdatedAt = time.Now().UTC()
	return cloneSchool(s), nil
}

func (r *memorySchoolRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, ok := r.s.schools[id]; !ok {
		return false, nil
	}
	delete(r.s.schools, id)
	return true, nil
}

func (r *memorySchoolRepository) Exists(ctx context.Context, filter interfaces.SchoolFilter) (bool, error) {
	s, err := r.FindOne(ctx, filter)
	return s != nil, err
}

// registrations

type memoryRegistrationRepository struct {
	s *memoryStore
}

func cloneRegistration(r *domain.Registration) *domain.Registration {
	c := *r
	return &c
}

func matchRegistration(r *domain.Registration, f interfaces.RegistrationFilter) bool {
	if f.StudentID != "" && r.StudentID != f.StudentID {
		return false
	}
	if f.CourseID != "" && r.CourseID != f.CourseID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.HoldingSeat && !r.Status.HoldsSeat() {
		return false
	}
	return true
}

func (r *memoryRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	if reg, ok := r.s.registrations[id]; ok {
		return cloneRegistration(reg), nil
	}
	return nil, nil
}

func (r *memoryRegistrationRepository) FindOne(ctx context.Context, filter interfaces.RegistrationFilter) (*domain.Registration, error) {
	list, err := r.Find(ctx, filter)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *memoryRegistrationRepository) Find(ctx context.Context, filter interfaces.RegistrationFilter) ([]*domain.Registration, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var out []*domain.Registration
	for _, reg := range r.s.registrations {
		if matchRegistration(reg, filter) {
			out = append(out, cloneRegistration(reg))
		}
	}
	newestFirst(out, func(r *domain.Registration) time.Time { return r.CreatedAt }, func(r *domain.Registration) string { return r.ID })
	return out, nil
}

func (r *memoryRegistrationRepository) Create(ctx context.Context, registration *domain.Registration) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if _, exists := r.s.registrations[registration.ID]; exists {
		return interfaces.ErrDuplicateKey
	}
	for _, existing := range r.s.registrations {
		if existing.StudentID == registration.StudentID && existing.CourseID == registration.CourseID {
			return interfaces.ErrDuplicateKey
		}
	}
	r.s.registrations[registration.ID] = cloneRegistration(registration)
	return nil
}

func (r *memoryRegistrationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RegistrationStatus) (*domain.Registration, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	reg, ok := r.s.registrations[id]
	if !ok || reg.Status != from {
		return nil, nil
	}
	reg.Status = to
	reg.UpdatedAt = time.Now().UTC()
	return cloneRegistration(reg), nil
}

func (r *memoryRegistrationRepository) DeleteByID(ctx context.Context, id string, status domain.RegistrationStatus) (bool, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if reg, ok := r.s.registrations[id]; !ok || reg.Status != status {
		return false, nil
	}
	delete(r.s.registrations, id)
	return true, nil
}

func (r *memoryRegistrationRepository) Exists(ctx context.Context, filter interfaces.RegistrationFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *memoryRegistrationRepository) Count(ctx context.Context, filter interfaces.RegistrationFilter) (int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	var n int64
	for _, reg := range r.s.registrations {
		if matchRegistration(reg, filter) {
			n++
		}
	}
	return n, nil
}
