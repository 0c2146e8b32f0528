package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type auditRecord struct {
	Action   string
	Actor    model.AuditActor
	Status   string
	Resource string
	Error    string
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []auditRecord
}

func (a *recordingAudit) Log(_ context.Context, action string, actor model.AuditActor, status string, resource string, _ any, _ any, errText string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditRecord{Action: action, Actor: actor, Status: status, Resource: resource, Error: errText})
}

func (a *recordingAudit) last() auditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return auditRecord{}
	}
	return a.entries[len(a.entries)-1]
}

// memoryDirectory is an in-memory role and user store used by the
// bootstrap and login scenarios.
type memoryDirectory struct {
	mu     sync.Mutex
	roles  map[string]model.Role
	users  map[string]model.User
	nextID int64
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{roles: map[string]model.Role{}, users: map[string]model.User{}}
}

func (d *memoryDirectory) Ensure(_ context.Context, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.roles[name]; ok {
		return false, nil
	}
	d.roles[name] = model.Role{ID: int64(len(d.roles) + 1), Name: name}
	return true, nil
}

func (d *memoryDirectory) FindByName(_ context.Context, name string) (model.Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	role, ok := d.roles[name]
	if !ok {
		return model.Role{}, apierror.NotFound(model.ErrRoleNotFound, "role not found", name)
	}
	return role, nil
}

func (d *memoryDirectory) Count(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users), nil
}

func (d *memoryDirectory) Create(_ context.Context, u *model.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[u.Username]; ok {
		return apierror.Conflict(model.ErrUserAlreadyExists, "user already exists", u.Username)
	}
	d.nextID++
	u.ID = d.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	d.users[u.Username] = *u
	return nil
}

func (d *memoryDirectory) FindByUsername(_ context.Context, username string) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[username]
	if !ok {
		return model.User{}, apierror.NotFound(model.ErrUserNotFound, "user not found", username)
	}
	return u, nil
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Search(ctx context.Context, filter model.UserFilter) ([]model.User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.User), args.Int(1), args.Error(2)
}

func (m *mockUserStore) ListByRole(ctx context.Context, roleName string) ([]model.User, error) {
	args := m.Called(ctx, roleName)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserStore) Update(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockUserStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockRoleFinder struct {
	mock.Mock
}

func (m *mockRoleFinder) FindByName(ctx context.Context, name string) (model.Role, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Role), args.Error(1)
}

type mockProgramStore struct {
	mock.Mock
}

func (m *mockProgramStore) FindByID(ctx context.Context, id int64) (model.Program, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Program), args.Error(1)
}

func (m *mockProgramStore) LockByID(ctx context.Context, id int64) (model.Program, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Program), args.Error(1)
}

func (m *mockProgramStore) Search(ctx context.Context, filter model.ProgramFilter) ([]model.Program, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Program), args.Int(1), args.Error(2)
}

func (m *mockProgramStore) Create(ctx context.Context, p *model.Program) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProgramStore) Update(ctx context.Context, p *model.Program) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProgramStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProgramStore) AddRegistration(ctx context.Context, reg *model.ProgramRegistration) error {
	return m.Called(ctx, reg).Error(0)
}

func (m *mockProgramStore) Statistics(ctx context.Context) (model.ProgramStatistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ProgramStatistics), args.Error(1)
}

type mockSurveyStore struct {
	mock.Mock
}

func (m *mockSurveyStore) FindByID(ctx context.Context, id int64) (model.Survey, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Survey), args.Error(1)
}

func (m *mockSurveyStore) Questions(ctx context.Context, surveyID int64) ([]model.Question, error) {
	args := m.Called(ctx, surveyID)
	return args.Get(0).([]model.Question), args.Error(1)
}

func (m *mockSurveyStore) Search(ctx context.Context, filter model.SurveyFilter) ([]model.Survey, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Survey), args.Int(1), args.Error(2)
}

func (m *mockSurveyStore) Create(ctx context.Context, s *model.Survey) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSurveyStore) Update(ctx context.Context, s *model.Survey) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSurveyStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
