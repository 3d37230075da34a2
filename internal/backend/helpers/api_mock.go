package helpers

import (
	"context"

	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/stretchr/testify/mock"
)

// MockAPI returns the configured mock services. Nil services stay nil.
type MockAPI struct {
	Applications *MockApplicationAPI
	Roles        *MockAppsRolesAPI
	Functions    *MockAppsFunctionsAPI
	Rbac         *MockRbacAPI
	Users        *MockUserAPI
	AppAuth      *MockAppAuthAPI
	Session      *MockSessionAPI
}

func NewMockAPI() *MockAPI {
	return &MockAPI{
		Applications: &MockApplicationAPI{},
		Roles:        &MockAppsRolesAPI{},
		Functions:    &MockAppsFunctionsAPI{},
		Rbac:         &MockRbacAPI{},
		Users:        &MockUserAPI{},
		AppAuth:      &MockAppAuthAPI{},
		Session:      &MockSessionAPI{},
	}
}

func (m *MockAPI) GetApplicationAPI() ApplicationAPI     { return m.Applications }
func (m *MockAPI) GetAppsRolesAPI() AppsRolesAPI         { return m.Roles }
func (m *MockAPI) GetAppsFunctionsAPI() AppsFunctionsAPI { return m.Functions }
func (m *MockAPI) GetRbacAPI() RbacAPI                   { return m.Rbac }
func (m *MockAPI) GetUserAPI() UserAPI                   { return m.Users }
func (m *MockAPI) GetAppAuthAPI() AppAuthAPI             { return m.AppAuth }
func (m *MockAPI) GetSessionAPI() SessionAPI             { return m.Session }

// crudMock implements the calls shared by the collection services.
type crudMock struct {
	mock.Mock
}

func (m *crudMock) List(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	return records(args, 0), args.Error(1)
}

func (m *crudMock) Create(ctx context.Context, payload record.Record) (record.Record, error) {
	args := m.Called(ctx, payload)
	return single(args, 0), args.Error(1)
}

func (m *crudMock) Update(ctx context.Context, key string, payload record.Record) (record.Record, error) {
	args := m.Called(ctx, key, payload)
	return single(args, 0), args.Error(1)
}

func (m *crudMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockApplicationAPI struct{ crudMock }

type MockAppsRolesAPI struct{ crudMock }

type MockAppsFunctionsAPI struct{ crudMock }

func (m *MockAppsFunctionsAPI) ListByApplication(ctx context.Context, appCode string) ([]record.Record, error) {
	args := m.Called(ctx, appCode)
	return records(args, 0), args.Error(1)
}

type MockRbacAPI struct{ crudMock }

func (m *MockRbacAPI) Get(ctx context.Context, code string) (record.Record, error) {
	args := m.Called(ctx, code)
	return single(args, 0), args.Error(1)
}

func (m *MockRbacAPI) AssignedFunctionCodes(ctx context.Context, appCode, roleCode string) ([]string, error) {
	args := m.Called(ctx, appCode, roleCode)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) List(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	return records(args, 0), args.Error(1)
}

func (m *MockUserAPI) Get(ctx context.Context, authCode string) (record.Record, error) {
	args := m.Called(ctx, authCode)
	return single(args, 0), args.Error(1)
}

func (m *MockUserAPI) GetByUserID(ctx context.Context, userID string) ([]record.Record, error) {
	args := m.Called(ctx, userID)
	return records(args, 0), args.Error(1)
}

func (m *MockUserAPI) AvailableFacilities(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	return records(args, 0), args.Error(1)
}

func (m *MockUserAPI) UserFacilities(ctx context.Context, userID, appCode, roleCode string) ([]string, error) {
	args := m.Called(ctx, userID, appCode, roleCode)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

func (m *MockUserAPI) Create(ctx context.Context, payload record.Record) (record.Record, error) {
	args := m.Called(ctx, payload)
	return single(args, 0), args.Error(1)
}

func (m *MockUserAPI) Update(ctx context.Context, authCode string, payload record.Record) (record.Record, error) {
	args := m.Called(ctx, authCode, payload)
	return single(args, 0), args.Error(1)
}

func (m *MockUserAPI) Delete(ctx context.Context, userID, appCode, roleCode string) error {
	return m.Called(ctx, userID, appCode, roleCode).Error(0)
}

type MockAppAuthAPI struct {
	mock.Mock
}

func (m *MockAppAuthAPI) List(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	return records(args, 0), args.Error(1)
}

type MockSessionAPI struct {
	mock.Mock
}

func (m *MockSessionAPI) CurrentUser(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func records(args mock.Arguments, i int) []record.Record {
	v, _ := args.Get(i).([]record.Record)
	return v
}

func single(args mock.Arguments, i int) record.Record {
	v, _ := args.Get(i).(record.Record)
	return v
}
