package service

import (
	"context"

	"civicreport/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User, roleName string) error {
	args := m.Called(ctx, user, roleName)
	if args.Error(0) == nil {
		user.ID = 1
		user.Role = roleName
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) IsAdmin(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id int64, roleName string) error {
	args := m.Called(ctx, id, roleName)
	return args.Error(0)
}

// MockComplaintRepository is a mock implementation of repository.ComplaintRepository
type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, complaint *models.Complaint, statusName string) (int64, error) {
	args := m.Called(ctx, complaint, statusName)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComplaintRepository) ListForUser(ctx context.Context, viewerID int64, page, perPage int, status string) ([]*models.Complaint, error) {
	args := m.Called(ctx, viewerID, page, perPage, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) GetOne(ctx context.Context, viewerID, complaintID int64) (*models.Complaint, error) {
	args := m.Called(ctx, viewerID, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) Count(ctx context.Context, viewerID int64, status string) (int64, error) {
	args := m.Called(ctx, viewerID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComplaintRepository) UpdateStatus(ctx context.Context, complaintID int64, statusName string) error {
	args := m.Called(ctx, complaintID, statusName)
	return args.Error(0)
}

func (m *MockComplaintRepository) Search(ctx context.Context, viewerID int64, text string) ([]*models.Complaint, error) {
	args := m.Called(ctx, viewerID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Complaint), args.Error(1)
}

// MockReferenceRepository is a mock implementation of repository.ReferenceRepository
type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockReferenceRepository) ListStatuses(ctx context.Context) ([]*models.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Status), args.Error(1)
}

func (m *MockReferenceRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockReferenceRepository) GetStatusByName(ctx context.Context, name string) (*models.Status, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Status), args.Error(1)
}

func (m *MockReferenceRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}
