package testutil

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
)

// MockModelStore is a mock of ModelStore.
type MockModelStore struct {
	mock.Mock
}

func (m *MockModelStore) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockModelStore) Load(ctx context.Context, path string) (*nn.Sequential, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nn.Sequential), args.Error(1)
}

func (m *MockModelStore) Save(ctx context.Context, path string, model *nn.Sequential) error {
	args := m.Called(ctx, path, model)
	return args.Error(0)
}

func (m *MockModelStore) Import(ctx context.Context, path string, r io.Reader, limit int64) error {
	args := m.Called(ctx, path, r, limit)
	return args.Error(0)
}

// MockDeploymentRepo is a mock of DeploymentRepository.
type MockDeploymentRepo struct {
	mock.Mock
}

func (m *MockDeploymentRepo) Create(ctx context.Context, d *domain.ModelDeployment) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeploymentRepo) GetByName(ctx context.Context, namespace, name string) (*domain.ModelDeployment, error) {
	args := m.Called(ctx, namespace, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelDeployment), args.Error(1)
}

func (m *MockDeploymentRepo) Update(ctx context.Context, d *domain.ModelDeployment) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeploymentRepo) Delete(ctx context.Context, namespace, name string) error {
	args := m.Called(ctx, namespace, name)
	return args.Error(0)
}

func (m *MockDeploymentRepo) List(ctx context.Context, namespace string) ([]*domain.ModelDeployment, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ModelDeployment), args.Error(1)
}

// MockClusterClient is a mock of ClusterClient.
type MockClusterClient struct {
	mock.Mock
}

func (m *MockClusterClient) EnsureNamespace(ctx context.Context, namespace string) error {
	args := m.Called(ctx, namespace)
	return args.Error(0)
}

func (m *MockClusterClient) CreateDeployment(ctx context.Context, spec domain.DeploymentSpec) (*domain.DeploymentInfo, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeploymentInfo), args.Error(1)
}

func (m *MockClusterClient) CreateService(ctx context.Context, spec domain.DeploymentSpec) (*domain.ServiceInfo, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceInfo), args.Error(1)
}

func (m *MockClusterClient) GetDeployment(ctx context.Context, namespace, modelName string) (*domain.DeploymentInfo, error) {
	args := m.Called(ctx, namespace, modelName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeploymentInfo), args.Error(1)
}

func (m *MockClusterClient) ListDeployments(ctx context.Context, namespace string) ([]domain.DeploymentInfo, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeploymentInfo), args.Error(1)
}

func (m *MockClusterClient) ListPods(ctx context.Context, namespace, modelName string) ([]domain.PodInfo, error) {
	args := m.Called(ctx, namespace, modelName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PodInfo), args.Error(1)
}

func (m *MockClusterClient) Scale(ctx context.Context, namespace, modelName string, replicas int32) error {
	args := m.Called(ctx, namespace, modelName, replicas)
	return args.Error(0)
}

func (m *MockClusterClient) Delete(ctx context.Context, namespace, modelName string) error {
	args := m.Called(ctx, namespace, modelName)
	return args.Error(0)
}

func (m *MockClusterClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

var (
	_ ports.ModelStore           = (*MockModelStore)(nil)
	_ ports.DeploymentRepository = (*MockDeploymentRepo)(nil)
	_ ports.ClusterClient        = (*MockClusterClient)(nil)
)
