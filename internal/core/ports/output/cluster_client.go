package ports

import (
	"context"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

// ClusterClient defines the contract for the Kubernetes operations of the control plane
type ClusterClient interface {
	// EnsureNamespace creates the namespace when it does not exist yet
	EnsureNamespace(ctx context.Context, namespace string) error

	// CreateDeployment creates the Deployment running the inference server for a model
	CreateDeployment(ctx context.Context, spec domain.DeploymentSpec) (*domain.DeploymentInfo, error)

	// CreateService creates the LoadBalancer Service in front of a model deployment
	CreateService(ctx context.Context, spec domain.DeploymentSpec) (*domain.ServiceInfo, error)

	// GetDeployment returns the Deployment of a model or domain.ErrDeploymentNotFound
	GetDeployment(ctx context.Context, namespace, modelName string) (*domain.DeploymentInfo, error)

	// ListDeployments returns all model deployments with their services
	ListDeployments(ctx context.Context, namespace string) ([]domain.DeploymentInfo, error)

	// ListPods returns pods, optionally restricted to one model (empty = all)
	ListPods(ctx context.Context, namespace, modelName string) ([]domain.PodInfo, error)

	// Scale sets the replica count of a model deployment
	Scale(ctx context.Context, namespace, modelName string, replicas int32) error

	// Delete removes the Deployment and Service of a model
	Delete(ctx context.Context, namespace, modelName string) error

	// IsAvailable checks if Kubernetes integration is enabled and configured
	IsAvailable() bool
}
