package ports

import (
	"context"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

type DeploymentRepository interface {
	Create(ctx context.Context, d *domain.ModelDeployment) error
	GetByName(ctx context.Context, namespace, name string) (*domain.ModelDeployment, error)
	Update(ctx context.Context, d *domain.ModelDeployment) error
	Delete(ctx context.Context, namespace, name string) error
	List(ctx context.Context, namespace string) ([]*domain.ModelDeployment, error)
}
