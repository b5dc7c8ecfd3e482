// Package memory keeps control plane records in process memory. It is used
// when no database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
)

type deploymentRepo struct {
	mu    sync.RWMutex
	items map[string]domain.ModelDeployment
}

func NewDeploymentRepository() ports.DeploymentRepository {
	return &deploymentRepo{items: make(map[string]domain.ModelDeployment)}
}

func key(namespace, name string) string { return namespace + "/" + name }

func (r *deploymentRepo) Create(_ context.Context, d *domain.ModelDeployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(d.Namespace, d.Name)
	if _, ok := r.items[k]; ok {
		return domain.ErrDeploymentExists
	}
	r.items[k] = *d
	return nil
}

func (r *deploymentRepo) GetByName(_ context.Context, namespace, name string) (*domain.ModelDeployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[key(namespace, name)]
	if !ok {
		return nil, domain.ErrDeploymentNotFound
	}
	return &d, nil
}

func (r *deploymentRepo) Update(_ context.Context, d *domain.ModelDeployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(d.Namespace, d.Name)
	if _, ok := r.items[k]; !ok {
		return domain.ErrDeploymentNotFound
	}
	r.items[k] = *d
	return nil
}

func (r *deploymentRepo) Delete(_ context.Context, namespace, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(namespace, name)
	if _, ok := r.items[k]; !ok {
		return domain.ErrDeploymentNotFound
	}
	delete(r.items, k)
	return nil
}

func (r *deploymentRepo) List(_ context.Context, namespace string) ([]*domain.ModelDeployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ModelDeployment, 0, len(r.items))
	for _, d := range r.items {
		if namespace != "" && d.Namespace != namespace {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Ensure interface compliance
var _ ports.DeploymentRepository = (*deploymentRepo)(nil)
