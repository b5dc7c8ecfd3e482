package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
)

// ControlPlaneSettings are the deployment parameters shared by every model.
type ControlPlaneSettings struct {
	Namespace      string
	SharedDir      string
	Image          string
	ClaimName      string
	MountPath      string
	ContainerPort  int32
	ServicePort    int32
	MaxUploadBytes int64
}

// ControlPlaneService turns uploaded model artifacts into running inference servers.
type ControlPlaneService struct {
	store    ports.ModelStore
	cluster  ports.ClusterClient
	repo     ports.DeploymentRepository
	settings ControlPlaneSettings
}

func NewControlPlaneService(
	store ports.ModelStore,
	cluster ports.ClusterClient,
	repo ports.DeploymentRepository,
	settings ControlPlaneSettings,
) *ControlPlaneService {
	if settings.MountPath == "" {
		settings.MountPath = "/app/models"
	}
	return &ControlPlaneService{
		store:    store,
		cluster:  cluster,
		repo:     repo,
		settings: settings,
	}
}

type UploadResult struct {
	Deployment *domain.ModelDeployment
	Service    *domain.ServiceInfo
	Message    string
}

// UploadModel stores an uploaded artifact under <shared>/<name>/model.h5 and
// creates the Deployment and LoadBalancer Service serving it.
func (s *ControlPlaneService) UploadModel(ctx context.Context, fileName string, r io.Reader) (*UploadResult, error) {
	if fileName == "" || r == nil {
		return nil, domain.ErrMissingModelFile
	}
	name := domain.SanitizeModelName(fileName)
	if name == "" {
		return nil, domain.ErrInvalidModelName
	}
	if err := s.requireCluster(); err != nil {
		return nil, err
	}

	ns := s.settings.Namespace
	existing, err := s.repo.GetByName(ctx, ns, name)
	switch {
	case err == nil && existing.Status != domain.DeploymentStatusFailed:
		return nil, domain.ErrDeploymentExists
	case err != nil && !errors.Is(err, domain.ErrDeploymentNotFound):
		return nil, fmt.Errorf("lookup deployment: %w", err)
	}

	// A Deployment without a live record (records lost on restart, or a
	// retry after CreateService failed) still serves the artifact.
	if _, err := s.cluster.GetDeployment(ctx, ns, name); err == nil {
		return nil, domain.ErrDeploymentExists
	} else if !errors.Is(err, domain.ErrDeploymentNotFound) {
		return nil, clusterErr(err)
	}

	if existing != nil {
		// a failed attempt may be retried with a new upload
		if err := s.repo.Delete(ctx, ns, name); err != nil {
			return nil, fmt.Errorf("delete failed deployment record: %w", err)
		}
	}

	path := filepath.Join(s.settings.SharedDir, name, domain.ModelFileName)
	d, err := domain.NewModelDeployment(name, ns, fileName, path, s.settings.Image)
	if err != nil {
		return nil, err
	}
	// The record claims the name before the artifact is written, so a
	// concurrent upload of the same name stops here.
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create deployment record: %w", err)
	}
	if err := s.store.Import(ctx, path, r, s.settings.MaxUploadBytes); err != nil {
		if derr := s.repo.Delete(ctx, ns, name); derr != nil {
			log.WithError(derr).WithField("model", name).Warn("delete deployment record failed")
		}
		return nil, err
	}

	spec := s.specFor(name)
	logger := log.WithFields(log.Fields{"model": name, "namespace": ns})

	if err := s.cluster.EnsureNamespace(ctx, ns); err != nil {
		return nil, s.fail(ctx, d, err)
	}
	if _, err := s.cluster.CreateDeployment(ctx, spec); err != nil {
		return nil, s.fail(ctx, d, err)
	}
	svc, err := s.cluster.CreateService(ctx, spec)
	if err != nil {
		return nil, s.fail(ctx, d, err)
	}

	d.MarkDeployed()
	if err := s.repo.Update(ctx, d); err != nil {
		logger.WithError(err).Warn("update deployment record failed")
	}
	logger.Info("model deployed")

	return &UploadResult{
		Deployment: d,
		Service:    svc,
		Message:    fmt.Sprintf("Model %s uploaded successfully", fileName),
	}, nil
}

func (s *ControlPlaneService) ListDeployments(ctx context.Context) ([]domain.DeploymentInfo, error) {
	if err := s.requireCluster(); err != nil {
		return nil, err
	}
	items, err := s.cluster.ListDeployments(ctx, s.settings.Namespace)
	if err != nil {
		return nil, clusterErr(err)
	}
	return items, nil
}

func (s *ControlPlaneService) ListPods(ctx context.Context) ([]domain.PodInfo, error) {
	if err := s.requireCluster(); err != nil {
		return nil, err
	}
	pods, err := s.cluster.ListPods(ctx, s.settings.Namespace, "")
	if err != nil {
		return nil, clusterErr(err)
	}
	return pods, nil
}

// DeploymentPods accepts either the model name or its Deployment name.
func (s *ControlPlaneService) DeploymentPods(ctx context.Context, name string) ([]domain.PodInfo, error) {
	model := domain.ModelNameOf(name)
	if !domain.IsValidModelName(model) {
		return nil, domain.ErrInvalidModelName
	}
	if err := s.requireCluster(); err != nil {
		return nil, err
	}
	pods, err := s.cluster.ListPods(ctx, s.settings.Namespace, model)
	if err != nil {
		return nil, clusterErr(err)
	}
	return pods, nil
}

func (s *ControlPlaneService) Scale(ctx context.Context, name string, replicas int32) error {
	if replicas < 0 || replicas > domain.MaxReplicas {
		return domain.ErrInvalidReplicas
	}
	model := domain.ModelNameOf(name)
	if !domain.IsValidModelName(model) {
		return domain.ErrInvalidModelName
	}
	if err := s.requireCluster(); err != nil {
		return err
	}

	if err := s.cluster.Scale(ctx, s.settings.Namespace, model, replicas); err != nil {
		return clusterErr(err)
	}

	d, err := s.repo.GetByName(ctx, s.settings.Namespace, model)
	switch {
	case err == nil:
		_ = d.SetReplicas(replicas)
		if err := s.repo.Update(ctx, d); err != nil {
			log.WithError(err).WithField("model", model).Warn("update deployment record failed")
		}
	case !errors.Is(err, domain.ErrDeploymentNotFound):
		log.WithError(err).WithField("model", model).Warn("lookup deployment record failed")
	}

	log.WithFields(log.Fields{"model": model, "replicas": replicas}).Info("deployment scaled")
	return nil
}

func (s *ControlPlaneService) Stop(ctx context.Context, name string) error {
	return s.Scale(ctx, name, 0)
}

func (s *ControlPlaneService) Start(ctx context.Context, name string) error {
	return s.Scale(ctx, name, 1)
}

// Delete removes the Deployment, the Service and the record of a model.
// The artifact on the shared volume is kept.
func (s *ControlPlaneService) Delete(ctx context.Context, name string) error {
	model := domain.ModelNameOf(name)
	if !domain.IsValidModelName(model) {
		return domain.ErrInvalidModelName
	}
	if err := s.requireCluster(); err != nil {
		return err
	}

	if err := s.cluster.Delete(ctx, s.settings.Namespace, model); err != nil {
		return clusterErr(err)
	}
	if err := s.repo.Delete(ctx, s.settings.Namespace, model); err != nil && !errors.Is(err, domain.ErrDeploymentNotFound) {
		return fmt.Errorf("delete deployment record: %w", err)
	}

	log.WithField("model", model).Info("deployment deleted")
	return nil
}

// Records lists the deployments created through the control plane.
func (s *ControlPlaneService) Records(ctx context.Context) ([]*domain.ModelDeployment, error) {
	return s.repo.List(ctx, s.settings.Namespace)
}

// ClusterAvailable reports whether cluster operations can be served.
func (s *ControlPlaneService) ClusterAvailable() bool {
	return s.requireCluster() == nil
}

func (s *ControlPlaneService) requireCluster() error {
	if s.cluster == nil || !s.cluster.IsAvailable() {
		return domain.ErrClusterNotAvailable
	}
	return nil
}

func (s *ControlPlaneService) specFor(model string) domain.DeploymentSpec {
	return domain.DeploymentSpec{
		Namespace:     s.settings.Namespace,
		ModelName:     model,
		Image:         s.settings.Image,
		Replicas:      1,
		ContainerPort: s.settings.ContainerPort,
		ServicePort:   s.settings.ServicePort,
		ClaimName:     s.settings.ClaimName,
		MountPath:     s.settings.MountPath,
		SubPath:       model,
	}
}

func (s *ControlPlaneService) fail(ctx context.Context, d *domain.ModelDeployment, cause error) error {
	d.MarkFailed(cause.Error())
	if err := s.repo.Update(ctx, d); err != nil {
		log.WithError(err).WithField("model", d.Name).Warn("update deployment record failed")
	}
	log.WithError(cause).WithField("model", d.Name).Error("deploy model failed")
	return clusterErr(cause)
}

// clusterErr keeps the domain errors the cluster adapter maps to and wraps
// everything else as ErrClusterOperation.
func clusterErr(err error) error {
	if errors.Is(err, domain.ErrDeploymentNotFound) || errors.Is(err, domain.ErrDeploymentExists) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrClusterOperation, err)
}
