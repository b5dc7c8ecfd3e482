package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// DeploymentStatus represents the state of a model deployment
type DeploymentStatus string

const (
	DeploymentStatusPending  DeploymentStatus = "PENDING"
	DeploymentStatusDeployed DeploymentStatus = "DEPLOYED"
	DeploymentStatusStopped  DeploymentStatus = "STOPPED"
	DeploymentStatusFailed   DeploymentStatus = "FAILED"
)

// IsValid checks if the status is valid
func (s DeploymentStatus) IsValid() bool {
	switch s {
	case DeploymentStatusPending, DeploymentStatusDeployed, DeploymentStatusStopped, DeploymentStatusFailed:
		return true
	}
	return false
}

const (
	MaxReplicas       = 100
	maxModelNameChars = 40
)

// SanitizeModelName derives a DNS-1123 label from an uploaded file name:
// base name without extension, lower case, underscores turned into dashes,
// anything else outside [a-z0-9-] dropped.
func SanitizeModelName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(strings.ReplaceAll(base, "_", "-"))

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	// Leaves room for the "-deployment" and "python-service-" affixes.
	if len(name) > maxModelNameChars {
		name = name[:maxModelNameChars]
	}
	return strings.Trim(name, "-")
}

// IsValidModelName reports whether name is already in the form
// SanitizeModelName produces: a lower case DNS label of [a-z0-9-].
func IsValidModelName(name string) bool {
	if name == "" || len(name) > maxModelNameChars {
		return false
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// ModelNameOf accepts a model name or its Deployment name and returns the model name.
func ModelNameOf(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), "-deployment")
}

// DeploymentName is the Kubernetes Deployment name for a model.
func DeploymentName(model string) string { return model + "-deployment" }

// ServiceName is the Kubernetes Service name for a model.
func ServiceName(model string) string { return "python-service-" + model }

// ============================================================================
// Entities
// ============================================================================

// ModelDeployment is the control plane's record of an uploaded model and the
// workload created for it.
type ModelDeployment struct {
	ID             uuid.UUID        `json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Name           string           `json:"name"`
	Namespace      string           `json:"namespace"`
	SourceFile     string           `json:"source_file"`
	ArtifactPath   string           `json:"artifact_path"`
	Image          string           `json:"image"`
	Replicas       int32            `json:"replicas"`
	Status         DeploymentStatus `json:"status"`
	StatusMessage  string           `json:"status_message,omitempty"`
	DeploymentName string           `json:"deployment_name"`
	ServiceName    string           `json:"service_name"`
}

// NewModelDeployment creates a new ModelDeployment with validation
func NewModelDeployment(name, namespace, sourceFile, artifactPath, image string) (*ModelDeployment, error) {
	if name == "" {
		return nil, ErrInvalidModelName
	}
	now := time.Now()
	return &ModelDeployment{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Name:           name,
		Namespace:      namespace,
		SourceFile:     sourceFile,
		ArtifactPath:   artifactPath,
		Image:          image,
		Replicas:       1,
		Status:         DeploymentStatusPending,
		DeploymentName: DeploymentName(name),
		ServiceName:    ServiceName(name),
	}, nil
}

// MarkDeployed marks the deployment as created in the cluster
func (d *ModelDeployment) MarkDeployed() {
	d.Status = DeploymentStatusDeployed
	d.StatusMessage = ""
	d.UpdatedAt = time.Now()
}

// MarkFailed marks the deployment as failed with a reason
func (d *ModelDeployment) MarkFailed(reason string) {
	d.Status = DeploymentStatusFailed
	d.StatusMessage = reason
	d.UpdatedAt = time.Now()
}

// SetReplicas records a scale operation; zero replicas means stopped.
func (d *ModelDeployment) SetReplicas(replicas int32) error {
	if replicas < 0 || replicas > MaxReplicas {
		return ErrInvalidReplicas
	}
	d.Replicas = replicas
	if replicas == 0 {
		d.Status = DeploymentStatusStopped
	} else {
		d.Status = DeploymentStatusDeployed
	}
	d.UpdatedAt = time.Now()
	return nil
}
