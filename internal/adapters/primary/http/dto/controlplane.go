package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

// ============================================================================
// Request DTOs
// ============================================================================

// PodRequest names a model deployment; field names match the dashboard client
type PodRequest struct {
	PodName string `json:"PodName" binding:"required"`
}

// ScaleRequest sets the replica count of a model deployment
type ScaleRequest struct {
	PodName  string `json:"PodName" binding:"required"`
	Replicas *int32 `json:"Replicas" binding:"required,min=0,max=100"`
}

// ============================================================================
// Response DTOs
// ============================================================================

type MessageResponse struct {
	Message string `json:"message"`
}

// UploadModelResponse is returned after a model was stored and deployed
type UploadModelResponse struct {
	Message    string                   `json:"message"`
	Deployment DeploymentRecordResponse `json:"deployment"`
	Service    *domain.ServiceInfo      `json:"service,omitempty"`
}

// DeploymentRecordResponse is a deployment created through the control plane
type DeploymentRecordResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Namespace      string    `json:"namespace"`
	SourceFile     string    `json:"source_file"`
	ArtifactPath   string    `json:"artifact_path"`
	Image          string    `json:"image"`
	Replicas       int32     `json:"replicas"`
	Status         string    `json:"status"`
	StatusMessage  string    `json:"status_message,omitempty"`
	DeploymentName string    `json:"deployment_name"`
	ServiceName    string    `json:"service_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListRecordsResponse struct {
	Items []DeploymentRecordResponse `json:"items"`
	Total int                        `json:"total"`
}

func ToDeploymentRecordResponse(d *domain.ModelDeployment) DeploymentRecordResponse {
	return DeploymentRecordResponse{
		ID:             d.ID,
		Name:           d.Name,
		Namespace:      d.Namespace,
		SourceFile:     d.SourceFile,
		ArtifactPath:   d.ArtifactPath,
		Image:          d.Image,
		Replicas:       d.Replicas,
		Status:         string(d.Status),
		StatusMessage:  d.StatusMessage,
		DeploymentName: d.DeploymentName,
		ServiceName:    d.ServiceName,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func ToListRecordsResponse(records []*domain.ModelDeployment) ListRecordsResponse {
	items := make([]DeploymentRecordResponse, 0, len(records))
	for _, d := range records {
		items = append(items, ToDeploymentRecordResponse(d))
	}
	return ListRecordsResponse{Items: items, Total: len(items)}
}
