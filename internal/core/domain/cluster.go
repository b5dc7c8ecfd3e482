package domain

import "time"

// DeploymentSpec describes the workload created for one model.
type DeploymentSpec struct {
	Namespace     string
	ModelName     string
	Image         string
	Replicas      int32
	ContainerPort int32
	ServicePort   int32
	ClaimName     string
	MountPath     string // also passed to the container as MODEL_DIR
	SubPath       string
}

// Condition mirrors a Kubernetes workload condition.
type Condition struct {
	Type               string    `json:"type"`
	Status             string    `json:"status"`
	Reason             string    `json:"reason,omitempty"`
	Message            string    `json:"message,omitempty"`
	LastTransitionTime time.Time `json:"last_transition_time"`
}

// ContainerPort is a port exposed by a container.
type ContainerPort struct {
	ContainerPort int32  `json:"container_port"`
	Protocol      string `json:"protocol"`
}

// EnvVar is a plain name/value environment entry.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ContainerTemplate summarises a container of a pod template.
type ContainerTemplate struct {
	Name            string          `json:"container_name"`
	Image           string          `json:"image"`
	Ports           []ContainerPort `json:"ports"`
	Env             []EnvVar        `json:"env"`
	ImagePullPolicy string          `json:"image_pull_policy"`
}

// Volume summarises a pod volume.
type Volume struct {
	Name       string `json:"name"`
	VolumeType string `json:"volume_type"`
	ClaimName  string `json:"claim_name,omitempty"`
}

// ServicePort is a port exposed by a Service.
type ServicePort struct {
	Port       int32  `json:"port"`
	TargetPort string `json:"target_port"`
	Protocol   string `json:"protocol"`
}

// ServiceInfo summarises the Service fronting a model deployment.
type ServiceInfo struct {
	Name       string        `json:"name"`
	ClusterIP  string        `json:"cluster_ip"`
	ExternalIP string        `json:"external_ip,omitempty"`
	Ports      []ServicePort `json:"ports"`
	Error      string        `json:"error,omitempty"`
}

// DeploymentInfo is the cluster-side view of a model deployment.
type DeploymentInfo struct {
	Name                 string              `json:"name"`
	Namespace            string              `json:"namespace"`
	Replicas             int32               `json:"replicas"`
	AvailableReplicas    int32               `json:"available_replicas"`
	ReadyReplicas        int32               `json:"ready_replicas"`
	CreationTimestamp    time.Time           `json:"creation_timestamp"`
	Labels               map[string]string   `json:"labels"`
	Annotations          map[string]string   `json:"annotations"`
	Selector             map[string]string   `json:"selector"`
	Strategy             string              `json:"strategy"`
	MinReadySeconds      int32               `json:"min_ready_seconds"`
	RevisionHistoryLimit *int32              `json:"revision_history_limit,omitempty"`
	Conditions           []Condition         `json:"conditions"`
	PodTemplate          []ContainerTemplate `json:"pod_template"`
	Volumes              []Volume            `json:"volumes"`
	Service              *ServiceInfo        `json:"service"`
}

// PodInfo is the cluster-side view of one pod.
type PodInfo struct {
	Name           string   `json:"pod_name"`
	Status         string   `json:"status"`
	StatusMessage  string   `json:"status_message"`
	PodIP          string   `json:"pod_ip"`
	Containers     []string `json:"spec_containers"`
	ServiceIP      string   `json:"pod_service_ip"`
	ServiceIPPort  string   `json:"pod_service_ip_port"`
	DeploymentName string   `json:"deployment_name,omitempty"`
}
