package kubernetes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/config"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
)

const (
	labelApp       = "app"
	labelManagedBy = "app.kubernetes.io/managed-by"
	managerName    = "mlmdp-controlplane"
	volumeName     = "shared-volume"
)

type clusterClient struct {
	clientset kubernetes.Interface
	enabled   bool
}

// NewClusterClient creates a new Kubernetes client adapter
func NewClusterClient(cfg *config.KubernetesConfig) (ports.ClusterClient, error) {
	if !cfg.Enabled {
		return &clusterClient{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		// Try default kubeconfig location
		home, _ := os.UserHomeDir()
		kubeconfig := filepath.Join(home, ".kube", "config")
		restCfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	return NewClusterClientForClientset(clientset), nil
}

// NewClusterClientForClientset wraps an existing clientset (a fake one in tests).
func NewClusterClientForClientset(clientset kubernetes.Interface) ports.ClusterClient {
	return &clusterClient{clientset: clientset, enabled: true}
}

func (c *clusterClient) IsAvailable() bool {
	return c.enabled
}

func (c *clusterClient) EnsureNamespace(ctx context.Context, namespace string) error {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("get namespace: %w", err)
	}

	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: namespace}}
	if _, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("create namespace: %w", err)
	}
	return nil
}

func (c *clusterClient) CreateDeployment(ctx context.Context, spec domain.DeploymentSpec) (*domain.DeploymentInfo, error) {
	created, err := c.clientset.AppsV1().Deployments(spec.Namespace).
		Create(ctx, buildDeployment(spec), metav1.CreateOptions{})
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			return nil, domain.ErrDeploymentExists
		}
		return nil, fmt.Errorf("create deployment: %w", err)
	}

	info := toDeploymentInfo(created, nil)
	return &info, nil
}

func (c *clusterClient) CreateService(ctx context.Context, spec domain.DeploymentSpec) (*domain.ServiceInfo, error) {
	created, err := c.clientset.CoreV1().Services(spec.Namespace).
		Create(ctx, buildService(spec), metav1.CreateOptions{})
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			return nil, domain.ErrDeploymentExists
		}
		return nil, fmt.Errorf("create service: %w", err)
	}
	return toServiceInfo(created), nil
}

func (c *clusterClient) GetDeployment(ctx context.Context, namespace, modelName string) (*domain.DeploymentInfo, error) {
	d, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, domain.DeploymentName(modelName), metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("get deployment: %w", err)
	}
	info := toDeploymentInfo(d, nil)
	return &info, nil
}

func (c *clusterClient) ListDeployments(ctx context.Context, namespace string) ([]domain.DeploymentInfo, error) {
	deployments, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	services, err := c.servicesByModel(ctx, namespace)
	if err != nil {
		return nil, err
	}

	items := make([]domain.DeploymentInfo, 0, len(deployments.Items))
	for i := range deployments.Items {
		d := &deployments.Items[i]
		var svc *corev1.Service
		if s, ok := services[d.Spec.Template.Labels[labelApp]]; ok {
			svc = s
		}
		items = append(items, toDeploymentInfo(d, svc))
	}
	return items, nil
}

func (c *clusterClient) ListPods(ctx context.Context, namespace, modelName string) ([]domain.PodInfo, error) {
	opts := metav1.ListOptions{}
	if modelName != "" {
		opts.LabelSelector = labels.SelectorFromSet(labels.Set{labelApp: modelName}).String()
	}
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	services, err := c.servicesByModel(ctx, namespace)
	if err != nil {
		return nil, err
	}

	items := make([]domain.PodInfo, 0, len(pods.Items))
	for i := range pods.Items {
		p := &pods.Items[i]
		info := domain.PodInfo{
			Name:          p.Name,
			Status:        string(p.Status.Phase),
			StatusMessage: podMessage(p),
			PodIP:         p.Status.PodIP,
		}
		for _, ct := range p.Spec.Containers {
			info.Containers = append(info.Containers, ct.Name)
		}
		if model := p.Labels[labelApp]; model != "" {
			info.DeploymentName = domain.DeploymentName(model)
			if svc, ok := services[model]; ok {
				info.ServiceIP = svc.Spec.ClusterIP
				if len(svc.Spec.Ports) > 0 {
					info.ServiceIPPort = strconv.Itoa(int(svc.Spec.Ports[0].Port))
				}
			}
		}
		items = append(items, info)
	}
	return items, nil
}

func (c *clusterClient) Scale(ctx context.Context, namespace, modelName string, replicas int32) error {
	deployments := c.clientset.AppsV1().Deployments(namespace)

	d, err := deployments.Get(ctx, domain.DeploymentName(modelName), metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return domain.ErrDeploymentNotFound
		}
		return fmt.Errorf("get deployment: %w", err)
	}

	d.Spec.Replicas = &replicas
	if _, err := deployments.Update(ctx, d, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("scale deployment: %w", err)
	}
	return nil
}

func (c *clusterClient) Delete(ctx context.Context, namespace, modelName string) error {
	err := c.clientset.AppsV1().Deployments(namespace).
		Delete(ctx, domain.DeploymentName(modelName), metav1.DeleteOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return domain.ErrDeploymentNotFound
		}
		return fmt.Errorf("delete deployment: %w", err)
	}

	err = c.clientset.CoreV1().Services(namespace).
		Delete(ctx, domain.ServiceName(modelName), metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

// servicesByModel indexes the namespace's services by their app selector.
func (c *clusterClient) servicesByModel(ctx context.Context, namespace string) (map[string]*corev1.Service, error) {
	list, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make(map[string]*corev1.Service, len(list.Items))
	for i := range list.Items {
		svc := &list.Items[i]
		if model := svc.Spec.Selector[labelApp]; model != "" {
			out[model] = svc
		}
	}
	return out, nil
}

func modelLabels(model string) map[string]string {
	return map[string]string{
		labelApp:       model,
		labelManagedBy: managerName,
	}
}

func buildDeployment(spec domain.DeploymentSpec) *appsv1.Deployment {
	replicas := spec.Replicas
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      domain.DeploymentName(spec.ModelName),
			Namespace: spec.Namespace,
			Labels:    modelLabels(spec.ModelName),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{labelApp: spec.ModelName},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: modelLabels(spec.ModelName),
				},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:            spec.ModelName + "-container",
						Image:           spec.Image,
						ImagePullPolicy: corev1.PullIfNotPresent,
						Ports: []corev1.ContainerPort{{
							ContainerPort: spec.ContainerPort,
							Protocol:      corev1.ProtocolTCP,
						}},
						Env: []corev1.EnvVar{
							{Name: "MODEL_NAME", Value: spec.ModelName},
							{Name: "MODEL_DIR", Value: spec.MountPath},
							{Name: "SERVER_PORT", Value: strconv.Itoa(int(spec.ContainerPort))},
						},
						VolumeMounts: []corev1.VolumeMount{{
							Name:      volumeName,
							MountPath: spec.MountPath,
							SubPath:   spec.SubPath,
							ReadOnly:  true,
						}},
						ReadinessProbe: &corev1.Probe{
							ProbeHandler: corev1.ProbeHandler{
								HTTPGet: &corev1.HTTPGetAction{
									Path: "/readyz",
									Port: intstr.FromInt32(spec.ContainerPort),
								},
							},
						},
					}},
					Volumes: []corev1.Volume{{
						Name: volumeName,
						VolumeSource: corev1.VolumeSource{
							PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
								ClaimName: spec.ClaimName,
							},
						},
					}},
				},
			},
		},
	}
}

func buildService(spec domain.DeploymentSpec) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      domain.ServiceName(spec.ModelName),
			Namespace: spec.Namespace,
			Labels:    modelLabels(spec.ModelName),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeLoadBalancer,
			Selector: map[string]string{labelApp: spec.ModelName},
			Ports: []corev1.ServicePort{{
				Protocol:   corev1.ProtocolTCP,
				Port:       spec.ServicePort,
				TargetPort: intstr.FromInt32(spec.ContainerPort),
			}},
		},
	}
}

func toDeploymentInfo(d *appsv1.Deployment, svc *corev1.Service) domain.DeploymentInfo {
	info := domain.DeploymentInfo{
		Name:                 d.Name,
		Namespace:            d.Namespace,
		AvailableReplicas:    d.Status.AvailableReplicas,
		ReadyReplicas:        d.Status.ReadyReplicas,
		CreationTimestamp:    d.CreationTimestamp.Time,
		Labels:               d.Labels,
		Annotations:          d.Annotations,
		Strategy:             string(d.Spec.Strategy.Type),
		MinReadySeconds:      d.Spec.MinReadySeconds,
		RevisionHistoryLimit: d.Spec.RevisionHistoryLimit,
	}
	if d.Spec.Replicas != nil {
		info.Replicas = *d.Spec.Replicas
	}
	if d.Spec.Selector != nil {
		info.Selector = d.Spec.Selector.MatchLabels
	}
	for _, cond := range d.Status.Conditions {
		info.Conditions = append(info.Conditions, domain.Condition{
			Type:               string(cond.Type),
			Status:             string(cond.Status),
			Reason:             cond.Reason,
			Message:            cond.Message,
			LastTransitionTime: cond.LastTransitionTime.Time,
		})
	}
	for _, ct := range d.Spec.Template.Spec.Containers {
		tmpl := domain.ContainerTemplate{
			Name:            ct.Name,
			Image:           ct.Image,
			ImagePullPolicy: string(ct.ImagePullPolicy),
		}
		for _, p := range ct.Ports {
			tmpl.Ports = append(tmpl.Ports, domain.ContainerPort{ContainerPort: p.ContainerPort, Protocol: string(p.Protocol)})
		}
		for _, e := range ct.Env {
			tmpl.Env = append(tmpl.Env, domain.EnvVar{Name: e.Name, Value: e.Value})
		}
		info.PodTemplate = append(info.PodTemplate, tmpl)
	}
	for _, v := range d.Spec.Template.Spec.Volumes {
		vol := domain.Volume{Name: v.Name, VolumeType: "other"}
		switch {
		case v.PersistentVolumeClaim != nil:
			vol.VolumeType = "persistentVolumeClaim"
			vol.ClaimName = v.PersistentVolumeClaim.ClaimName
		case v.EmptyDir != nil:
			vol.VolumeType = "emptyDir"
		case v.ConfigMap != nil:
			vol.VolumeType = "configMap"
		}
		info.Volumes = append(info.Volumes, vol)
	}
	if svc != nil {
		info.Service = toServiceInfo(svc)
	}
	return info
}

func toServiceInfo(svc *corev1.Service) *domain.ServiceInfo {
	info := &domain.ServiceInfo{
		Name:      svc.Name,
		ClusterIP: svc.Spec.ClusterIP,
	}
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.IP != "" {
			info.ExternalIP = ing.IP
			break
		}
		if ing.Hostname != "" {
			info.ExternalIP = ing.Hostname
			break
		}
	}
	for _, p := range svc.Spec.Ports {
		info.Ports = append(info.Ports, domain.ServicePort{
			Port:       p.Port,
			TargetPort: p.TargetPort.String(),
			Protocol:   string(p.Protocol),
		})
	}
	return info
}

func podMessage(p *corev1.Pod) string {
	if p.Status.Message != "" {
		return p.Status.Message
	}
	for _, cs := range p.Status.ContainerStatuses {
		if w := cs.State.Waiting; w != nil {
			if w.Message != "" {
				return w.Reason + ": " + w.Message
			}
			return w.Reason
		}
		if t := cs.State.Terminated; t != nil {
			return t.Reason
		}
	}
	return ""
}

// Ensure interface compliance
var _ ports.ClusterClient = (*clusterClient)(nil)
