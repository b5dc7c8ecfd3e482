package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/services"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/proxy"
)

// InferenceHandler serves the model loaded by one inference server.
type InferenceHandler struct {
	svc          *services.InferenceService
	exposeErrors bool
}

// NewInference creates the inference handler. With exposeErrors unset, the
// text of forward pass failures is replaced by a generic message.
func NewInference(svc *services.InferenceService, exposeErrors bool) *InferenceHandler {
	return &InferenceHandler{svc: svc, exposeErrors: exposeErrors}
}

func (h *InferenceHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/predict/", h.Predict)

	// Probes and introspection
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/model", h.GetModelInfo)
}

type ControlPlaneHandler struct {
	svc            *services.ControlPlaneService
	proxy          *proxy.Client
	maxUploadBytes int64
}

// NewControlPlane creates the control plane handler. predictProxy may be nil,
// in which case prediction forwarding answers 503.
func NewControlPlane(svc *services.ControlPlaneService, predictProxy *proxy.Client, maxUploadBytes int64) *ControlPlaneHandler {
	return &ControlPlaneHandler{svc: svc, proxy: predictProxy, maxUploadBytes: maxUploadBytes}
}

func (h *ControlPlaneHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/", h.Index)
	r.GET("/healthz", h.Healthz)

	// Models
	r.POST("/uploadModel", h.UploadModel)
	r.POST("/upload_model", h.UploadModel)
	r.GET("/records", h.ListRecords)

	// Cluster views
	r.GET("/getDeployments", h.ListDeployments)
	r.GET("/getDeploymentPods/:name", h.ListDeploymentPods)
	r.GET("/getallPods", h.ListPods)

	// Lifecycle
	r.POST("/scalePod", h.ScaleDeployment)
	r.POST("/stopPod", h.StopDeployment)
	r.POST("/startPod", h.StartDeployment)
	r.DELETE("/delete", h.DeleteDeployment)

	// Predictions through the model's Service
	r.POST("/predict/:name", h.ProxyPredict)
}
