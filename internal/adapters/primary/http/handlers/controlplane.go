package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/dto"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

// room for multipart boundaries and headers on top of the artifact itself
const multipartOverhead = 1 << 20

func (h *ControlPlaneHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, "Control Plane API for managing ML models")
}

func (h *ControlPlaneHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"kubernetes": h.svc.ClusterAvailable(),
	})
}

func (h *ControlPlaneHandler) UploadModel(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			mapDomainError(c, domain.ErrUploadTooLarge)
			return
		}
		mapDomainError(c, domain.ErrMissingModelFile)
		return
	}

	f, err := fh.Open()
	if err != nil {
		log.WithError(err).Error("open uploaded file failed")
		mapDomainError(c, err)
		return
	}
	defer f.Close()

	result, err := h.svc.UploadModel(c.Request.Context(), fh.Filename, f)
	if err != nil {
		log.WithError(err).WithField("file", fh.Filename).Error("upload model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadModelResponse{
		Message:    result.Message,
		Deployment: dto.ToDeploymentRecordResponse(result.Deployment),
		Service:    result.Service,
	})
}

func (h *ControlPlaneHandler) ListRecords(c *gin.Context) {
	records, err := h.svc.Records(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list deployment records failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListRecordsResponse(records))
}

func (h *ControlPlaneHandler) ListDeployments(c *gin.Context) {
	items, err := h.svc.ListDeployments(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list deployments failed")
		mapDomainError(c, err)
		return
	}
	if items == nil {
		items = []domain.DeploymentInfo{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *ControlPlaneHandler) ListDeploymentPods(c *gin.Context) {
	pods, err := h.svc.DeploymentPods(c.Request.Context(), c.Param("name"))
	if err != nil {
		log.WithError(err).Error("list deployment pods failed")
		mapDomainError(c, err)
		return
	}
	if pods == nil {
		pods = []domain.PodInfo{}
	}
	c.JSON(http.StatusOK, pods)
}

func (h *ControlPlaneHandler) ListPods(c *gin.Context) {
	pods, err := h.svc.ListPods(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list pods failed")
		mapDomainError(c, err)
		return
	}
	if pods == nil {
		pods = []domain.PodInfo{}
	}
	c.JSON(http.StatusOK, pods)
}

func (h *ControlPlaneHandler) ScaleDeployment(c *gin.Context) {
	var req dto.ScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Scale(c.Request.Context(), req.PodName, *req.Replicas); err != nil {
		log.WithError(err).WithField("deployment", req.PodName).Error("scale deployment failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Deployment " + req.PodName + " scaled"})
}

func (h *ControlPlaneHandler) StopDeployment(c *gin.Context) {
	var req dto.PodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Stop(c.Request.Context(), req.PodName); err != nil {
		log.WithError(err).WithField("deployment", req.PodName).Error("stop deployment failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Deployment " + req.PodName + " stopped"})
}

func (h *ControlPlaneHandler) StartDeployment(c *gin.Context) {
	var req dto.PodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Start(c.Request.Context(), req.PodName); err != nil {
		log.WithError(err).WithField("deployment", req.PodName).Error("start deployment failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Deployment " + req.PodName + " started"})
}

func (h *ControlPlaneHandler) DeleteDeployment(c *gin.Context) {
	var req dto.PodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), req.PodName); err != nil {
		log.WithError(err).WithField("deployment", req.PodName).Error("delete deployment failed")
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Deployment " + req.PodName + " deleted"})
}

func (h *ControlPlaneHandler) ProxyPredict(c *gin.Context) {
	if h.proxy == nil {
		mapDomainError(c, domain.ErrClusterNotAvailable)
		return
	}
	model := domain.ModelNameOf(c.Param("name"))
	if !domain.IsValidModelName(model) {
		mapDomainError(c, domain.ErrInvalidModelName)
		return
	}

	headers := http.Header{}
	headers.Set("Content-Type", c.GetHeader("Content-Type"))
	if id := c.GetString("request_id"); id != "" {
		headers.Set("X-Request-ID", id)
	}

	resp, err := h.proxy.Forward(c.Request.Context(), model, http.MethodPost, "/predict/", c.Request.Body, headers)
	if err != nil {
		log.WithError(err).WithField("model", model).Error("forward prediction failed")
		mapDomainError(c, err)
		return
	}
	defer resp.Body.Close()

	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
}
