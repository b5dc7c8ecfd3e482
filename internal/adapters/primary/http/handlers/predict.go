package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/adapters/primary/http/dto"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
)

func (h *InferenceHandler) Predict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	pred, err := h.svc.PredictValues(c.Request.Context(), req.Features)
	if err != nil {
		var inferErr *domain.InferenceError
		if errors.As(err, &inferErr) {
			log.WithError(err).WithField("kind", inferErr.Kind).Error("inference failed")
			if !h.exposeErrors {
				c.JSON(http.StatusInternalServerError, dto.InferenceErrorResponse{
					Error: genericInferenceMessage,
					Kind:  string(inferErr.Kind),
				})
				return
			}
		}
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PredictResponse{Prediction: pred.Values})
}

func (h *InferenceHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *InferenceHandler) Readyz(c *gin.Context) {
	state := h.svc.State()
	if state != domain.ModelStateReady {
		c.JSON(http.StatusServiceUnavailable, dto.ReadinessResponse{Status: "not ready", State: string(state)})
		return
	}
	c.JSON(http.StatusOK, dto.ReadinessResponse{Status: "ready", State: string(state)})
}

func (h *InferenceHandler) GetModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToModelInfoResponse(h.svc.Info()))
}
