package handler

import (
	"net/http"

	"civicreport/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReferenceHandler interface {
	GetCategories(c *gin.Context)
	GetStatuses(c *gin.Context)
	GetStats(c *gin.Context)
}

type referenceHandler struct {
	referenceService service.ReferenceService
	logger           *zap.Logger
}

func NewReferenceHandler(referenceService service.ReferenceService, logger *zap.Logger) ReferenceHandler {
	return &referenceHandler{referenceService: referenceService, logger: logger}
}

func (h *referenceHandler) GetCategories(c *gin.Context) {
	categories, err := h.referenceService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *referenceHandler) GetStatuses(c *gin.Context) {
	statuses, err := h.referenceService.Statuses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

func (h *referenceHandler) GetStats(c *gin.Context) {
	stats, err := h.referenceService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
