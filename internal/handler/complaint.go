package handler

import (
	"net/http"
	"strings"

	"civicreport/internal/middleware"
	"civicreport/internal/models"
	"civicreport/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ComplaintHandler interface {
	CreateComplaint(c *gin.Context)
	GetComplaints(c *gin.Context)
	GetComplaintByID(c *gin.Context)
	SearchComplaints(c *gin.Context)
	UpdateComplaintStatus(c *gin.Context)
}

type complaintHandler struct {
	complaintService service.ComplaintService
	logger           *zap.Logger
}

func NewComplaintHandler(complaintService service.ComplaintService, logger *zap.Logger) ComplaintHandler {
	return &complaintHandler{complaintService: complaintService, logger: logger}
}

func (h *complaintHandler) CreateComplaint(c *gin.Context) {
	var input models.CreateComplaintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, h.logger, err, msgInvalidBody)
		return
	}

	id, err := h.complaintService.Create(c.Request.Context(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Complaint created successfully",
		"complaint_id": id,
	})
}

// GetComplaints lists the caller's complaints, or every complaint for an admin.
func (h *complaintHandler) GetComplaints(c *gin.Context) {
	var query models.ListComplaintsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, h.logger, err, msgInvalidQuery)
		return
	}

	page, err := h.complaintService.List(c.Request.Context(), middleware.CurrentUser(c).ID, query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *complaintHandler) GetComplaintByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	complaint, err := h.complaintService.Get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": complaint})
}

func (h *complaintHandler) SearchComplaints(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	complaints, err := h.complaintService.Search(c.Request.Context(), middleware.CurrentUser(c).ID, query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

func (h *complaintHandler) UpdateComplaintStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input models.UpdateComplaintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, h.logger, err, msgInvalidBody)
		return
	}

	if err := h.complaintService.UpdateStatus(c.Request.Context(), id, input.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint updated successfully"})
}
