package handler

import (
	"net/http"

	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/service"
	"github.com/fleetms/vms-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditHandler struct {
	service service.AuditService
}

func NewAuditHandler(service service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var q dto.AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}

	logs, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":         logs,
		"total":        total,
		"current_page": q.Page,
		"per_page":     q.PerPage,
	})
}

func (h *AuditHandler) Get(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid audit log id"})
		return
	}
	entry, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}
