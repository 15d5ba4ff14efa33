package handler

import (
	"net/http"

	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/service"
	"github.com/fleetms/vms-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var filter dto.ActivityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.service.Activity(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *DashboardHandler) Trends(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	points, err := h.service.Trends(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}
