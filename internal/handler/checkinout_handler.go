package handler

import (
	"net/http"

	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/service"
	"github.com/fleetms/vms-backend/pkg/response"
	"github.com/fleetms/vms-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckInOutHandler struct {
	service service.CheckInOutService
}

func NewCheckInOutHandler(service service.CheckInOutService) *CheckInOutHandler {
	return &CheckInOutHandler{service: service}
}

func (h *CheckInOutHandler) List(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.List(c.Request.Context(), actor, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *CheckInOutHandler) Get(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	record, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (h *CheckInOutHandler) CheckIn(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	record, err := h.service.CheckIn(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (h *CheckInOutHandler) CheckOut(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	record, err := h.service.CheckOut(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (h *CheckInOutHandler) Update(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	var req dto.UpdateCheckInOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	record, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (h *CheckInOutHandler) Delete(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record deleted"})
}
