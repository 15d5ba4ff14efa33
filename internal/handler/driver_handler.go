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

type DriverHandler struct {
	service service.DriverService
}

func NewDriverHandler(service service.DriverService) *DriverHandler {
	return &DriverHandler{service: service}
}

func (h *DriverHandler) List(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	drivers, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func (h *DriverHandler) Get(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}
	driver, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": driver})
}

func (h *DriverHandler) Create(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	driver, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": driver})
}

func (h *DriverHandler) Update(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}
	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	driver, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": driver})
}

func (h *DriverHandler) Delete(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver deleted"})
}

// AvailableUsers lists accounts eligible to become drivers.
func (h *DriverHandler) AvailableUsers(c *gin.Context) {
	actor, err := response.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var keep *uuid.UUID
	if raw := c.Query("keep_user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		keep = &id
	}
	users, err := h.service.AvailableUsers(c.Request.Context(), actor, keep)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}
