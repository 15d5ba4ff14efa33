package response

import (
	"net/http"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Actor retrieves the authenticated caller (id + role) from the context.
func Actor(c *gin.Context) (authz.Actor, error) {
	v, exists := c.Get("actor")
	if !exists {
		return authz.Actor{}, apperror.ErrUnauthenticated
	}

	actor, ok := v.(authz.Actor)
	if !ok {
		return authz.Actor{}, apperror.ErrUnauthenticated
	}

	return actor, nil
}

// Error writes a standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("internal error")
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
