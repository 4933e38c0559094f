package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

// Envelope represents the common response contract:
// {success, message, data?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON sends a success response wrapping data in the envelope.
func JSON(c *gin.Context, status int, data interface{}, message string) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if message == "" {
		message = "ok"
	}
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// OK responds with HTTP 200 and the given payload.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data, "")
}

// Accepted responds with HTTP 202, used when an ingestion task has merely
// been scheduled.
func Accepted(c *gin.Context, data interface{}) {
	JSON(c, http.StatusAccepted, data, "accepted")
}

// Error sends an error response converting the error into the envelope,
// mapping the error kind to its HTTP status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Success: false, Message: appErr.Message})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
