package response

import (
	"net/http"

	"ivr-service/internal/domain/menu"

	"github.com/gin-gonic/gin"
)

// Response is the error envelope for non-menu answers. Menus go out as raw
// descriptors because the PBX parses the top-level JSON object directly.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Menu sends a menu descriptor as the top-level JSON object.
func Menu(c *gin.Context, d menu.Descriptor) {
	c.JSON(http.StatusOK, d)
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error) {
	c.Abort()

	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}

	c.JSON(code, resp)
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}
