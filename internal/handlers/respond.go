package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"onedish-backend/internal/models"
)

// All endpoints share the `{data?, error?}` envelope; presence of error marks
// failure regardless of status code conventions.

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, models.APIResponse{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.APIResponse{Error: message})
}

// Recovery converts a handler panic into a logged generic envelope error so
// nothing escapes to the transport layer.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("something went wrong during API request",
			"url", c.Request.URL.String(), "err", err)
		respondError(c, http.StatusBadRequest, "Something went wrong...")
	})
}
