package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Внутренние ошибки логируются, клиент получает только обобщённое сообщение.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("Request error")

		// Ответ уже отправлен, остаётся только залогировать
		if c.Writer.Written() {
			return
		}

		statusCode := http.StatusInternalServerError
		message := apperror.ErrInternal.Message
		if appErr, ok := apperror.As(err.Err); ok {
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}
