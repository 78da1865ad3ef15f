package common

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dgenny/propostas/internal/dto"
	"github.com/dgenny/propostas/internal/logger"
	"github.com/dgenny/propostas/internal/pkg/apperror"
)

// MaxBodyBytes предел размера тела запроса.
const MaxBodyBytes = 1 << 20

// ReadFields читает тело запроса как JSON-объект.
// Пустое, битое, не объектное или превышающее MaxBodyBytes тело считается пустым объектом.
func ReadFields(c *gin.Context) map[string]any {
	if c.Request.Body == nil {
		return map[string]any{}
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	raw, err := c.GetRawData()
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Warn("тело запроса не прочитано, используется {}")
		return map[string]any{}
	}
	if len(raw) == 0 {
		return map[string]any{}
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		logger.Log.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"bytes": len(raw),
		}).Debug("тело запроса не является JSON-объектом, используется {}")
		return map[string]any{}
	}
	return fields
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondAppError отвечает клиенту по AppError. Прочие ошибки передаются
// в middleware.ErrorHandler, который логирует их и отвечает 500.
func RespondAppError(c *gin.Context, err error) {
	if appErr, ok := apperror.As(err); ok {
		entry := logger.Log.WithFields(logrus.Fields{
			"code":   appErr.Code,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			entry.WithError(appErr.Cause).Warn("запрос завершился ошибкой хранилища")
		} else {
			entry.Debug(appErr.Message)
		}
		RespondError(c, appErr.HTTPStatus, appErr.Message)
		return
	}
	_ = c.Error(err)
}
