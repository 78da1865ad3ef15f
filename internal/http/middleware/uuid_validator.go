package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDValidator проверяет, что параметр с указанным именем является UUID
// в каноническом виде (36 символов, нижний регистр).
// Использование: api.GET("/proposta/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		if idStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "parâmetro " + paramName + " é obrigatório",
			})
			return
		}

		parsed, err := uuid.Parse(idStr)
		if err != nil || parsed.String() != idStr {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "parâmetro " + paramName + " deve ser um UUID válido",
			})
			return
		}

		c.Next()
	}
}
