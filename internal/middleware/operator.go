package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medlabel/medlabel-backend/internal/logger"
)

// OperatorKey is the gin context key carrying the operator session identity.
const OperatorKey = "operator_id"

// OperatorMiddleware attaches the free-text operator identity from the
// X-Operator-ID header. There is deliberately no authentication behind it;
// the id only scopes claims to a session.
type OperatorMiddleware struct {
	log *logger.Logger
}

func NewOperatorMiddleware(log *logger.Logger) *OperatorMiddleware {
	return &OperatorMiddleware{log: log.With("middleware", "OperatorMiddleware")}
}

func (om *OperatorMiddleware) RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := strings.TrimSpace(c.GetHeader("X-Operator-ID"))
		if operatorID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing X-Operator-ID header"})
			return
		}
		c.Set(OperatorKey, operatorID)
		c.Next()
	}
}

func OperatorID(c *gin.Context) string {
	return c.GetString(OperatorKey)
}
