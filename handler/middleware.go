package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"library/log"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags the request context with a logger carrying the request id
// and writes one access line once the request is done.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		ctx := c.Request.Context()
		entry := log.GetLogger(ctx).WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(log.WithLogger(ctx, entry))

		c.Next()

		entry.WithFields(logrus.Fields{
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("request handled")
	}
}

func recovery(development bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(log.Root().WriterLevel(logrus.ErrorLevel), func(c *gin.Context, recovered any) {
		body := gin.H{"status": statusError, "message": "Something went wrong"}
		if development {
			body["error"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}
