package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maxaizer/cv-matcher/internal/logger"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	log "github.com/sirupsen/logrus"
	"strconv"
	"time"
)

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id":  c.GetString("request_id"),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": c.ClientIP(),
		})
		if c.Writer.Status() >= 500 {
			entry.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Error("http request failed")
		} else {
			entry.Info("http request")
		}
	}
}

// requestMetrics labels by route template so path parameters don't explode cardinality.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
