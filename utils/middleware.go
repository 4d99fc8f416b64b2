package utils

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CacheControl sets the cache-control header for a route group.
// Zero seconds means no-cache; photo routes override with a long max-age.
func CacheControl(seconds int) gin.HandlerFunc {
	value := "no-cache"
	if seconds > 0 {
		value = "private, max-age=" + strconv.Itoa(seconds)
	}
	return func(c *gin.Context) {
		c.Header("cache-control", value)
		c.Next()
	}
}

type errorLogWriter struct {
	gin.ResponseWriter
	gc *gin.Context
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	status := w.gc.Writer.Status()
	if status >= 400 {
		log.Printf("[DEBUG ERROR]: Status %d, Body: %s", status, string(b))
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware doesn't work with GZIP
func ErrorLogMiddleware(c *gin.Context) {
	blw := &errorLogWriter{gc: c, ResponseWriter: c.Writer}
	c.Writer = blw
	c.Next()
}
