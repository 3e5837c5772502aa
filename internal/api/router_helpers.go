package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/middleware"
)

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid := middleware.GetRequestID(c); rid != "" {
			fields["request_id"] = rid
		}
		log.WithFields(fields).Info("request")
	}
}

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(name, id string) error {
	if id == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if len(id) > 255 {
		return fmt.Errorf("%s exceeds maximum length of 255", name)
	}
	return nil
}

// parsePositiveQueryInt parses an optional integer query parameter. An
// absent parameter yields 0, which the paginator treats as "use the
// default"; a present one must be at least 1.
func parsePositiveQueryInt(c *gin.Context, name string) (int, error) {
	s, present := c.GetQuery(name)
	if !present {
		return 0, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}

	if v < 1 {
		return 0, fmt.Errorf("%s must be >= 1, got %d", name, v)
	}

	return v, nil
}

// parseQueryBool parses an optional boolean query parameter; absent is false.
func parseQueryBool(c *gin.Context, name string) (bool, error) {
	s := c.Query(name)
	if s == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}

	return v, nil
}
