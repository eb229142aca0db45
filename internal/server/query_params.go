package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

func timeParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: missing %s", ErrInvalidRequest, name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339", ErrInvalidRequest, name)
	}
	return t, nil
}

func durationParam(c *gin.Context, name string, fallback time.Duration) (time.Duration, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a duration such as 5m or 1h", ErrInvalidRequest, name)
	}
	return d, nil
}
