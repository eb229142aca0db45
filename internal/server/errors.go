package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	aggregationdomain "github.com/smallbiznis/voltgrid/internal/aggregation/domain"
	costingdomain "github.com/smallbiznis/voltgrid/internal/costing/domain"
	"github.com/smallbiznis/voltgrid/internal/normalizer"
	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

// ErrorHandlingMiddleware renders the last gin error as a JSON body once the
// handler chain finishes. Handlers never write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, normalizer.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "schema_mismatch",
			Message: "payload does not match any known device schema",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, telemetrydomain.ErrInvalidEquipment),
		errors.Is(err, telemetrydomain.ErrInvalidCategory),
		errors.Is(err, telemetrydomain.ErrInvalidRange),
		errors.Is(err, telemetrydomain.ErrInvalidPatch),
		errors.Is(err, aggregationdomain.ErrInvalidBucketWidth),
		errors.Is(err, tariffdomain.ErrInvalidConcessionaire),
		errors.Is(err, unitdomain.ErrInvalidUnit),
		errors.Is(err, costingdomain.ErrInvalidPeriod):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, telemetrydomain.ErrReadingNotFound),
		errors.Is(err, unitdomain.ErrUnitNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, tariffdomain.ErrTariffNotFound),
		errors.Is(err, costingdomain.ErrRateNotConfigured):
		// Billing fails closed when tariff configuration is missing.
		return http.StatusFailedDependency, errorPayload{
			Type:    "tariff_not_configured",
			Message: err.Error(),
		}
	case errors.Is(err, telemetrydomain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "store_unavailable",
			Message: "storage temporarily unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
