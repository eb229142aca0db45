package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	aggregationdomain "github.com/smallbiznis/voltgrid/internal/aggregation/domain"
)

const defaultBucketWidth = 5 * time.Minute

func (s *Server) GetHistory(c *gin.Context) {
	from, err := timeParam(c, "from")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := timeParam(c, "to")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	width, err := durationParam(c, "bucket", defaultBucketWidth)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	buckets, err := s.aggregationSvc.GetHistory(c.Request.Context(), aggregationdomain.HistoryRequest{
		EquipmentID: c.Param("equipment_id"),
		From:        from,
		To:          to,
		BucketWidth: width,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"buckets": buckets})
}
