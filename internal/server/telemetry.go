package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	"github.com/smallbiznis/voltgrid/pkg/db/pagination"
)

func (s *Server) IngestTelemetry(c *gin.Context) {
	var req telemetrydomain.NormalizeAndIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.telemetrySvc.NormalizeAndIngest(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Status == telemetrydomain.StatusSkipped {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (s *Server) ListReadings(c *gin.Context) {
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

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if page.PageSize <= 0 {
		page.PageSize = 100
	}
	if page.PageSize > 1000 {
		page.PageSize = 1000
	}

	// Newest-first retrieval is a bounded tail query; tokens only page the
	// ascending scan.
	if c.Query("order") == "newest" {
		readings, err := s.telemetrySvc.Query(c.Request.Context(), telemetrydomain.QueryRequest{
			EquipmentID: c.Param("equipment_id"),
			From:        from,
			To:          to,
			Limit:       page.PageSize,
			Newest:      true,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"readings": readings, "page_info": pagination.PageInfo{}})
		return
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		// The cursor timestamp was already served; resume just past it.
		from = cursor.RecordedAt.Add(time.Nanosecond)
	}

	readings, err := s.telemetrySvc.Query(c.Request.Context(), telemetrydomain.QueryRequest{
		EquipmentID: c.Param("equipment_id"),
		From:        from,
		To:          to,
		Limit:       page.PageSize + 1,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	readings, hasMore := pagination.Trim(readings, page.PageSize)
	info := pagination.PageInfo{HasMore: hasMore}
	if hasMore {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			RecordedAt: readings[len(readings)-1].RecordedAt,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		info.NextPageToken = token
	}

	c.JSON(http.StatusOK, gin.H{"readings": readings, "page_info": info})
}

type repairRequest struct {
	EquipmentID string                `json:"equipment_id"`
	RecordedAt  time.Time             `json:"recorded_at"`
	Patch       telemetrydomain.Patch `json:"patch"`
}

func (s *Server) RepairReading(c *gin.Context) {
	var req repairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.telemetrySvc.Repair(c.Request.Context(), req.EquipmentID, req.RecordedAt, req.Patch); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "repaired"})
}

func (s *Server) ListDuplicates(c *gin.Context) {
	groups, err := s.telemetrySvc.FindDuplicates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"duplicates": groups})
}

func (s *Server) PurgeDuplicates(c *gin.Context) {
	purged, err := s.telemetrySvc.PurgeDuplicates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
