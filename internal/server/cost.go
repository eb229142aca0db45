package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	costingdomain "github.com/smallbiznis/voltgrid/internal/costing/domain"
)

func (s *Server) GetCost(c *gin.Context) {
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

	report, err := s.costingSvc.GetCost(c.Request.Context(), costingdomain.CostRequest{
		UnitCode: c.Param("code"),
		From:     from,
		To:       to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
