package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) rebalance(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	rows, err := m.PortfolioService.Rebalance(c, identity)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to rebalance: %w", err), c)
		return
	}

	c.JSON(200, rows)
}
