package api

import (
	"fmt"
	"net/http"
	"rebalance/internal/domain"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) getPortfolio(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	holdings, err := m.PortfolioService.GetPortfolio(c, identity)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, holdings)
}

func (m ApiHandler) setPortfolio(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	holdings := []domain.Holding{}
	if err := c.ShouldBindJSON(&holdings); err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid portfolio: %w", err), c, http.StatusBadRequest)
		return
	}

	err = m.PortfolioService.SetPortfolio(c, identity, holdings)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, map[string]string{
		"success": "put call succeed!",
	})
}

func (m ApiHandler) deletePortfolio(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	err = m.PortfolioService.DeletePortfolio(c, identity)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, map[string]string{
		"success": "delete call succeed!",
	})
}
