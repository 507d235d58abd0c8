package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type getPriceResponse struct {
	C float64 `json:"c"`
}

func (m ApiHandler) getPrice(c *gin.Context) {
	ticker := strings.TrimSpace(c.Query("ticker"))
	if ticker == "" {
		returnErrorJsonCode(errors.New("ticker query parameter is required"), c, http.StatusBadRequest)
		return
	}

	q, err := m.PortfolioService.GetPrice(c, ticker)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, getPriceResponse{C: q.Price})
}
