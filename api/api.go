package api

import (
	"errors"
	"fmt"
	"net/http"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	"rebalance/internal/service"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	PortfolioService service.PortfolioService
	JwtDecodeToken   string
	// empty allows every origin
	AllowedOrigins []string
	Logger         *zap.SugaredLogger
	Port           int
	// release hooks for whatever InitializeDependencies opened
	Closers []func() error
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(m.corsConfig()))
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to rebalance"})
	})
	router.GET("/prices", m.getPrice)

	authed := router.Group("/", m.authMiddleware)
	authed.GET("/portfolio", m.getPortfolio)
	authed.PUT("/portfolio", m.setPortfolio)
	authed.DELETE("/portfolio", m.deletePortfolio)
	authed.GET("/rebalance", m.rebalance)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func (m ApiHandler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(m.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = m.AllowedOrigins
	}
	return cfg
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusForError(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c)
	if code >= 500 {
		log.Error(err.Error())
	} else {
		log.Info(err.Error())
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func statusForError(err error) int {
	authErr := &domain.AuthError{}
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownTicker):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	base := m.Logger
	if base == nil {
		base = zap.S()
	}
	log := base.With(
		"requestID", uuid.NewString(),
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
	)
	c.Set(logger.ContextKey, log)

	start := time.Now().UTC()
	c.Next()

	log.Infow("request completed",
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
