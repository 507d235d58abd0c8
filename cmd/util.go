package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"rebalance/api"
	"rebalance/internal/logger"
	"rebalance/internal/repository"
	"rebalance/internal/service"
	"rebalance/internal/util"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
)

func CloseDependencies(handler *api.ApiHandler) {
	for _, closeFn := range handler.Closers {
		if err := closeFn(); err != nil {
			handler.Logger.Errorf("failed to close dependency: %v", err)
		}
	}
}

func InitializeDependencies(ctx context.Context) (*api.ApiHandler, error) {
	log := logger.New()

	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	closers := []func() error{}

	var portfolioRepository repository.PortfolioRepository
	switch secrets.Storage.Kind {
	case util.StoragePostgres:
		dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		closers = append(closers, dbConn.Close)
		portfolioRepository = repository.NewPortfolioRepository(dbConn)
	case util.StorageDynamo:
		portfolioRepository, err = repository.NewDynamoPortfolioRepository(ctx, secrets.Dynamo.Region, secrets.Dynamo.Table)
		if err != nil {
			return nil, err
		}
	case util.StorageMemory:
		log.Warn("using in-memory portfolio storage, nothing will persist")
		portfolioRepository = repository.NewMemoryPortfolioRepository()
	default:
		return nil, fmt.Errorf("unknown storage kind %q", secrets.Storage.Kind)
	}

	var quoteRepository repository.QuoteRepository
	switch secrets.Quotes.Provider {
	case util.QuoteProviderYahoo:
		quoteRepository = repository.NewYahooQuoteRepository()
	case util.QuoteProviderAlpaca:
		quoteRepository = repository.NewAlpacaQuoteRepository(
			secrets.Quotes.Alpaca.ApiKey,
			secrets.Quotes.Alpaca.ApiSecret,
			secrets.Quotes.Alpaca.Endpoint,
		)
	default:
		return nil, fmt.Errorf("unknown quote provider %q", secrets.Quotes.Provider)
	}

	if secrets.Redis != nil && secrets.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     secrets.Redis.Addr,
			Password: secrets.Redis.Password,
		})
		closers = append(closers, redisClient.Close)
		quoteRepository = repository.NewCachedQuoteRepository(redisClient, secrets.Redis.Ttl(), quoteRepository)
	}

	log.Infow("dependencies initialized",
		"storage", secrets.Storage.Kind,
		"quotes", secrets.Quotes.Provider,
		"quoteCache", secrets.Redis != nil && secrets.Redis.Addr != "",
	)

	return &api.ApiHandler{
		PortfolioService: service.NewPortfolioService(portfolioRepository, quoteRepository),
		JwtDecodeToken:   secrets.Jwt,
		AllowedOrigins:   secrets.AllowedOrigins,
		Logger:           log,
		Port:             secrets.Port,
		Closers:          closers,
	}, nil
}
