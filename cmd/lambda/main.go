package main

import (
	"context"
	"log"
	"rebalance/cmd"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"
)

type lambdaHandler struct {
	ginLambda *ginadapter.GinLambda
	logger    *zap.SugaredLogger
}

func (m lambdaHandler) Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	m.logger.Debugw("received request",
		"method", req.HTTPMethod,
		"path", req.Path,
		"requestID", req.RequestContext.RequestID,
	)
	return m.ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	apiHandler, err := cmd.InitializeDependencies(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	handler := lambdaHandler{
		ginLambda: ginadapter.New(apiHandler.InitializeRouterEngine()),
		logger:    apiHandler.Logger,
	}
	lambda.Start(handler.Handler)
}
