package main

import (
	"context"
	"log"
	"os"
	"rebalance/cmd"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	apiHandler, err := cmd.InitializeDependencies(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	apiHandler.Logger.Infow("starting api", "commitHash", os.Getenv("commit_hash"))
	err = apiHandler.StartApi(apiHandler.Port)
	if err != nil {
		log.Fatal(err)
	}
}
