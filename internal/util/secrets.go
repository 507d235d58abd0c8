package util

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type Secrets struct {
	Port    int            `json:"port"`
	Storage StorageSecrets `json:"storage"`
	Db      DbSecrets      `json:"db"`
	Dynamo  DynamoSecrets  `json:"dynamo"`
	Jwt     string         `json:"jwt"`
	Quotes  QuoteSecrets   `json:"quotes"`
	Redis   *RedisSecrets  `json:"redis"`
	// empty allows every origin
	AllowedOrigins []string `json:"allowedOrigins"`
}

type StorageKind string

const (
	StoragePostgres StorageKind = "postgres"
	StorageDynamo   StorageKind = "dynamo"
	StorageMemory   StorageKind = "memory"
)

type StorageSecrets struct {
	Kind StorageKind `json:"kind"`
}

type DbSecrets struct {
	Host      string `json:"host"`
	User      string `json:"user"`
	Port      string `json:"port"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	EnableSsl bool   `json:"enableSsl"`
}

func (t DbSecrets) ToConnectionStr() string {
	x := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		t.Host, t.Port, t.User, t.Password, t.Database)
	if !t.EnableSsl {
		x += " sslmode=disable"
	}
	return x
}

type DynamoSecrets struct {
	Region string `json:"region"`
	Table  string `json:"table"`
}

type QuoteProvider string

const (
	QuoteProviderYahoo  QuoteProvider = "yahoo"
	QuoteProviderAlpaca QuoteProvider = "alpaca"
)

type QuoteSecrets struct {
	Provider QuoteProvider `json:"provider"`
	Alpaca   AlpacaSecrets `json:"alpaca"`
}

type AlpacaSecrets struct {
	ApiKey    string `json:"apiKey"`
	ApiSecret string `json:"apiSecret"`
	Endpoint  string `json:"endpoint"`
}

type RedisSecrets struct {
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	TtlSeconds int    `json:"ttlSeconds"`
}

func (r RedisSecrets) Ttl() time.Duration {
	if r.TtlSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.TtlSeconds) * time.Second
}

func secretsFile() string {
	switch strings.ToLower(os.Getenv("REBALANCE_ENV")) {
	case "dev":
		return "secrets-dev.json"
	case "test":
		return "secrets-test.json"
	}
	return "/go/src/app/secrets.json"
}

func LoadSecrets() (*Secrets, error) {
	return LoadSecretsFromFile(secretsFile())
}

func LoadSecretsFromFile(path string) (*Secrets, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	secrets := Secrets{}
	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if secrets.Port == 0 {
		secrets.Port = 3009
	}
	if secrets.Storage.Kind == "" {
		secrets.Storage.Kind = StoragePostgres
	}
	if secrets.Quotes.Provider == "" {
		secrets.Quotes.Provider = QuoteProviderYahoo
	}
	if secrets.Dynamo.Table == "" {
		secrets.Dynamo.Table = "dynamo"
		if env := os.Getenv("REBALANCE_ENV"); env != "" && env != "NONE" {
			secrets.Dynamo.Table += "-" + env
		}
	}

	return &secrets, nil
}

func NewTestDbSecrets() DbSecrets {
	return DbSecrets{
		Host:     "localhost",
		User:     "postgres",
		Port:     "5440",
		Password: "postgres",
		Database: "postgres_test",
	}
}
