package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	supabaseauth "rebalance/pkg/supabase-auth"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL    string
	Auth       supabaseauth.Config
	HttpClient *http.Client
}

type client struct {
	baseURL    string
	auth       supabaseauth.Config
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

func New(cfg Config) Gateway {
	httpClient := cfg.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		auth:       cfg.Auth,
		httpClient: httpClient,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type priceResponse struct {
	C float64 `json:"c"`
}

func (c *client) SignIn(ctx context.Context, username, password string) {
	log := logger.FromContext(ctx)

	session, err := supabaseauth.SignInWithPassword(ctx, c.httpClient, c.auth, username, password)
	if err != nil {
		log.Warnw("sign in failed", "error", &domain.AuthError{Err: err})
		return
	}

	c.mu.Lock()
	c.accessToken = session.AccessToken
	c.mu.Unlock()
	log.Infow("signed in", "user", session.User.ID)
}

func (c *client) GetPortfolio(ctx context.Context) ([]domain.Holding, error) {
	out := []domain.Holding{}
	status, err := c.do(ctx, http.MethodGet, "/portfolio", nil, &out)
	if err != nil {
		return nil, &domain.BackendError{Op: "load", StatusCode: status, Err: err}
	}
	return out, nil
}

func (c *client) SetPortfolio(ctx context.Context, holdings []domain.Holding) error {
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	status, err := c.do(ctx, http.MethodPut, "/portfolio", holdings, nil)
	if err != nil {
		return &domain.BackendError{Op: "save", StatusCode: status, Err: err}
	}
	return nil
}

func (c *client) DeletePortfolio(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodDelete, "/portfolio", nil, nil)
	if err != nil {
		return &domain.BackendError{Op: "delete", StatusCode: status, Err: err}
	}
	return nil
}

func (c *client) GetPrice(ctx context.Context, ticker string) (*domain.PriceQuote, error) {
	out := priceResponse{}
	status, err := c.do(ctx, http.MethodGet, "/prices?ticker="+url.QueryEscape(ticker), nil, &out)
	if status == http.StatusNotFound {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}
	if err != nil {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: err}
	}

	return &domain.PriceQuote{
		Ticker: ticker,
		Price:  out.C,
		Date:   time.Now().UTC(),
	}, nil
}

// do sends a request and decodes a 2xx body into out when out is non-nil.
// The returned status is 0 when no response was received.
func (c *client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	c.mu.RUnlock()

	response, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		errJson := errorResponse{}
		if json.Unmarshal(responseBytes, &errJson) == nil && errJson.Error != "" {
			return response.StatusCode, errors.New(errJson.Error)
		}
		return response.StatusCode, fmt.Errorf("unexpected status %s", response.Status)
	}

	if out != nil {
		if err := json.Unmarshal(responseBytes, out); err != nil {
			return response.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return response.StatusCode, nil
}
