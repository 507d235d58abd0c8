package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"rebalance/internal/domain"
	"rebalance/internal/repository"
	mock_repository "rebalance/internal/repository/mocks"
	"rebalance/internal/service"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testJwtSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T, quoteRepository repository.QuoteRepository) ApiHandler {
	return ApiHandler{
		PortfolioService: service.NewPortfolioService(
			repository.NewMemoryPortfolioRepository(),
			quoteRepository,
		),
		JwtDecodeToken: testJwtSecret,
		Logger:         zap.NewNop().Sugar(),
	}
}

func signTestToken(t *testing.T, subject string, expiresAt time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
		"aud": "authenticated",
	})
	s, err := token.SignedString([]byte(testJwtSecret))
	require.NoError(t, err)
	return s
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPortfolioRoutes(t *testing.T) {
	t.Run("empty portfolio before first save", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()
		token := signTestToken(t, "user-1", time.Now().Add(time.Hour))

		w := doRequest(t, router, http.MethodGet, "/portfolio", nil, token)
		require.Equal(t, 200, w.Code)
		require.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("put then get round trips", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()
		token := signTestToken(t, "user-1", time.Now().Add(time.Hour))

		w := doRequest(t, router, http.MethodPut, "/portfolio", `[{"ticker":"SPX","qty":"700","pct":100}]`, token)
		require.Equal(t, 200, w.Code)
		require.JSONEq(t, `{"success":"put call succeed!"}`, w.Body.String())

		w = doRequest(t, router, http.MethodGet, "/portfolio", nil, token)
		require.Equal(t, 200, w.Code)
		require.JSONEq(t, `[{"ticker":"SPX","qty":700,"pct":100}]`, w.Body.String())

		// another identity sees nothing
		other := signTestToken(t, "user-2", time.Now().Add(time.Hour))
		w = doRequest(t, router, http.MethodGet, "/portfolio", nil, other)
		require.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("delete clears the portfolio", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()
		token := signTestToken(t, "user-1", time.Now().Add(time.Hour))

		doRequest(t, router, http.MethodPut, "/portfolio", []domain.Holding{{Ticker: "SPX", Qty: 1, Pct: 100}}, token)
		w := doRequest(t, router, http.MethodDelete, "/portfolio", nil, token)
		require.Equal(t, 200, w.Code)

		w = doRequest(t, router, http.MethodGet, "/portfolio", nil, token)
		require.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("invalid body", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()
		token := signTestToken(t, "user-1", time.Now().Add(time.Hour))

		w := doRequest(t, router, http.MethodPut, "/portfolio", `[{"ticker":"SPX","qty":"many"}]`, token)
		require.Equal(t, 400, w.Code)
	})

	t.Run("requires a valid token", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()

		w := doRequest(t, router, http.MethodGet, "/portfolio", nil, "")
		require.Equal(t, 401, w.Code)

		expired := signTestToken(t, "user-1", time.Now().Add(-time.Hour))
		w = doRequest(t, router, http.MethodGet, "/portfolio", nil, expired)
		require.Equal(t, 401, w.Code)

		w = doRequest(t, router, http.MethodGet, "/portfolio", nil, "not.a.token")
		require.Equal(t, 401, w.Code)
	})

	t.Run("cors headers", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()
		req := httptest.NewRequest(http.MethodOptions, "/portfolio", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})
}

func TestPriceRoute(t *testing.T) {
	t.Run("known ticker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		router := newTestHandler(t, quoteRepository).InitializeRouterEngine()

		quoteRepository.EXPECT().
			GetQuote(gomock.Any(), "SPY").
			Return(&domain.PriceQuote{Ticker: "SPY", Price: 512.5}, nil)

		w := doRequest(t, router, http.MethodGet, "/prices?ticker=SPY", nil, "")
		require.Equal(t, 200, w.Code)
		require.JSONEq(t, `{"c":512.5}`, w.Body.String())
	})

	t.Run("unknown ticker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
		router := newTestHandler(t, quoteRepository).InitializeRouterEngine()

		quoteRepository.EXPECT().
			GetQuote(gomock.Any(), "NOPE").
			Return(nil, &domain.PriceLookupError{Ticker: "NOPE", Err: domain.ErrUnknownTicker})

		w := doRequest(t, router, http.MethodGet, "/prices?ticker=NOPE", nil, "")
		require.Equal(t, 404, w.Code)
	})

	t.Run("missing ticker", func(t *testing.T) {
		router := newTestHandler(t, nil).InitializeRouterEngine()
		w := doRequest(t, router, http.MethodGet, "/prices", nil, "")
		require.Equal(t, 400, w.Code)
	})
}

func TestRebalanceRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	quoteRepository := mock_repository.NewMockQuoteRepository(ctrl)
	router := newTestHandler(t, quoteRepository).InitializeRouterEngine()
	token := signTestToken(t, "user-1", time.Now().Add(time.Hour))

	quoteRepository.EXPECT().
		GetQuote(gomock.Any(), "A").
		Return(&domain.PriceQuote{Ticker: "A", Price: 10}, nil)
	quoteRepository.EXPECT().
		GetQuote(gomock.Any(), "B").
		Return(nil, &domain.PriceLookupError{Ticker: "B", Err: domain.ErrUnknownTicker})

	doRequest(t, router, http.MethodPut, "/portfolio", `[{"ticker":"A","qty":7,"pct":50},{"ticker":"B","qty":3,"pct":50}]`, token)

	w := doRequest(t, router, http.MethodGet, "/rebalance", nil, token)
	require.Equal(t, 200, w.Code)
	require.JSONEq(
		t,
		`[
			{"ticker":"A","qty":7,"pct":50,"price":10,"value":70,"buy":-4},
			{"ticker":"B","qty":3,"pct":50,"price":0,"value":0,"buy":"+Inf"}
		]`,
		w.Body.String(),
	)
}
