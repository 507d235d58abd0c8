package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"rebalance/internal/domain"
	"rebalance/internal/util"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// every implementation must hand back exactly what was saved
func requireRoundTrip(t *testing.T, r PortfolioRepository) {
	ctx := context.Background()

	empty, err := r.Get(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	first := []domain.Holding{{Ticker: "SPX", Qty: 700, Pct: 100}}
	require.NoError(t, r.Set(ctx, "user-1", first))
	got, err := r.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "", cmp.Diff(first, got))

	second := []domain.Holding{
		{Ticker: "VTI", Qty: 12.5, Pct: 60},
		{Ticker: "BND", Qty: 40, Pct: 40},
	}
	require.NoError(t, r.Set(ctx, "user-1", second))
	got, err = r.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "", cmp.Diff(second, got))

	// other identities are untouched
	other, err := r.Get(ctx, "user-2")
	require.NoError(t, err)
	require.Empty(t, other)

	require.NoError(t, r.Delete(ctx, "user-1"))
	got, err = r.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryPortfolioRepository(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		requireRoundTrip(t, NewMemoryPortfolioRepository())
	})

	t.Run("stored copy is not aliased", func(t *testing.T) {
		ctx := context.Background()
		r := NewMemoryPortfolioRepository()
		in := []domain.Holding{{Ticker: "SPX", Qty: 1, Pct: 100}}
		require.NoError(t, r.Set(ctx, "u", in))
		in[0].Qty = 99

		got, err := r.Get(ctx, "u")
		require.NoError(t, err)
		require.Equal(t, float64(1), got[0].Qty)

		got[0].Qty = 42
		again, err := r.Get(ctx, "u")
		require.NoError(t, err)
		require.Equal(t, float64(1), again[0].Qty)
	})
}

type fakeDynamoClient struct {
	items   map[string]map[string]types.AttributeValue
	failGet bool
}

func (f *fakeDynamoClient) userKey(key map[string]types.AttributeValue) string {
	return key["user"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.failGet {
		return nil, errors.New("throttled")
	}
	return &dynamodb.GetItemOutput{Item: f.items[f.userKey(params.Key)]}, nil
}

func (f *fakeDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[f.userKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, f.userKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoPortfolioRepository(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		client := &fakeDynamoClient{items: map[string]map[string]types.AttributeValue{}}
		requireRoundTrip(t, NewDynamoPortfolioRepositoryWithClient(client, "dynamo-test"))
	})

	t.Run("item layout", func(t *testing.T) {
		client := &fakeDynamoClient{items: map[string]map[string]types.AttributeValue{}}
		r := NewDynamoPortfolioRepositoryWithClient(client, "dynamo-test")
		err := r.Set(context.Background(), "us-east-2:abc", []domain.Holding{{Ticker: "SPX", Qty: 700, Pct: 100}})
		require.NoError(t, err)

		item := client.items["us-east-2:abc"]
		require.Contains(t, item, "user")
		require.Contains(t, item, "portfolio")
		list, ok := item["portfolio"].(*types.AttributeValueMemberL)
		require.True(t, ok)
		require.Len(t, list.Value, 1)
	})

	t.Run("get failure is wrapped", func(t *testing.T) {
		client := &fakeDynamoClient{failGet: true}
		r := NewDynamoPortfolioRepositoryWithClient(client, "dynamo-test")
		_, err := r.Get(context.Background(), "u")
		require.ErrorContains(t, err, "throttled")
	})
}

func newTestDb(t *testing.T) *sql.DB {
	if os.Getenv("REBALANCE_TEST_DB") == "" {
		t.Skip("REBALANCE_TEST_DB is not set; skipping postgres tests")
	}
	db, err := sql.Open("postgres", util.NewTestDbSecrets().ToConnectionStr())
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		t.Skipf("test db unreachable: %v", err)
	}

	migration, err := os.ReadFile("../../migrations/0001_portfolio.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(migration))
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM portfolio WHERE user_identity IN ('nobody', 'user-1', 'user-2')`)
	require.NoError(t, err)

	return db
}

func TestPortfolioRepository_postgres(t *testing.T) {
	db := newTestDb(t)
	defer db.Close()

	requireRoundTrip(t, NewPortfolioRepository(db))
}
