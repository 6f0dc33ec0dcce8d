package portfolio

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/purunsolnp/sonagi-stock/internal/catalog"
	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/models"
	"github.com/purunsolnp/sonagi-stock/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := common.NewSilentLogger()
	svc := NewService(memory.NewManager(logger), catalog.Default(), logger)

	var mu sync.Mutex
	tick := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Minute)
		return tick
	}
	return svc
}

func ctxFor(userID string) context.Context {
	return common.WithUserContext(context.Background(), &common.UserContext{UserID: userID})
}

func ptr[T any](v T) *T { return &v }

func TestDerive_Scenario(t *testing.T) {
	item := Derive(models.PortfolioItem{AvgPrice: 100, Quantity: 10, CurrentPrice: 110})
	assert.Equal(t, 1100.0, item.CurrentValue)
	assert.Equal(t, 100.0, item.ReturnAmount)
	assert.Equal(t, 10.0, item.ReturnRate)
}

func TestDerive_Loss(t *testing.T) {
	item := Derive(models.PortfolioItem{AvgPrice: 50, Quantity: 4, CurrentPrice: 45.5})
	assert.Equal(t, 182.0, item.CurrentValue)
	assert.Equal(t, -18.0, item.ReturnAmount)
	assert.Equal(t, -9.0, item.ReturnRate)
}

func TestDerive_RateNotRounded(t *testing.T) {
	item := Derive(models.PortfolioItem{AvgPrice: 3, Quantity: 1, CurrentPrice: 4})
	assert.InDelta(t, (4.0-3.0)/3.0*100, item.ReturnRate, 1e-9)
	assert.NotEqual(t, 33.33, item.ReturnRate)

	tot := Totals([]models.PortfolioItem{{AvgPrice: 3, Quantity: 1, CurrentPrice: 4}})
	assert.InDelta(t, item.ReturnRate, tot.ReturnRate, 1e-9)
}

func TestTotals(t *testing.T) {
	items := []models.PortfolioItem{
		{AvgPrice: 100, Quantity: 10, CurrentPrice: 110},
		{AvgPrice: 50, Quantity: 20, CurrentPrice: 40},
	}
	tot := Totals(items)
	assert.Equal(t, 2000.0, tot.TotalCost)
	assert.Equal(t, 1900.0, tot.TotalValue)
	assert.Equal(t, -100.0, tot.ReturnAmount)
	assert.Equal(t, -5.0, tot.ReturnRate)
	assert.Equal(t, 2, tot.Count)
}

func TestTotals_ZeroCostBasis(t *testing.T) {
	tot := Totals(nil)
	assert.Equal(t, 0.0, tot.ReturnRate)
	assert.Equal(t, 0, tot.Count)

	tot = Totals([]models.PortfolioItem{{AvgPrice: 0, Quantity: 3, CurrentPrice: 10}})
	assert.Equal(t, 30.0, tot.ReturnAmount)
	assert.Equal(t, 0.0, tot.ReturnRate)
}

func TestAdd_ClassifiesFromCatalog(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	stock, err := svc.Add(ctx, models.AddItemInput{Ticker: "aapl", AvgPrice: 200, Quantity: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, stock.ID)
	assert.Equal(t, "AAPL", stock.Ticker)
	assert.Equal(t, "Apple Inc.", stock.Name)
	assert.False(t, stock.IsETF)
	assert.Equal(t, "Technology", stock.Classification)
	// 0.44% is below the stock dividend threshold
	assert.False(t, stock.HasDividend)
	assert.Equal(t, 227.5, stock.CurrentPrice)
	assert.Equal(t, 682.5, stock.CurrentValue)
	assert.Equal(t, stock.CreatedAt, stock.UpdatedAt)

	etf, err := svc.Add(ctx, models.AddItemInput{Ticker: "SCHD", AvgPrice: 25, Quantity: 10})
	require.NoError(t, err)
	assert.True(t, etf.IsETF)
	assert.Equal(t, "Dividend", etf.Classification)
	assert.True(t, etf.HasDividend)
	assert.Equal(t, 3.6, etf.DividendYield)
}

func TestAdd_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	cases := []struct {
		name  string
		input models.AddItemInput
	}{
		{"empty ticker", models.AddItemInput{Ticker: " ", AvgPrice: 1, Quantity: 1}},
		{"zero price", models.AddItemInput{Ticker: "AAPL", AvgPrice: 0, Quantity: 1}},
		{"negative quantity", models.AddItemInput{Ticker: "AAPL", AvgPrice: 1, Quantity: -2}},
		{"unknown ticker", models.AddItemInput{Ticker: "ZZZZ", AvgPrice: 1, Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tc.input)
			assert.True(t, errors.Is(err, models.ErrValidation), "got %v", err)
		})
	}
}

func TestAdd_DuplicateIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	_, err := svc.Add(ctx, models.AddItemInput{Ticker: "MSFT", AvgPrice: 400, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Add(ctx, models.AddItemInput{Ticker: "msft", AvgPrice: 410, Quantity: 2})
	assert.True(t, errors.Is(err, models.ErrDuplicate))

	// another user may hold the same ticker
	_, err = svc.Add(ctxFor("bob"), models.AddItemInput{Ticker: "MSFT", AvgPrice: 410, Quantity: 2})
	assert.NoError(t, err)
}

func TestUpdate_RecomputesDerivedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	item, err := svc.Add(ctx, models.AddItemInput{Ticker: "KO", AvgPrice: 100, Quantity: 5})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, models.UpdateItemInput{
		Quantity:     ptr(10),
		CurrentPrice: ptr(110.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.AvgPrice)
	assert.Equal(t, 1100.0, updated.CurrentValue)
	assert.Equal(t, 100.0, updated.ReturnAmount)
	assert.Equal(t, 10.0, updated.ReturnRate)
	assert.True(t, updated.UpdatedAt.After(item.UpdatedAt))
	assert.Equal(t, item.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, item.ID, models.UpdateItemInput{AvgPrice: ptr(0.0)})
	assert.True(t, errors.Is(err, models.ErrValidation))
	_, err = svc.Update(ctx, item.ID, models.UpdateItemInput{Quantity: ptr(-1)})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.Update(ctx, "missing", models.UpdateItemInput{Quantity: ptr(1)})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeleteAndContains(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	item, err := svc.Add(ctx, models.AddItemInput{Ticker: "JNJ", AvgPrice: 150, Quantity: 2})
	require.NoError(t, err)

	ok, err := svc.Contains(ctx, "jnj")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, item.ID))
	ok, _ = svc.Contains(ctx, "JNJ")
	assert.False(t, ok)

	assert.True(t, errors.Is(svc.Delete(ctx, item.ID), models.ErrNotFound))
	_, err = svc.Get(ctx, item.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestList_CreationOrderAndView(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	for _, tk := range []string{"XOM", "AAPL", "VOO"} {
		_, err := svc.Add(ctx, models.AddItemInput{Ticker: tk, AvgPrice: 100, Quantity: 1})
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "XOM", items[0].Ticker)
	assert.Equal(t, "AAPL", items[1].Ticker)
	assert.Equal(t, "VOO", items[2].Ticker)

	view, err := svc.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Totals.Count)
	assert.Equal(t, 300.0, view.Totals.TotalCost)
}

func TestAllocationChart(t *testing.T) {
	svc := newTestService(t)
	ctx := ctxFor("alice")

	_, err := svc.AllocationChart(ctx)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.Add(ctx, models.AddItemInput{Ticker: "AAPL", AvgPrice: 200, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.Add(ctx, models.AddItemInput{Ticker: "SPY", AvgPrice: 500, Quantity: 1})
	require.NoError(t, err)

	png, err := svc.AllocationChart(ctx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
