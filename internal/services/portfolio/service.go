// Package portfolio provides the per-user holdings ledger
package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/interfaces"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

const subject = "portfolio"

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	catalog interfaces.Catalog
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, catalog interfaces.Catalog, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Add creates a holding for a catalog ticker. Tickers are unique per user.
func (s *Service) Add(ctx context.Context, input models.AddItemInput) (*models.PortfolioItem, error) {
	ticker := models.NormalizeTicker(input.Ticker)
	if ticker == "" {
		return nil, models.Validationf("ticker is required")
	}
	if input.AvgPrice <= 0 {
		return nil, models.Validationf("average price must be positive, got %v", input.AvgPrice)
	}
	if input.Quantity <= 0 {
		return nil, models.Validationf("quantity must be positive, got %d", input.Quantity)
	}

	inst, ok := s.catalog.Lookup(ticker)
	if !ok {
		return nil, models.Validationf("unknown ticker %s", ticker)
	}

	exists, err := s.Contains(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("holding %s: %w", ticker, models.ErrDuplicate)
	}

	now := s.now()
	item := models.PortfolioItem{
		ID:        uuid.New().String(),
		Ticker:    ticker,
		AvgPrice:  input.AvgPrice,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	classify(&item, inst)
	if item.CurrentPrice <= 0 {
		item.CurrentPrice = item.AvgPrice
	}

	if err := s.put(ctx, &item); err != nil {
		return nil, err
	}
	s.logger.Info().Str("ticker", ticker).Str("id", item.ID).Int("quantity", item.Quantity).Msg("Holding added")

	derived := Derive(item)
	return &derived, nil
}

// classify copies catalog attributes onto a holding.
func classify(item *models.PortfolioItem, inst models.Instrument) {
	switch inst.Kind {
	case models.KindETF:
		e := inst.ETF
		item.Name = e.Name
		item.IsETF = true
		item.Classification = e.Theme
		item.DividendYield = e.DividendYield
		item.HasDividend = e.DividendYield > 0
		item.CurrentPrice = e.Price
	default:
		st := inst.Stock
		item.Name = st.Name
		item.Classification = st.Sector
		item.DividendYield = st.DividendYield
		item.HasDividend = st.DividendYield > 0.5
		item.CurrentPrice = st.Price
	}
}

// Update merges the submitted fields into a holding
func (s *Service) Update(ctx context.Context, id string, input models.UpdateItemInput) (*models.PortfolioItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.AvgPrice != nil {
		if *input.AvgPrice <= 0 {
			return nil, models.Validationf("average price must be positive, got %v", *input.AvgPrice)
		}
		item.AvgPrice = *input.AvgPrice
	}
	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, models.Validationf("quantity must be positive, got %d", *input.Quantity)
		}
		item.Quantity = *input.Quantity
	}
	if input.CurrentPrice != nil {
		if *input.CurrentPrice <= 0 {
			return nil, models.Validationf("current price must be positive, got %v", *input.CurrentPrice)
		}
		item.CurrentPrice = *input.CurrentPrice
	}
	item.UpdatedAt = s.now()

	if err := s.put(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Str("ticker", item.Ticker).Str("id", id).Msg("Holding updated")

	derived := Derive(*item)
	return &derived, nil
}

// Delete removes a holding
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	userID := common.ResolveUserID(ctx)
	if err := s.storage.UserDataStore().Delete(ctx, userID, subject, id); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	s.logger.Info().Str("id", id).Msg("Holding deleted")
	return nil
}

// Get returns one holding with derived valuation
func (s *Service) Get(ctx context.Context, id string) (*models.PortfolioItem, error) {
	item, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	derived := Derive(*item)
	return &derived, nil
}

// List returns the caller's holdings in creation order
func (s *Service) List(ctx context.Context) ([]models.PortfolioItem, error) {
	userID := common.ResolveUserID(ctx)
	recs, err := s.storage.UserDataStore().List(ctx, userID, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	items := make([]models.PortfolioItem, 0, len(recs))
	for _, rec := range recs {
		var item models.PortfolioItem
		if err := json.Unmarshal([]byte(rec.Value), &item); err != nil {
			s.logger.Warn().Err(err).Str("key", rec.Key).Msg("Skipping unreadable holding")
			continue
		}
		items = append(items, Derive(item))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// View returns the holdings with their totals
func (s *Service) View(ctx context.Context) (*models.PortfolioView, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return &models.PortfolioView{Items: items, Totals: Totals(items)}, nil
}

// Contains reports whether the caller already holds ticker, case-insensitively
func (s *Service) Contains(ctx context.Context, ticker string) (bool, error) {
	want := models.NormalizeTicker(ticker)
	items, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if models.NormalizeTicker(it.Ticker) == want {
			return true, nil
		}
	}
	return false, nil
}

// AllocationChart renders the holdings as a pie chart PNG by current value
func (s *Service) AllocationChart(ctx context.Context) ([]byte, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return RenderAllocationChart(items)
}

func (s *Service) load(ctx context.Context, id string) (*models.PortfolioItem, error) {
	userID := common.ResolveUserID(ctx)
	rec, err := s.storage.UserDataStore().Get(ctx, userID, subject, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("holding %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	var item models.PortfolioItem
	if err := json.Unmarshal([]byte(rec.Value), &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holding: %w", err)
	}
	return &item, nil
}

func (s *Service) put(ctx context.Context, item *models.PortfolioItem) error {
	// derived fields are recomputed on read
	stored := *item
	stored.CurrentValue, stored.ReturnAmount, stored.ReturnRate = 0, 0, 0

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal holding: %w", err)
	}
	if err := s.storage.UserDataStore().Put(ctx, &models.UserRecord{
		UserID:   common.ResolveUserID(ctx),
		Subject:  subject,
		Key:      item.ID,
		Value:    string(data),
		DateTime: item.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}
