package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBound_BlankNeverExcludes(t *testing.T) {
	b := ParseBound("", "")
	assert.True(t, b.IsZero())
	assert.True(t, b.Contains(-50))
	assert.True(t, b.Contains(math.MaxFloat64))
}

func TestBound_MalformedIsUnbounded(t *testing.T) {
	b := ParseBound("abc", " 20 ")
	assert.Nil(t, b.Min)
	if assert.NotNil(t, b.Max) {
		assert.Equal(t, 20.0, *b.Max)
	}
	assert.True(t, b.Contains(-1))
	assert.False(t, b.Contains(20.01))
}

func TestBound_Inclusive(t *testing.T) {
	b := Between(10, 20)
	assert.True(t, b.Contains(10))
	assert.True(t, b.Contains(20))
	assert.True(t, b.Contains(12))
	assert.False(t, b.Contains(9.99))
	assert.False(t, AtLeast(15).Contains(12))
}

func TestStockCriteria_SectorExactMatch(t *testing.T) {
	c := StockCriteria{Sector: "Technology"}
	assert.True(t, c.Match(Stock{Sector: "Technology"}))
	assert.False(t, c.Match(Stock{Sector: "technology"}))
	assert.True(t, StockCriteria{}.Match(Stock{Sector: "Energy", PER: -3}))
}

func TestETFCriteria_ExcludeLeveraged(t *testing.T) {
	c := ETFCriteria{ExcludeLeveraged: true}
	assert.False(t, c.Match(ETF{IsLeveraged: true}))
	assert.True(t, c.Match(ETF{}))
}

func TestQuotaRecord_CanUse(t *testing.T) {
	q := QuotaRecord{Enabled: true, Limit: 5, UsageThisMonth: 5}
	assert.False(t, q.CanUse())
	q.UsageThisMonth = 4
	assert.True(t, q.CanUse())
	q = QuotaRecord{Enabled: false, Limit: 0, UsageThisMonth: 99}
	assert.True(t, q.CanUse())
}

func TestQuotaRecord_ForPeriod(t *testing.T) {
	q := QuotaRecord{Enabled: true, Limit: 5, UsageThisMonth: 5, Period: "2026-09"}
	fresh := q.ForPeriod("2026-10")
	assert.Equal(t, 0, fresh.UsageThisMonth)
	assert.True(t, fresh.CanUse())
	assert.Equal(t, 5, q.ForPeriod("2026-09").UsageThisMonth)
}

func TestQuotaPeriod_Location(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	// 2026-09-30 20:00 UTC is already October in Seoul
	ts := time.Date(2026, 9, 30, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10", QuotaPeriod(ts, seoul))
	assert.Equal(t, "2026-09", QuotaPeriod(ts, nil))
}

func TestQuotaExceededError_Is(t *testing.T) {
	var err error = &QuotaExceededError{Usage: 5, Limit: 5}
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Contains(t, err.Error(), "5/5")
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("ETFs")
	assert.True(t, ok)
	assert.Equal(t, KindETF, k)
	_, ok = ParseKind("bond")
	assert.False(t, ok)
}
