package models

import "time"

// Quota defaults applied when a record is created lazily.
const (
	DefaultQuotaLimit = 5
	QuotaPeriodLayout = "2006-01"
)

// QuotaRecord is the persisted per-user usage counter. Usage belongs to
// Period; a record whose Period is behind the current one reads as zero.
type QuotaRecord struct {
	UserID         string    `json:"user_id"`
	Enabled        bool      `json:"enabled"`
	Limit          int       `json:"limit"`
	UsageThisMonth int       `json:"usage_this_month"`
	Period         string    `json:"period"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CanUse reports whether another AI call is allowed.
func (q *QuotaRecord) CanUse() bool {
	return !q.Enabled || q.UsageThisMonth < q.Limit
}

// ForPeriod returns a copy with usage zeroed when the record belongs to an
// older period.
func (q QuotaRecord) ForPeriod(period string) QuotaRecord {
	if q.Period != period {
		q.UsageThisMonth = 0
		q.Period = period
	}
	return q
}

// QuotaPeriod formats t as the quota period in loc.
func QuotaPeriod(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(QuotaPeriodLayout)
}

// QuotaStatus is the caller-facing view of a quota record.
type QuotaStatus struct {
	UserID    string `json:"user_id"`
	Enabled   bool   `json:"enabled"`
	Limit     int    `json:"limit"`
	Usage     int    `json:"usage"`
	Remaining int    `json:"remaining"`
	CanUse    bool   `json:"can_use"`
	Period    string `json:"period"`
}

// Status converts the record for display.
func (q *QuotaRecord) Status() QuotaStatus {
	remaining := q.Limit - q.UsageThisMonth
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{
		UserID:    q.UserID,
		Enabled:   q.Enabled,
		Limit:     q.Limit,
		Usage:     q.UsageThisMonth,
		Remaining: remaining,
		CanUse:    q.CanUse(),
		Period:    q.Period,
	}
}
