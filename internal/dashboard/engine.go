// Package dashboard computes the derived statistics and filter/search
// views shown on the payment-records dashboard.  The engine loads the
// full record list once per request and does the rest in memory; the
// data set is a single event's ticket sales.
package dashboard

import (
	"context"
	"strings"

	"github.com/lahray/ticket-payments/internal/model"
	"github.com/lahray/ticket-payments/internal/store"
)

// Stats are the aggregate counters shown in the dashboard cards.
// Completed counts records whose status normalizes to success.  Failed
// counts both failed and cancelled, the terminal not-paid states.
// TotalRevenue sums minor-unit amounts over completed records only.
type Stats struct {
	Total        int   `json:"total"`
	Completed    int   `json:"completed"`
	Pending      int   `json:"pending"`
	Failed       int   `json:"failed"`
	TotalRevenue int64 `json:"total_revenue"`
}

// Engine answers dashboard queries against the record store.
type Engine struct {
	Store store.PaymentStore
}

func NewEngine(s store.PaymentStore) *Engine { return &Engine{Store: s} }

// Load fetches all payment records, newest first.  Ordering comes from
// the store's server-assigned timestamp, not the client-set date, so
// clock skew between buyers cannot reorder the list.
func (e *Engine) Load(ctx context.Context) ([]model.PaymentRecord, error) {
	return e.Store.List(ctx)
}

// Aggregate computes the stat-card counters over a record list.  Statuses
// arriving here are already canonical; normalization happens at the
// store-read boundary.
func Aggregate(records []model.PaymentRecord) Stats {
	var s Stats
	s.Total = len(records)
	for _, rec := range records {
		switch rec.Status {
		case model.StatusSuccess:
			s.Completed++
			s.TotalRevenue += rec.AmountMinor
		case model.StatusPending:
			s.Pending++
		case model.StatusFailed, model.StatusCancelled:
			s.Failed++
		}
	}
	return s
}

// Filter returns the records matching both predicates, order preserved
// from the input.  statusFilter "all" or "" matches every status; variant
// spellings are accepted and normalized before comparison.  The search
// term matches case-insensitively on partial substrings of name, email,
// or transaction reference; an empty term matches everything.
func Filter(records []model.PaymentRecord, statusFilter, searchTerm string) []model.PaymentRecord {
	wantAll := statusFilter == "" || strings.EqualFold(statusFilter, "all")
	var wantStatus model.Status
	if !wantAll {
		wantStatus = model.NormalizeStatus(statusFilter)
	}
	needle := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]model.PaymentRecord, 0, len(records))
	for _, rec := range records {
		if !wantAll && rec.Status != wantStatus {
			continue
		}
		if needle != "" && !matchesSearch(rec, needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch(rec model.PaymentRecord, needle string) bool {
	return strings.Contains(strings.ToLower(rec.Name), needle) ||
		strings.Contains(strings.ToLower(rec.Email), needle) ||
		strings.Contains(strings.ToLower(rec.TransactionRef), needle)
}
