// Package store provides the record-store adapter used by the payment
// workflow and the dashboard.  The store is append-only from this
// system's point of view: records are created once per terminal outcome
// of a checkout attempt and never modified afterwards.
package store

import (
	"context"

	"github.com/lahray/ticket-payments/internal/model"
)

// PaymentStore is the thin adapter to the remote document store.  Create
// assigns and returns an opaque record ID.  List returns the full record
// set ordered by the server-assigned creation timestamp, newest first,
// with variant status spellings already normalized; callers never see a
// non-canonical status.
type PaymentStore interface {
	Create(ctx context.Context, rec *model.PaymentRecord) (string, error)
	List(ctx context.Context) ([]model.PaymentRecord, error)
}
