// This file defines sentinel errors shared by every store backend.  The
// workflow keys its severity decisions off these values: a write failure
// after a completed payment is surfaced to the buyer, a write failure on
// a cancellation is only logged, and a duplicate reference means the
// outcome was already recorded and must not raise the record-keeping
// alarm a second time.
package store

import "errors"

// ErrStoreWrite is returned when a record could not be persisted due to a
// network or store fault.  The caller decides how severe that is.
var ErrStoreWrite = errors.New("store write failed")

// ErrStoreRead is returned when the record list could not be loaded.
var ErrStoreRead = errors.New("store read failed")

// ErrDuplicateRef is returned when a record with the same transaction
// reference already exists.  Uniqueness is enforced at the store layer so
// that a misbehaving provider firing the completion callback twice cannot
// produce two records for one attempt.
var ErrDuplicateRef = errors.New("duplicate transaction reference")
