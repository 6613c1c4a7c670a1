package model

import (
	"strings"
	"time"
)

// Status is the canonical state of a payment record.  Historical data
// contains variant spellings for the success state; those are mapped to
// the canonical value at the store-read boundary by NormalizeStatus and
// must never appear elsewhere in the system.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// PlaceholderName is substituted when a record is written without a buyer
// name, e.g. a cancellation reported by the provider before the form data
// reached us.
const PlaceholderName = "Guest Customer"

// NormalizeStatus maps a stored status string, including the variant
// success spellings that accumulated over the system's lifetime
// ("completed", "successfull"), onto the canonical Status enum.  Unknown
// values fall back to pending so that a malformed record still shows up
// on the dashboard instead of disappearing.
func NormalizeStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "completed", "successfull":
		return StatusSuccess
	case "cancelled", "canceled":
		return StatusCancelled
	case "failed":
		return StatusFailed
	case "pending", "":
		return StatusPending
	default:
		return StatusPending
	}
}

// IsTerminal reports whether no further transition can occur for a record
// in this status.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusCancelled || s == StatusFailed
}

// PaymentRecord is the single persisted entity: one terminal outcome of
// one checkout attempt.  Records are append-only; they are never updated
// or deleted after creation.
//
// Fields:
//  ID             – opaque identifier assigned by the store on create.
//  Name           – buyer name; PlaceholderName when absent.
//  Email          – buyer email, validated at the form boundary.
//  TransactionRef – unique per checkout attempt, client-generated.
//  AmountMinor    – ticket price in minor currency units.
//  Currency       – ISO currency code (fixed per deployment).
//  Status         – canonical status enum.
//  Date           – client-set creation time.
//  CreatedAt      – server-assigned timestamp; the dashboard's total
//                   ordering uses this field to avoid clock-skew anomalies.
type PaymentRecord struct {
	ID             string    `json:"id" dynamodbav:"id"`
	Name           string    `json:"name" dynamodbav:"name"`
	Email          string    `json:"email" dynamodbav:"email"`
	TransactionRef string    `json:"transaction_ref" dynamodbav:"transaction_ref"`
	AmountMinor    int64     `json:"amount_minor" dynamodbav:"amount_minor"`
	Currency       string    `json:"currency" dynamodbav:"currency"`
	Status         Status    `json:"status" dynamodbav:"status"`
	Date           time.Time `json:"date" dynamodbav:"date"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}
