// Package gateway integrates the hosted payment provider.  The provider
// owns the actual payment UI and is the sole source of truth for whether
// money moved; this system only initiates a checkout session and later
// learns the outcome through the provider's notification callback.
package gateway

import (
	"context"
	"errors"
	"sync"
)

// ErrUnavailable is returned when the provider cannot be reached or the
// client is not configured.  The workflow aborts the attempt before any
// record is created.
var ErrUnavailable = errors.New("payment gateway unavailable")

// InitRequest carries everything the provider needs to open a checkout
// session for one attempt.
type InitRequest struct {
	AmountMinor   int64
	Currency      string
	Reference     string
	CustomerName  string
	CustomerEmail string
}

// Outcome is the single result of a checkout session.  Completed is true
// when the provider confirmed the payment.  ProviderRef carries the
// provider-side transaction reference; on a dismissal it is empty when
// the provider never registered an attempt upstream.
type Outcome struct {
	Completed   bool
	ProviderRef string
}

// Session represents one in-flight checkout attempt at the provider.  Its
// outcome channel is resolved exactly once, by whichever of Complete or
// Close arrives first; later calls are ignored.  This is the explicit
// form of the provider's onComplete/onClose callback contract.
type Session struct {
	Reference   string
	CheckoutURL string

	once sync.Once
	ch   chan Outcome
}

// NewSession returns a session for the given attempt reference.
func NewSession(reference, checkoutURL string) *Session {
	return &Session{Reference: reference, CheckoutURL: checkoutURL, ch: make(chan Outcome, 1)}
}

// Outcome returns the channel on which the session's single result is
// delivered.
func (s *Session) Outcome() <-chan Outcome { return s.ch }

// Complete resolves the session as a confirmed payment.
func (s *Session) Complete(providerRef string) {
	s.once.Do(func() { s.ch <- Outcome{Completed: true, ProviderRef: providerRef} })
}

// Close resolves the session as dismissed without completion.  providerRef
// is empty when the provider never assigned a transaction reference.
func (s *Session) Close(providerRef string) {
	s.once.Do(func() { s.ch <- Outcome{Completed: false, ProviderRef: providerRef} })
}

// Gateway opens checkout sessions at the payment provider.  Initialize
// must not block on the payment itself: it returns once the session is
// registered and the result arrives later on the session's outcome
// channel.
type Gateway interface {
	Initialize(ctx context.Context, req InitRequest) (*Session, error)
}
