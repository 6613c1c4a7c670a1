// Package workflow orchestrates the payment-initiation and reconciliation
// flow: it opens a checkout session at the provider, awaits the session's
// single outcome, and persists the resulting payment record.  Payment
// completion and record persistence are not atomic; the workflow's job is
// to produce an audit trail around a provider that is the sole source of
// truth for whether money moved, and to surface the one failure mode that
// is a business emergency (paid but unrecorded) differently from the ones
// that are routine.
package workflow

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lahray/ticket-payments/internal/gateway"
	"github.com/lahray/ticket-payments/internal/model"
	"github.com/lahray/ticket-payments/internal/queue"
	"github.com/lahray/ticket-payments/internal/store"
	"github.com/lahray/ticket-payments/internal/utils"
)

// ErrGatewayUnavailable is returned by Initiate when the provider cannot
// be reached.  The attempt is aborted before any record exists.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// State tracks where a checkout attempt is in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateInitiating
	StateAwaitingExternalResult
	StateRecording
	StateRecorded
	StateRecordingFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitiating:
		return "initiating"
	case StateAwaitingExternalResult:
		return "awaiting_external_result"
	case StateRecording:
		return "recording"
	case StateRecorded:
		return "recorded"
	case StateRecordingFailed:
		return "recording_failed"
	default:
		return "unknown"
	}
}

// Buyer is the validated identity handed over by the checkout form.
type Buyer struct {
	Name  string
	Email string
}

// Notifier surfaces attempt outcomes to the buyer-facing layer.  The two
// methods deliberately carry different weight: PaymentSucceeded is a
// routine confirmation, RecordingFailed means money moved but the audit
// record could not be written and the buyer must be pointed at support
// with their reference.  A cancellation is never surfaced.
type Notifier interface {
	PaymentSucceeded(reference string)
	RecordingFailed(reference string)
}

// logNotifier is the default Notifier; it writes to the server log.
type logNotifier struct{}

func (logNotifier) PaymentSucceeded(ref string) {
	log.Printf("workflow: payment successful, tickets reserved | ref=%s", ref)
}
func (logNotifier) RecordingFailed(ref string) {
	log.Printf("workflow: payment succeeded but record-keeping failed, contact support with your reference | ref=%s", ref)
}

// Config carries the fixed checkout parameters injected at construction.
type Config struct {
	AmountMinor int64
	Currency    string
	RefPrefix   string
}

// Workflow drives checkout attempts from initiation to a recorded
// terminal outcome.
type Workflow struct {
	cfg      Config
	gw       gateway.Gateway
	store    store.PaymentStore
	notifier Notifier

	// Publish, when set, is called after every successfully persisted
	// record.  Publish failures are logged and otherwise ignored.
	Publish func(ctx context.Context, ev queue.PaymentRecordedEvent) error

	// processing is an advisory flag mirroring the form's submit lock: it
	// disables the submit control but does not prevent a concurrent
	// Initiate call.
	processing atomic.Bool
}

// New returns a Workflow using the given gateway and store.  notifier may
// be nil, in which case outcomes go to the server log.
func New(cfg Config, gw gateway.Gateway, st store.PaymentStore, notifier Notifier) *Workflow {
	if notifier == nil {
		notifier = logNotifier{}
	}
	return &Workflow{cfg: cfg, gw: gw, store: st, notifier: notifier}
}

// Processing reports whether a checkout attempt is currently in flight.
func (w *Workflow) Processing() bool { return w.processing.Load() }

// Attempt is one user-initiated invocation of the workflow, identified by
// its generated transaction reference.  Done is closed once the attempt
// reaches a terminal state.
type Attempt struct {
	Reference   string
	CheckoutURL string

	state atomic.Int32
	done  chan struct{}
	once  sync.Once
}

// State returns the attempt's current lifecycle state.
func (a *Attempt) State() State { return State(a.state.Load()) }

// Done is closed when the attempt has reached a terminal state.
func (a *Attempt) Done() <-chan struct{} { return a.done }

func (a *Attempt) setState(s State) { a.state.Store(int32(s)) }

func (a *Attempt) finish(s State) {
	a.setState(s)
	a.once.Do(func() { close(a.done) })
}

// Initiate opens a checkout session for the buyer.  It generates a fresh
// transaction reference, invokes the provider, and returns without
// waiting for the payment: the outcome is handled asynchronously when the
// provider's session resolves.  If the provider is unavailable the
// attempt aborts immediately with ErrGatewayUnavailable, the processing
// flag is cleared, and no record is created.  Initiate itself never
// touches the record store.
func (w *Workflow) Initiate(ctx context.Context, buyer Buyer) (*Attempt, error) {
	w.processing.Store(true)

	attempt := &Attempt{
		Reference: utils.NewTransactionRef(w.cfg.RefPrefix),
		done:      make(chan struct{}),
	}
	attempt.setState(StateInitiating)

	session, err := w.gw.Initialize(ctx, gateway.InitRequest{
		AmountMinor:   w.cfg.AmountMinor,
		Currency:      w.cfg.Currency,
		Reference:     attempt.Reference,
		CustomerName:  buyer.Name,
		CustomerEmail: buyer.Email,
	})
	if err != nil {
		w.processing.Store(false)
		attempt.finish(StateIdle)
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, ErrGatewayUnavailable
		}
		return nil, err
	}

	attempt.CheckoutURL = session.CheckoutURL
	attempt.setState(StateAwaitingExternalResult)
	go w.await(session, buyer, attempt)
	return attempt, nil
}

// await blocks on the session's single outcome and dispatches to the
// completion or dismissal path.  The provider guarantees the two are
// mutually exclusive and fire at most once per attempt.  A notification
// that never arrives parks this goroutine, and the session's registry
// entry, for the life of the process: one goroutine and one map entry per
// abandoned checkout, gone on restart.
func (w *Workflow) await(session *gateway.Session, buyer Buyer, attempt *Attempt) {
	defer w.processing.Store(false)
	outcome := <-session.Outcome()
	if outcome.Completed {
		w.onComplete(buyer, attempt)
		return
	}
	w.onClose(buyer, attempt, outcome)
}

// onComplete persists the success record for a confirmed payment.  A
// persist failure here is the fatal-but-recoverable-by-human case: the
// buyer must never be told the payment failed when it did not, so a
// distinct notification points them at support.  Nothing is retried.  A
// duplicate reference means the outcome was already recorded, e.g. the
// provider fired its completion callback twice; that is logged and
// treated as recorded.
func (w *Workflow) onComplete(buyer Buyer, attempt *Attempt) {
	attempt.setState(StateRecording)
	rec := w.buildRecord(buyer, attempt.Reference, model.StatusSuccess)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id, err := w.store.Create(ctx, rec)
	switch {
	case err == nil:
		attempt.finish(StateRecorded)
		w.notifier.PaymentSucceeded(attempt.Reference)
		w.publishRecorded(ctx, id, rec)
	case errors.Is(err, store.ErrDuplicateRef):
		log.Printf("workflow: outcome already recorded | ref=%s", attempt.Reference)
		attempt.finish(StateRecorded)
	default:
		log.Printf("workflow: persist success record failed | ref=%s err=%v", attempt.Reference, err)
		attempt.finish(StateRecordingFailed)
		w.notifier.RecordingFailed(attempt.Reference)
	}
}

// onClose handles a dismissal.  When the provider assigned a transaction
// reference the attempt was registered upstream, so a cancelled record is
// written best-effort: errors are logged, never surfaced to the buyer.
// Without a provider reference the attempt never started and no record is
// written.
func (w *Workflow) onClose(buyer Buyer, attempt *Attempt, outcome gateway.Outcome) {
	if outcome.ProviderRef == "" {
		attempt.finish(StateIdle)
		return
	}
	attempt.setState(StateRecording)
	rec := w.buildRecord(buyer, attempt.Reference, model.StatusCancelled)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id, err := w.store.Create(ctx, rec)
	switch {
	case err == nil:
		attempt.finish(StateRecorded)
		w.publishRecorded(ctx, id, rec)
	case errors.Is(err, store.ErrDuplicateRef):
		attempt.finish(StateRecorded)
	default:
		log.Printf("workflow: persist cancelled record failed | ref=%s err=%v", attempt.Reference, err)
		attempt.finish(StateRecordingFailed)
	}
}

func (w *Workflow) buildRecord(buyer Buyer, reference string, status model.Status) *model.PaymentRecord {
	name := buyer.Name
	if name == "" {
		name = model.PlaceholderName
	}
	return &model.PaymentRecord{
		Name:           name,
		Email:          buyer.Email,
		TransactionRef: reference,
		AmountMinor:    w.cfg.AmountMinor,
		Currency:       w.cfg.Currency,
		Status:         status,
		Date:           time.Now().UTC(),
	}
}

func (w *Workflow) publishRecorded(ctx context.Context, id string, rec *model.PaymentRecord) {
	if w.Publish == nil {
		return
	}
	ev := queue.PaymentRecordedEvent{
		RecordID:       id,
		TransactionRef: rec.TransactionRef,
		Name:           rec.Name,
		Email:          rec.Email,
		AmountMinor:    rec.AmountMinor,
		Currency:       rec.Currency,
		Status:         string(rec.Status),
		RecordedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.Publish(ctx, ev); err != nil {
		log.Printf("workflow: publish recorded event failed | ref=%s err=%v", rec.TransactionRef, err)
	}
}
