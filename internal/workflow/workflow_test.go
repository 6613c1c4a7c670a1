package workflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lahray/ticket-payments/internal/gateway"
	"github.com/lahray/ticket-payments/internal/model"
	"github.com/lahray/ticket-payments/internal/queue"
	"github.com/lahray/ticket-payments/internal/store"
)

// fakeGateway hands back a session for every Initialize call, or a fixed
// error.  The test resolves the session to drive the workflow.
type fakeGateway struct {
	err     error
	session *gateway.Session
	lastReq gateway.InitRequest
}

func (f *fakeGateway) Initialize(ctx context.Context, req gateway.InitRequest) (*gateway.Session, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	f.session = gateway.NewSession(req.Reference, "https://pay.example/checkout/"+req.Reference)
	return f.session, nil
}

// chanNotifier delivers notifications on channels so tests can wait for
// them without racing the workflow goroutine.
type chanNotifier struct {
	succeeded chan string
	failed    chan string
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{succeeded: make(chan string, 1), failed: make(chan string, 1)}
}

func (n *chanNotifier) PaymentSucceeded(ref string) { n.succeeded <- ref }
func (n *chanNotifier) RecordingFailed(ref string)  { n.failed <- ref }

// countingStore wraps a PaymentStore and counts Create calls.
type countingStore struct {
	inner   store.PaymentStore
	creates atomic.Int32
}

func (s *countingStore) Create(ctx context.Context, rec *model.PaymentRecord) (string, error) {
	s.creates.Add(1)
	return s.inner.Create(ctx, rec)
}

func (s *countingStore) List(ctx context.Context) ([]model.PaymentRecord, error) {
	return s.inner.List(ctx)
}

// errStore fails every Create with a fixed error.
type errStore struct {
	err     error
	creates atomic.Int32
}

func (s *errStore) Create(ctx context.Context, rec *model.PaymentRecord) (string, error) {
	s.creates.Add(1)
	return "", s.err
}

func (s *errStore) List(ctx context.Context) ([]model.PaymentRecord, error) { return nil, nil }

func testConfig() Config {
	return Config{AmountMinor: 2500000, Currency: "NGN", RefPrefix: "LW"}
}

func waitFor(t *testing.T, ch <-chan string, what string) string {
	t.Helper()
	select {
	case ref := <-ch:
		return ref
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return ""
	}
}

func waitDone(t *testing.T, a *Attempt) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for attempt to finish")
	}
}

func TestInitiate_GatewayUnavailable(t *testing.T) {
	gw := &fakeGateway{err: gateway.ErrUnavailable}
	st := store.NewMemoryStore()
	wf := New(testConfig(), gw, st, newChanNotifier())

	_, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if wf.Processing() {
		t.Error("expected processing flag cleared after abort")
	}
	records, _ := st.List(context.Background())
	if len(records) != 0 {
		t.Errorf("expected no records for an aborted attempt, got %d", len(records))
	}
}

func TestInitiate_NoRecordBeforeOutcome(t *testing.T) {
	gw := &fakeGateway{}
	st := &countingStore{inner: store.NewMemoryStore()}
	wf := New(testConfig(), gw, st, newChanNotifier())

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if got := st.creates.Load(); got != 0 {
		t.Errorf("expected zero store writes before the outcome, got %d", got)
	}
	if attempt.State() != StateAwaitingExternalResult {
		t.Errorf("expected awaiting_external_result, got %s", attempt.State())
	}
	if !wf.Processing() {
		t.Error("expected processing flag set while awaiting the outcome")
	}

	gw.session.Close("")
	waitDone(t, attempt)
}

func TestInitiate_CompleteWritesSuccessRecord(t *testing.T) {
	gw := &fakeGateway{}
	st := store.NewMemoryStore()
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if attempt.CheckoutURL == "" {
		t.Error("expected a checkout URL from the provider")
	}

	gw.session.Complete("MNFY|001")
	ref := waitFor(t, notifier.succeeded, "success notification")
	if ref != attempt.Reference {
		t.Errorf("notified reference %q, want %q", ref, attempt.Reference)
	}

	records, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	got := records[0]
	if got.Status != model.StatusSuccess {
		t.Errorf("status = %q, want success", got.Status)
	}
	if got.TransactionRef != attempt.Reference {
		t.Errorf("record ref %q, want %q", got.TransactionRef, attempt.Reference)
	}
	if got.Name != "Ada" || got.Email != "ada@example.com" {
		t.Errorf("buyer identity not carried: %q %q", got.Name, got.Email)
	}
	if got.AmountMinor != 2500000 || got.Currency != "NGN" {
		t.Errorf("amount/currency = %d %s, want 2500000 NGN", got.AmountMinor, got.Currency)
	}
	if attempt.State() != StateRecorded {
		t.Errorf("expected recorded state, got %s", attempt.State())
	}
}

func TestInitiate_CompletePublishesEvent(t *testing.T) {
	gw := &fakeGateway{}
	st := store.NewMemoryStore()
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	published := make(chan queue.PaymentRecordedEvent, 1)
	wf.Publish = func(ctx context.Context, ev queue.PaymentRecordedEvent) error {
		published <- ev
		return nil
	}

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Complete("MNFY|001")

	select {
	case ev := <-published:
		if ev.TransactionRef != attempt.Reference {
			t.Errorf("event ref %q, want %q", ev.TransactionRef, attempt.Reference)
		}
		if ev.Status != string(model.StatusSuccess) {
			t.Errorf("event status %q, want success", ev.Status)
		}
		if ev.RecordID == "" {
			t.Error("expected the store-assigned record id on the event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestInitiate_EmptyNameGetsPlaceholder(t *testing.T) {
	gw := &fakeGateway{}
	st := store.NewMemoryStore()
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	_, err := wf.Initiate(context.Background(), Buyer{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Complete("MNFY|002")
	waitFor(t, notifier.succeeded, "success notification")

	records, _ := st.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].Name != model.PlaceholderName {
		t.Errorf("expected %q for missing name, got %q", model.PlaceholderName, records[0].Name)
	}
}

func TestInitiate_PersistFailureNotifiesSupport(t *testing.T) {
	gw := &fakeGateway{}
	st := &errStore{err: store.ErrStoreWrite}
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Complete("MNFY|003")

	ref := waitFor(t, notifier.failed, "recording-failed notification")
	if ref != attempt.Reference {
		t.Errorf("notified reference %q, want %q", ref, attempt.Reference)
	}
	if attempt.State() != StateRecordingFailed {
		t.Errorf("expected recording_failed state, got %s", attempt.State())
	}
	if got := st.creates.Load(); got != 1 {
		t.Errorf("expected a single write attempt with no retries, got %d", got)
	}
	if len(notifier.succeeded) != 0 {
		t.Error("payment must not be reported as failed or succeeded on a persist error")
	}
}

func TestInitiate_DuplicateOutcomeTreatedAsRecorded(t *testing.T) {
	gw := &fakeGateway{}
	st := &errStore{err: store.ErrDuplicateRef}
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Complete("MNFY|004")
	waitDone(t, attempt)

	if attempt.State() != StateRecorded {
		t.Errorf("expected recorded state for a duplicate outcome, got %s", attempt.State())
	}
	if len(notifier.failed) != 0 {
		t.Error("a duplicate outcome is not a recording failure")
	}
}

func TestInitiate_CloseWithoutProviderRefWritesNothing(t *testing.T) {
	gw := &fakeGateway{}
	st := &countingStore{inner: store.NewMemoryStore()}
	wf := New(testConfig(), gw, st, newChanNotifier())

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Close("")
	waitDone(t, attempt)

	if attempt.State() != StateIdle {
		t.Errorf("expected idle state after an unstarted dismissal, got %s", attempt.State())
	}
	if got := st.creates.Load(); got != 0 {
		t.Errorf("expected no record for a dismissal without a provider reference, got %d writes", got)
	}
}

func TestInitiate_CloseWithProviderRefWritesCancelled(t *testing.T) {
	gw := &fakeGateway{}
	st := store.NewMemoryStore()
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Close("MNFY|005")
	waitDone(t, attempt)

	records, _ := st.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected one cancelled record, got %d", len(records))
	}
	if records[0].Status != model.StatusCancelled {
		t.Errorf("status = %q, want cancelled", records[0].Status)
	}
	if len(notifier.succeeded) != 0 || len(notifier.failed) != 0 {
		t.Error("a cancellation must not notify the buyer")
	}
}

func TestInitiate_CancelledPersistFailureStaysQuiet(t *testing.T) {
	gw := &fakeGateway{}
	st := &errStore{err: store.ErrStoreWrite}
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	attempt, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Close("MNFY|006")
	waitDone(t, attempt)

	if len(notifier.failed) != 0 {
		t.Error("a failed cancellation write must not page the buyer")
	}
}

func TestInitiate_SessionOutcomeFiresOnce(t *testing.T) {
	gw := &fakeGateway{}
	st := &countingStore{inner: store.NewMemoryStore()}
	notifier := newChanNotifier()
	wf := New(testConfig(), gw, st, notifier)

	_, err := wf.Initiate(context.Background(), Buyer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	gw.session.Complete("MNFY|007")
	gw.session.Close("MNFY|007")
	gw.session.Complete("MNFY|007")
	waitFor(t, notifier.succeeded, "success notification")

	if got := st.creates.Load(); got != 1 {
		t.Errorf("expected exactly one record for a repeatedly resolved session, got %d", got)
	}
	records, _ := st.inner.List(context.Background())
	if len(records) != 1 || records[0].Status != model.StatusSuccess {
		t.Errorf("expected the first resolution (success) to win, got %+v", records)
	}
}

func TestAttemptStateStrings(t *testing.T) {
	cases := map[State]string{
		StateIdle:                   "idle",
		StateInitiating:             "initiating",
		StateAwaitingExternalResult: "awaiting_external_result",
		StateRecording:              "recording",
		StateRecorded:               "recorded",
		StateRecordingFailed:        "recording_failed",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
