package queue

// PaymentRecordedEvent is published after a payment record has been
// persisted.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the record store.
type PaymentRecordedEvent struct {
	RecordID       string `json:"record_id"`
	TransactionRef string `json:"transaction_ref"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	RecordedAt     string `json:"recorded_at"`
}
