package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/lahray/ticket-payments/internal/model"
)

// MySQLStore persists payment records in a MySQL table.  The table
// carries a unique index on transaction_ref which backs the duplicate
// guard, and an auto-increment id whose string form becomes the opaque
// record ID.  All timestamps are stored in UTC.
type MySQLStore struct {
	DB    *sql.DB
	Table string
}

// NewMySQLStore returns a MySQLStore writing to the given table.  An
// empty table name defaults to "payments".
func NewMySQLStore(db *sql.DB, table string) *MySQLStore {
	if table == "" {
		table = "payments"
	}
	return &MySQLStore{DB: db, Table: table}
}

// Create inserts a record and returns the assigned ID.  A duplicate
// transaction reference maps to ErrDuplicateRef; any other failure maps
// to ErrStoreWrite with the cause wrapped for logging.
func (s *MySQLStore) Create(ctx context.Context, rec *model.PaymentRecord) (string, error) {
	q := fmt.Sprintf(
		"INSERT INTO %s (name, email, transaction_ref, amount_minor, currency, status, date) VALUES (?,?,?,?,?,?,?)",
		s.Table)
	res, err := s.DB.ExecContext(ctx, q,
		rec.Name, rec.Email, rec.TransactionRef, rec.AmountMinor, rec.Currency, string(rec.Status), rec.Date.UTC())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrDuplicateRef
		}
		return "", fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	rec.ID = strconv.FormatInt(id, 10)
	// Read back the server-assigned created_at so the caller holds the
	// same ordering timestamp the dashboard will later sort by.
	sel := fmt.Sprintf("SELECT created_at FROM %s WHERE id = ?", s.Table)
	if err := s.DB.QueryRowContext(ctx, sel, id).Scan(&rec.CreatedAt); err != nil {
		log.Printf("store: read back created_at failed: %v", err)
	}
	return rec.ID, nil
}

// List returns every record ordered by created_at descending (newest
// first), with id as a tie-breaker for records written within the same
// clock tick.  Stored status strings are normalized here; variant
// spellings never leak past this boundary.
func (s *MySQLStore) List(ctx context.Context) ([]model.PaymentRecord, error) {
	q := fmt.Sprintf(
		"SELECT id, name, email, transaction_ref, amount_minor, currency, status, date, created_at FROM %s ORDER BY created_at DESC, id DESC",
		s.Table)
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	defer rows.Close()
	records := make([]model.PaymentRecord, 0)
	for rows.Next() {
		var rec model.PaymentRecord
		var id int64
		var rawStatus string
		if err := rows.Scan(&id, &rec.Name, &rec.Email, &rec.TransactionRef,
			&rec.AmountMinor, &rec.Currency, &rawStatus, &rec.Date, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.Status = model.NormalizeStatus(rawStatus)
		if rec.Name == "" {
			rec.Name = model.PlaceholderName
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	return records, nil
}
