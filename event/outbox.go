package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql"
)

// DefaultOutboxTable is the table used by an Outbox without a table name.
const DefaultOutboxTable = "persist_outbox"

// Outbox is a Dispatcher writing events as rows of an outbox table in the
// cascade transaction, so events are stored if and only if the cascade
// commits. Payloads are encoded with msgpack.
//
// The table needs the columns:
//
//	id         VARCHAR(36) PRIMARY KEY
//	name       VARCHAR(255) NOT NULL
//	payload    BLOB NOT NULL
//	created_at TIMESTAMP NOT NULL
type Outbox struct {
	dialect string
	table   string
	now     func() time.Time
}

// OutboxOption configures an Outbox.
type OutboxOption func(*Outbox)

// WithClock sets the clock used for created_at.
func WithClock(now func() time.Time) OutboxOption {
	return func(o *Outbox) { o.now = now }
}

// NewOutbox returns an Outbox writing to table with statements of the
// given dialect.
func NewOutbox(dialect, table string, opts ...OutboxOption) *Outbox {
	if table == "" {
		table = DefaultOutboxTable
	}
	o := &Outbox{dialect: dialect, table: table, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Table returns the outbox table name.
func (o *Outbox) Table() string { return o.table }

// Dispatch implements Dispatcher.
func (o *Outbox) Dispatch(ctx context.Context, ex dialect.ExecQuerier, ev any) error {
	payload, err := Encode(ev)
	if err != nil {
		return err
	}
	query, args := sql.Dialect(o.dialect).
		Insert(o.table).
		Columns("id", "name", "payload", "created_at").
		Values(uuid.NewString(), Name(ev), payload, o.now().UTC()).
		Query()
	if err := ex.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("event: write outbox: %w", err)
	}
	return nil
}

// Encode returns the msgpack encoding of an event payload.
func Encode(ev any) ([]byte, error) {
	b, err := msgpack.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("event: encode %s: %w", Name(ev), err)
	}
	return b, nil
}

// Decode decodes an outbox payload into v.
func Decode(payload []byte, v any) error {
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("event: decode payload: %w", err)
	}
	return nil
}

var _ Dispatcher = (*Outbox)(nil)
