package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/persist/config"
	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/event"
	"github.com/syssam/persist/model"
)

// Persister cascades saves over graphs of records. It is safe for
// concurrent use, provided concurrent calls do not share records.
type Persister struct {
	drv     dialect.Driver
	storage Storage
	events  event.Dispatcher
	logger  *slog.Logger
}

// New returns a Persister writing through drv.
func New(drv dialect.Driver, opts ...Option) (*Persister, error) {
	if drv == nil {
		return nil, config.NewConfigError("Driver", nil, "driver cannot be nil")
	}
	p := &Persister{drv: drv, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.storage == nil {
		p.storage = NewSQLStorage(drv.Dialect(), p.logger)
	}
	return p, nil
}

// Open opens the database described by cfg and returns a Persister on it.
// An enabled outbox is added to the event dispatchers.
func Open(cfg *config.Config, opts ...Option) (*Persister, error) {
	logger := cfg.Logger(nil)
	drv, err := config.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithLogger(logger)}, opts...)
	p, err := New(drv, opts...)
	if err != nil {
		drv.Close()
		return nil, err
	}
	if cfg.Outbox.Enabled {
		outbox := event.NewOutbox(cfg.Dialect, cfg.Outbox.Table)
		if p.events != nil {
			p.events = event.Multi{p.events, outbox}
		} else {
			p.events = outbox
		}
	}
	return p, nil
}

// Driver returns the driver of the Persister.
func (p *Persister) Driver() dialect.Driver {
	return p.drv
}

// Close closes the underlying driver.
func (p *Persister) Close() error {
	return p.drv.Close()
}

// Persist saves rec together with every record attached to it, in one
// transaction.
//
// Required relationships of every record in the graph are verified first; a
// violation is returned as a *MissingRequiredRelationshipError and nothing
// is written. Records referenced by owned relations are saved before the
// record that holds their key, and dependent records after it, with the
// parent key copied into their foreign key.
//
// Persist returns false, with a nil error, when a save was vetoed. In both
// the false and the error case every write of the call is rolled back, and
// the records get back the key and stored flag they had before the call,
// so the graph can be fixed and persisted again.
//
// If ctx carries a transaction (see NewTxContext), the cascade joins it
// inside a savepoint instead of opening a new transaction.
func (p *Persister) Persist(ctx context.Context, rec model.Persistable) (bool, error) {
	if err := verifyGraph(rec); err != nil {
		return false, err
	}
	if tx, ok := TxFromContext(ctx); ok {
		return p.persistSavepoint(ctx, tx, rec)
	}
	tx, err := p.drv.Tx(ctx)
	if err != nil {
		return false, fmt.Errorf("persist: starting a transaction: %w", err)
	}
	ctx = NewTxContext(ctx, tx)
	c := newCascade(p.storage, tx)
	ok, err := p.run(ctx, c, rec)
	if err != nil || !ok {
		c.restore()
		err = rollback(err, tx.Rollback)
		if IsRollbackError(err) {
			p.logger.ErrorContext(ctx, "rollback failed", "type", rec.TypeName(), "error", err)
		}
		return false, err
	}
	if err := tx.Commit(); err != nil {
		c.restore()
		return false, fmt.Errorf("persist: committing transaction: %w", err)
	}
	if p.events != nil {
		c.clearEvents()
	}
	return true, nil
}

// persistSavepoint runs the cascade inside a savepoint of the ambient
// transaction, so a false result undoes only the writes of this call.
func (p *Persister) persistSavepoint(ctx context.Context, tx dialect.Tx, rec model.Persistable) (bool, error) {
	ctx, name := nextSavepoint(ctx)
	if err := tx.Exec(ctx, "SAVEPOINT "+name, []any{}, nil); err != nil {
		return false, fmt.Errorf("persist: creating savepoint: %w", err)
	}
	c := newCascade(p.storage, tx)
	ok, err := p.run(ctx, c, rec)
	if err != nil || !ok {
		c.restore()
		return false, rollback(err, func() error {
			return tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name, []any{}, nil)
		})
	}
	if err := tx.Exec(ctx, "RELEASE SAVEPOINT "+name, []any{}, nil); err != nil {
		c.restore()
		return false, fmt.Errorf("persist: releasing savepoint: %w", err)
	}
	if p.events != nil {
		c.clearEvents()
	}
	return true, nil
}

// run executes the cascade and dispatches the events queued on the saved
// records. Queues are left intact; they are cleared by the caller once the
// writes are durable.
func (p *Persister) run(ctx context.Context, c *cascade, rec model.Persistable) (bool, error) {
	ok, err := c.persist(ctx, rec)
	if err != nil || !ok {
		return false, err
	}
	if p.events == nil {
		return true, nil
	}
	for _, s := range c.saved {
		for _, queued := range s.rec.Events() {
			ev := model.ResolveEvent(s.rec, queued)
			if err := p.events.Dispatch(ctx, c.ex, ev); err != nil {
				return false, fmt.Errorf("persist: dispatching %s event: %w", event.Name(ev), err)
			}
		}
	}
	return true, nil
}
