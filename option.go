package persist

import (
	"log/slog"

	"github.com/syssam/persist/config"
	"github.com/syssam/persist/event"
)

// Option configures a Persister.
type Option func(*Persister) error

// WithLogger sets the logger of the Persister and of its default storage.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Persister) error {
		if logger == nil {
			return config.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// WithStorage replaces the SQL storage used to write records.
func WithStorage(s Storage) Option {
	return func(p *Persister) error {
		if s == nil {
			return config.NewConfigError("Storage", nil, "storage cannot be nil")
		}
		p.storage = s
		return nil
	}
}

// WithEvents enables event flushing: after a cascade is written, the events
// queued on its records are drained and passed to d before the transaction
// commits. Without this option event queues are left untouched.
func WithEvents(d event.Dispatcher) Option {
	return func(p *Persister) error {
		if d == nil {
			return config.NewConfigError("Events", nil, "dispatcher cannot be nil")
		}
		p.events = d
		return nil
	}
}
