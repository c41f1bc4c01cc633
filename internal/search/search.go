// Package search drives the transform and scoring steps over the parameter
// space: a single matrix configuration for interactive inspection, or every
// combination of matrix shape, read mode, scenario and rotation for a ranked
// sweep.
package search

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/RowanDark/xorsift/internal/logging"
)

// ErrEmptyInput is returned by the command line and API layers when either
// the ciphertext or the key text is blank.
var ErrEmptyInput = errors.New("both ciphertext and key are required")

// Options carries the collaborators of a run. The zero value is usable.
type Options struct {
	// Workers bounds parallel evaluation in exhaustive runs. Values below one
	// mean one worker.
	Workers int
	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger
	// Audit receives run journal events. Nil disables the journal.
	Audit *logging.AuditLogger
	// RunID identifies the run in logs, the journal and reports. Empty
	// generates a random UUID.
	RunID string
}

func (o Options) normalize() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	o.Logger = logging.OrDiscard(o.Logger)
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	o.Logger = o.Logger.With("run_id", o.RunID)
	o.Audit = o.Audit.WithComponent("search").WithRun(o.RunID)
	return o
}

// journal writes event to the run journal. Write failures do not fail the
// run; they are logged at Warn.
func (o Options) journal(event logging.AuditEvent) {
	if err := o.Audit.Emit(event); err != nil {
		logging.OrDiscard(o.Logger).Warn("run journal write failed",
			"event_type", string(event.EventType),
			"error", err,
		)
	}
}
