package convert

import (
	"log/slog"
	"sync"

	"bidsmeta/internal/logging"
)

type finding struct {
	property string
	value    string
	reason   string
}

// runWarner collects the data-quality findings of the file being converted.
// They are logged and counted on commit; a skipped file discards them.
type runWarner struct {
	mu      sync.Mutex
	logger  *slog.Logger
	pending []finding
	count   int
}

func newRunWarner(logger *slog.Logger) *runWarner {
	return &runWarner{logger: logger}
}

// begin starts a new file, logging its findings through logger.
func (w *runWarner) begin(logger *slog.Logger) {
	w.mu.Lock()
	w.logger = logger
	w.pending = w.pending[:0]
	w.mu.Unlock()
}

func (w *runWarner) Warn(property, value, reason string) {
	w.mu.Lock()
	w.pending = append(w.pending, finding{property: property, value: value, reason: reason})
	w.mu.Unlock()
}

// commit logs and counts the pending findings.
func (w *runWarner) commit() {
	w.mu.Lock()
	pending := append([]finding(nil), w.pending...)
	w.pending = w.pending[:0]
	w.count += len(pending)
	logger := w.logger
	w.mu.Unlock()

	for _, f := range pending {
		logging.WarnWithContext(logger, "metadata value discarded", "value_discarded",
			logging.String(logging.FieldProperty, f.property),
			logging.String("value", f.value),
			logging.String("reason", f.reason),
			logging.String(logging.FieldErrorHint, "correct the sidecar or add a vocabulary override"),
			logging.String(logging.FieldImpact, "field omitted from output"),
		)
	}
}

// discard drops the pending findings and returns how many there were.
func (w *runWarner) discard() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.pending)
	w.pending = w.pending[:0]
	return n
}

// Count returns the number of committed findings.
func (w *runWarner) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
