package web

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/lueurxax/perf-review-sync/internal/core/errors"
	"github.com/lueurxax/perf-review-sync/internal/process/automation"
	"github.com/lueurxax/perf-review-sync/internal/process/reportmatch"
)

const (
	maxLogLines      = 50
	subscriberBuffer = 32
)

// Snapshot is the immutable view of the latest run served by /api/status.
type Snapshot struct {
	RunID     string                       `json:"run_id,omitempty"`
	Report    string                       `json:"report_name,omitempty"`
	Running   bool                         `json:"running"`
	Stage     automation.Stage             `json:"stage,omitempty"`
	Status    automation.Status            `json:"status,omitempty"`
	Message   string                       `json:"message,omitempty"`
	Selection *reportmatch.SelectionResult `json:"selection,omitempty"`
	Error     string                       `json:"error,omitempty"`
	Log       []string                     `json:"log"`
	StartedAt time.Time                    `json:"started_at,omitzero"`
	UpdatedAt time.Time                    `json:"updated_at,omitzero"`
}

// Tracker folds run events into snapshots. Writers build a new Snapshot and
// swap the pointer; readers never lock.
type Tracker struct {
	current atomic.Pointer[Snapshot]
	broker  *Broker
}

func NewTracker(broker *Broker) *Tracker {
	t := &Tracker{broker: broker}
	t.current.Store(&Snapshot{Log: []string{}})

	return t
}

// Snapshot returns the latest state.
func (t *Tracker) Snapshot() Snapshot {
	return *t.current.Load()
}

// Begin marks a new run as started. It fails while another run is active.
func (t *Tracker) Begin(runID, report string) error {
	now := time.Now()

	for {
		old := t.current.Load()
		if old.Running {
			return apperrors.ErrRunInProgress
		}

		next := &Snapshot{
			RunID:     runID,
			Report:    report,
			Running:   true,
			Stage:     automation.StageLogin,
			Status:    automation.StatusRunning,
			Message:   "starting",
			Log:       []string{"starting " + report},
			StartedAt: now,
			UpdatedAt: now,
		}

		if t.current.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// Apply folds one event into the current snapshot. Events from a run other
// than the current one are ignored.
func (t *Tracker) Apply(e automation.Event) {
	for {
		old := t.current.Load()
		if old.RunID != "" && e.RunID != old.RunID {
			return
		}

		next := fold(*old, e)
		if t.current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// End closes runID with a terminal event derived from err unless the run
// already reported one. It covers runs that panicked or whose final event
// was dropped after cancellation.
func (t *Tracker) End(runID string, err error) {
	cur := t.current.Load()
	if cur.RunID != runID || !cur.Running {
		return
	}

	e := automation.Event{
		RunID:   runID,
		Time:    time.Now(),
		Stage:   cur.Stage,
		Status:  automation.StatusCompleted,
		Message: "run finished",
	}

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		e.Status = automation.StatusStopped
		e.Message = "run stopped"
	default:
		e.Status = automation.StatusFailed
		e.Message = "run failed"
		e.Err = err.Error()
	}

	t.Apply(e)

	if t.broker != nil {
		t.broker.Publish(e)
	}
}

func fold(s Snapshot, e automation.Event) Snapshot {
	s.RunID = e.RunID
	s.Stage = e.Stage
	s.Status = e.Status
	s.Message = e.Message
	s.Running = !e.Terminal()
	s.Error = e.Err
	s.UpdatedAt = e.Time
	s.Selection = nil

	if e.Status == automation.StatusWaiting {
		s.Selection = e.Matches
	}

	log := make([]string, 0, len(s.Log)+1)
	log = append(log, s.Log...)
	log = append(log, e.Message)

	if len(log) > maxLogLines {
		log = log[len(log)-maxLogLines:]
	}

	s.Log = log

	return s
}

// Consume applies and broadcasts events until the channel closes or ctx ends.
func (t *Tracker) Consume(ctx context.Context, events <-chan automation.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}

			t.Apply(e)

			if t.broker != nil {
				t.broker.Publish(e)
			}
		}
	}
}

// Broker fans run events out to SSE subscribers. Slow subscribers miss
// events rather than stall the run.
type Broker struct {
	mu   sync.Mutex
	subs map[chan automation.Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan automation.Event]struct{})}
}

// Subscribe returns an event channel and a func that releases it.
func (b *Broker) Subscribe() (<-chan automation.Event, func()) {
	ch := make(chan automation.Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broker) Publish(e automation.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
