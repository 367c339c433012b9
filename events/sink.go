package events

import (
	"sync"

	"go.uber.org/zap"
)

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Sink.
func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// LogSink writes each event at info level.
type LogSink struct {
	log    *zap.Logger
	format AccountFormat
}

// NewLogSink returns a sink logging to log. A nil format renders accounts as hex.
func NewLogSink(log *zap.Logger, format AccountFormat) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	if format == nil {
		format = HexAccounts
	}
	return &LogSink{log: log, format: format}
}

// Publish implements Sink.
func (s *LogSink) Publish(ev Event) {
	fields := []zap.Field{
		zap.String("event_id", ev.ID.String()),
		zap.Uint64("seq", ev.Seq),
	}
	if ev.DemandID != "" {
		fields = append(fields, zap.String("demand_id", ev.DemandID))
	}
	if !ev.Account.IsZero() {
		fields = append(fields, zap.String("account", s.format(ev.Account)))
	}
	if ev.Amount != 0 {
		fields = append(fields, zap.Uint64("amount", ev.Amount))
	}
	if ev.Pool != "" {
		fields = append(fields, zap.String("pool", ev.Pool))
	}
	s.log.Info(string(ev.Kind), fields...)
}

// Fanout publishes to every sink in order.
type Fanout []Sink

// Publish implements Sink.
func (f Fanout) Publish(ev Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(ev)
		}
	}
}
