package domain

import "sync"

// ProgressStatus is the lifecycle stage a source reports
type ProgressStatus string

const (
	StatusStarted    ProgressStatus = "started"
	StatusSearching  ProgressStatus = "searching"
	StatusProcessing ProgressStatus = "processing"
	StatusFormatting ProgressStatus = "formatting"
	StatusCompleted  ProgressStatus = "completed"
	StatusError      ProgressStatus = "error"
	StatusNoResults  ProgressStatus = "no-results"
)

// Terminal reports whether a status ends a source's progress stream
func (s ProgressStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusNoResults
}

// ProgressEvent is a single incremental status update from one source
type ProgressEvent struct {
	Source  string         `json:"source"`
	Status  ProgressStatus `json:"status"`
	Percent int            `json:"progressPercent"`
	Message string         `json:"message,omitempty"`
	Count   int            `json:"count,omitempty"`
}

// ProgressSink is the typed event stream a discovery run publishes to.
// Multiple adapters write concurrently; the caller drains Events. Sends never
// block: if the consumer falls behind, events are dropped rather than stalling
// an adapter. Percent values are forced monotonically non-decreasing per
// source.
type ProgressSink struct {
	ch chan ProgressEvent

	mu     sync.Mutex
	last   map[string]int
	closed bool
}

// NewProgressSink creates a sink with the given channel buffer size
func NewProgressSink(buffer int) *ProgressSink {
	if buffer <= 0 {
		buffer = 64
	}
	return &ProgressSink{
		ch:   make(chan ProgressEvent, buffer),
		last: make(map[string]int),
	}
}

// Publish records and delivers an event. Safe for concurrent use and a no-op
// on a nil sink so adapters can run without progress reporting.
func (s *ProgressSink) Publish(ev ProgressEvent) {
	if s == nil {
		return
	}
	if ev.Percent < 0 {
		ev.Percent = 0
	}
	if ev.Percent > 100 {
		ev.Percent = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// an abandoned adapter may still report after the run ended
		return
	}
	if prev, ok := s.last[ev.Source]; ok && ev.Percent < prev {
		ev.Percent = prev
	}
	s.last[ev.Source] = ev.Percent

	select {
	case s.ch <- ev:
	default:
		// consumer is not keeping up; drop rather than block the adapter
	}
}

// Events returns the stream for the caller to drain. The channel is closed
// when the run finishes.
func (s *ProgressSink) Events() <-chan ProgressEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

// AggregatePercent returns the mean progress across the given sources,
// treating sources that have not reported yet as zero
func (s *ProgressSink) AggregatePercent(sources []string) int {
	if s == nil || len(sources) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, src := range sources {
		total += s.last[src]
	}
	return total / len(sources)
}

// Close ends the stream. Publish calls that race the close are dropped, so
// adapters abandoned by a cancelled run cannot panic the sink.
func (s *ProgressSink) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
