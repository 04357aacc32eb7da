// Package diag routes rule and capture diagnostics to per-channel logs.
// Every strategy rule writes a record for every tick it sees, so sinks
// must absorb failures without disturbing the trading loop.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives one diagnostic record per call. The channel names a
// destination log (e.g. "scarlet.txt", "errors.txt"); the message is a
// tab-delimited record.
type Sink interface {
	Append(channel, timestamp, message string)
}

// FileSink appends records as "timestamp\tmessage" lines to files under
// a log directory, one file per channel. Write failures are reported to
// the errors channel and otherwise swallowed.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

const errorChannel = "errors.txt"

// NewFileSink creates a sink writing under dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Append writes one record to the channel's file.
func (s *FileSink) Append(channel, timestamp, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.append(channel, timestamp, message); err != nil && channel != errorChannel {
		_ = s.append(errorChannel, timestamp,
			fmt.Sprintf("append to %s failed: %v", channel, err))
	}
}

func (s *FileSink) append(channel, timestamp, message string) error {
	f, err := os.OpenFile(filepath.Join(s.dir, channel),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s\t%s\n", timestamp, message)
	return err
}

// Verify interface compliance at compile time.
var _ Sink = (*FileSink)(nil)

// Record is one captured diagnostic, for tests.
type Record struct {
	Channel   string
	Timestamp string
	Message   string
}

// MemorySink collects records in memory, for tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append records the diagnostic.
func (s *MemorySink) Append(channel, timestamp, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{channel, timestamp, message})
}

// Records returns every captured record in arrival order.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// ByChannel returns the captured records for one channel.
func (s *MemorySink) ByChannel(channel string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.Channel == channel {
			out = append(out, r)
		}
	}
	return out
}

// Verify interface compliance at compile time.
var _ Sink = (*MemorySink)(nil)

// Discard is a Sink that drops every record.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Append(string, string, string) {}
