package eventlog

import (
	"sync"
	"time"

	"github.com/matveld/bms/core/logger"
)

// Severity grades a log entry.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Valid reports whether the severity is one of the known grades.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Entry is one immutable log line. Identity is append order.
type Entry struct {
	Time     time.Time `json:"timestamp"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Mirror receives every appended entry, typically to persist it outside the
// engine. Mirror failures never fail the append.
type Mirror interface {
	Append(Entry) error
}

// Log is the append-only in-memory event log.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	mirror  Mirror
	log     logger.Logger
	now     func() time.Time
}

// New creates an empty log. mirror may be nil.
func New(mirror Mirror, log logger.Logger) *Log {
	return &Log{mirror: mirror, log: log, now: time.Now}
}

// Append records an entry. It never fails.
func (l *Log) Append(sev Severity, msg string) Entry {
	e := Entry{Time: l.now(), Severity: sev, Message: msg}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	mirror := l.mirror
	l.mu.Unlock()
	if mirror != nil {
		if err := mirror.Append(e); err != nil && l.log != nil {
			l.log.Errorf("event log mirror: %v", err)
		}
	}
	return e
}

// Recent returns the last n entries in chronological order. n larger than
// the log returns everything; n <= 0 returns nothing.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	res := make([]Entry, n)
	copy(res, l.entries[len(l.entries)-n:])
	return res
}

// All returns a copy of every entry in append order.
func (l *Log) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	res := make([]Entry, len(l.entries))
	copy(res, l.entries)
	return res
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
