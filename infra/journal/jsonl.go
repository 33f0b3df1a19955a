package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/matveld/bms/core/eventlog"
)

// JSONLJournal mirrors event log entries into a JSONL file, one entry per
// line. It implements eventlog.Mirror.
type JSONLJournal struct {
	path string
	mu   sync.Mutex
}

// NewJSONL creates the file when missing and returns the journal.
func NewJSONL(path string) (*JSONLJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLJournal{path: path}, nil
}

// Append writes one entry to the end of the file.
func (j *JSONLJournal) Append(e eventlog.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(e)
}

// Query reads entries back, filtered by time range and severity. Zero
// times and an empty severity match everything.
func (j *JSONLJournal) Query(start, end time.Time, sev eventlog.Severity) ([]eventlog.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.Open(j.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []eventlog.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e eventlog.Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if !start.IsZero() && e.Time.Before(start) {
			continue
		}
		if !end.IsZero() && e.Time.After(end) {
			continue
		}
		if sev != "" && e.Severity != sev {
			continue
		}
		res = append(res, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close is a no-op; the file is opened per operation.
func (j *JSONLJournal) Close() error { return nil }
