package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newtron-network/newtverify/pkg/util"
)

// Logger records verification rounds and queries them back.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// RotationConfig configures log file rotation. Zero values disable
// rotation and backup pruning respectively.
type RotationConfig struct {
	MaxSize    int64 // bytes
	MaxBackups int
}

// FileLogger appends audit events to a JSON-lines file, one verification
// round per line. Rotated files are named <path>.<timestamp>.
type FileLogger struct {
	mu       sync.RWMutex
	path     string
	file     *os.File
	rotation RotationConfig
}

// NewFileLogger opens (or creates) the audit log at path.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{path: path, rotation: rotation}
	if err := l.open(); err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = f
	return nil
}

// Log appends event, rotating first when the file has reached MaxSize.
func (l *FileLogger) Log(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.needsRotation() {
		if err := l.rotate(); err != nil {
			return fmt.Errorf("rotating audit log: %w", err)
		}
	}
	_, err = l.file.Write(append(data, '\n'))
	return err
}

func (l *FileLogger) needsRotation() bool {
	if l.rotation.MaxSize <= 0 {
		return false
	}
	info, err := l.file.Stat()
	return err == nil && info.Size() >= l.rotation.MaxSize
}

// Query returns the events matching filter, oldest first. Malformed lines
// are skipped with a warning. Only the current file is read.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []*Event{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []*Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		event := &Event{}
		if err := json.Unmarshal(scanner.Bytes(), event); err != nil {
			util.Warnf("audit: skipping malformed log entry at line %d: %v", line, err)
			continue
		}
		if filter.matches(event) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return filter.page(events), nil
}

// Close closes the log file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (f Filter) matches(e *Event) bool {
	switch {
	case f.Kind != "" && e.Kind != f.Kind,
		f.User != "" && e.User != f.User,
		f.Target != "" && e.Target != f.Target,
		f.Host != "" && !slices.Contains(e.Hosts, f.Host),
		!f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime),
		!f.EndTime.IsZero() && e.Timestamp.After(f.EndTime),
		f.SuccessOnly && !e.Success,
		f.FailureOnly && e.Success,
		f.MismatchOnly && (!e.Success || e.Verified):
		return false
	}
	return true
}

func (f Filter) page(events []*Event) []*Event {
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return []*Event{}
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	// Millisecond stamps keep rapid rotations apart and sort by name.
	backup := l.path + "." + time.Now().Format("20060102-150405.000")
	if err := os.Rename(l.path, backup); err != nil {
		return err
	}
	if err := l.open(); err != nil {
		return err
	}
	if l.rotation.MaxBackups > 0 {
		l.pruneBackups()
	}
	return nil
}

// pruneBackups removes the oldest backups beyond MaxBackups.
func (l *FileLogger) pruneBackups() {
	backups, err := filepath.Glob(l.path + ".*")
	if err != nil || len(backups) <= l.rotation.MaxBackups {
		return
	}
	sort.Strings(backups)
	for _, b := range backups[:len(backups)-l.rotation.MaxBackups] {
		if err := os.Remove(b); err != nil {
			util.Warnf("audit: removing old log %s: %v", b, err)
		}
	}
}

// loggerHolder wraps a Logger so atomic.Value always stores the same concrete type.
type loggerHolder struct {
	logger Logger
}

var defaultLogger atomic.Value

// SetDefaultLogger sets the logger used by Log and Query. nil disables
// auditing.
func SetDefaultLogger(logger Logger) {
	defaultLogger.Store(loggerHolder{logger: logger})
}

func getDefaultLogger() Logger {
	v, _ := defaultLogger.Load().(loggerHolder)
	return v.logger
}

// Log records event with the default logger; a no-op when none is set.
func Log(event *Event) error {
	if l := getDefaultLogger(); l != nil {
		return l.Log(event)
	}
	return nil
}

// Query queries events from the default logger
func Query(filter Filter) ([]*Event, error) {
	if l := getDefaultLogger(); l != nil {
		return l.Query(filter)
	}
	return []*Event{}, nil
}
