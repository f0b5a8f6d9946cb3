package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newtron-network/newtverify/pkg/compare"
	"github.com/newtron-network/newtverify/pkg/verify"
)

func newTestLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(logPath, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, logPath
}

func TestEvent_New(t *testing.T) {
	event := NewEvent("alice", KindLinks, "links.yaml")

	if event.User != "alice" {
		t.Errorf("User = %q, want %q", event.User, "alice")
	}
	if event.Kind != KindLinks {
		t.Errorf("Kind = %q, want %q", event.Kind, KindLinks)
	}
	if event.Target != "links.yaml" {
		t.Errorf("Target = %q, want %q", event.Target, "links.yaml")
	}
	if event.ID == "" {
		t.Error("ID should not be empty")
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestEvent_WithLinkVerdicts(t *testing.T) {
	verdicts := []verify.LinkVerdict{
		{
			LinkID:         "trunk:SW1:Gi0/1-SW2:Gi0/2",
			OverallMatched: true,
			PerDevice: []compare.DeviceVerdict{
				{Hostname: "SW2", Matched: true},
				{Hostname: "SW1", Matched: true},
			},
		},
		{
			LinkID:    "vlan:SW1-vlan10",
			PerDevice: []compare.DeviceVerdict{{Hostname: "SW1"}},
		},
	}

	event := NewEvent("alice", KindLinks, "links.yaml").
		WithSource("redis").
		WithLinkVerdicts(verdicts).
		WithDuration(time.Second)

	if event.Total != 2 || event.Matched != 1 {
		t.Errorf("Total/Matched = %d/%d, want 2/1", event.Total, event.Matched)
	}
	if !event.Success {
		t.Error("Success should be true")
	}
	if event.Verified {
		t.Error("Verified should be false with a mismatched link")
	}
	if len(event.Hosts) != 2 || event.Hosts[0] != "SW1" || event.Hosts[1] != "SW2" {
		t.Errorf("Hosts = %v, want [SW1 SW2]", event.Hosts)
	}
	if event.Source != "redis" {
		t.Errorf("Source = %q", event.Source)
	}
	if event.Duration != time.Second {
		t.Errorf("Duration = %v", event.Duration)
	}
}

func TestEvent_WithLinkVerdicts_Empty(t *testing.T) {
	event := NewEvent("alice", KindLinks, "empty.yaml").WithLinkVerdicts(nil)
	if event.Verified {
		t.Error("an empty round should not count as verified")
	}
	if !event.Success {
		t.Error("Success should be true")
	}
}

func TestEvent_WithLabResult(t *testing.T) {
	res := &verify.LabCheckResult{
		LabID: "vlan-lab",
		PerHost: map[string]*verify.HostResult{
			"SW1": {
				Matched:   []verify.MatchedCommand{{Command: "show vlan"}},
				Unmatched: []verify.UnmatchedCommand{{Command: "show ip int brief"}},
			},
			"R1": {
				Matched: []verify.MatchedCommand{{Command: "show ip route"}},
			},
		},
	}

	event := NewEvent("bob", KindLab, "vlan-lab").
		WithPolicy(verify.PolicyStrict.String()).
		WithLabResult(res)

	if event.Total != 3 || event.Matched != 2 {
		t.Errorf("Total/Matched = %d/%d, want 3/2", event.Total, event.Matched)
	}
	if event.Verified {
		t.Error("Verified should be false with an unmatched command")
	}
	if len(event.Hosts) != 2 || event.Hosts[0] != "R1" {
		t.Errorf("Hosts = %v, want [R1 SW1]", event.Hosts)
	}
	if event.Policy != "strict" {
		t.Errorf("Policy = %q", event.Policy)
	}
}

func TestEvent_WithError(t *testing.T) {
	event := NewEvent("alice", KindLinks, "links.yaml").
		WithLinkVerdicts(nil).
		WithError(errors.New("fetch state: connection refused"))

	if event.Success {
		t.Error("Success should be false")
	}
	if event.Error != "fetch state: connection refused" {
		t.Errorf("Error = %q", event.Error)
	}

	event = NewEvent("alice", KindLinks, "links.yaml").WithError(nil)
	if event.Success {
		t.Error("Success should be false even with nil error")
	}
	if event.Error != "" {
		t.Errorf("Error = %q, want empty", event.Error)
	}
}

func TestFileLogger_Basic(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	event := NewEvent("alice", KindLab, "vlan-lab").WithLabResult(&verify.LabCheckResult{
		LabID:   "vlan-lab",
		PerHost: map[string]*verify.HostResult{"SW1": {}},
	})
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.User != "alice" || got.Kind != KindLab || got.Target != "vlan-lab" {
		t.Errorf("event = %+v", got)
	}
	if !got.Verified || !got.Success {
		t.Errorf("Verified/Success = %v/%v, want true/true", got.Verified, got.Success)
	}
	if len(got.Hosts) != 1 || got.Hosts[0] != "SW1" {
		t.Errorf("Hosts = %v", got.Hosts)
	}
}

func TestFileLogger_QueryFilters(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	matched := []verify.LinkVerdict{{
		OverallMatched: true,
		PerDevice:      []compare.DeviceVerdict{{Hostname: "SW1", Matched: true}},
	}}
	mismatched := []verify.LinkVerdict{{
		PerDevice: []compare.DeviceVerdict{{Hostname: "SW2"}},
	}}

	events := []*Event{
		NewEvent("alice", KindLinks, "a.yaml").WithLinkVerdicts(matched),
		NewEvent("bob", KindLinks, "b.yaml").WithLinkVerdicts(mismatched),
		NewEvent("alice", KindLab, "vlan-lab").WithError(errors.New("boom")),
		NewEvent("bob", KindLinks, "a.yaml").WithLinkVerdicts(matched),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"by user", Filter{User: "alice"}, 2},
		{"by kind", Filter{Kind: KindLab}, 1},
		{"by target", Filter{Target: "a.yaml"}, 2},
		{"by host", Filter{Host: "SW2"}, 1},
		{"success only", Filter{SuccessOnly: true}, 3},
		{"failure only", Filter{FailureOnly: true}, 1},
		{"mismatch only", Filter{MismatchOnly: true}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Offset: 3}, 1},
		{"offset beyond", Filter{Offset: 10}, 0},
		{"offset and limit", Filter{Offset: 1, Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("got %d events, want %d", len(results), tt.want)
			}
		})
	}
}

func TestFileLogger_QueryTimeFilter(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})
	logger.Log(NewEvent("alice", KindLinks, "a.yaml").WithLinkVerdicts(nil))

	results, err := logger.Query(Filter{StartTime: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 events after start time, got %d", len(results))
	}

	results, err = logger.Query(Filter{EndTime: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 events before end time, got %d", len(results))
	}

	results, err = logger.Query(Filter{
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 event in window, got %d", len(results))
	}
}

func TestFileLogger_QueryNonExistent(t *testing.T) {
	logger, logPath := newTestLogger(t, RotationConfig{})
	if err := os.Remove(logPath); err != nil {
		t.Fatalf("removing log: %v", err)
	}

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Errorf("Query on non-existent should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 events, got %d", len(results))
	}
}

func TestFileLogger_QueryMalformedJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	content := `{"user":"alice","kind":"links","target":"a.yaml","success":true}
invalid json line
{"user":"bob","kind":"lab","target":"vlan-lab","success":true}
`
	if err := os.WriteFile(logPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test data: %v", err)
	}

	logger, err := NewFileLogger(logPath, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	results, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 valid events (skipping malformed), got %d", len(results))
	}
}

func TestFileLogger_QueryReadError(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	dir := filepath.Join(t.TempDir(), "audit.log")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	logger.path = dir

	if _, err := logger.Query(Filter{}); err == nil {
		t.Error("Query should fail when trying to read a directory")
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, logPath := newTestLogger(t, RotationConfig{MaxSize: 100})

	for i := 0; i < 5; i++ {
		event := NewEvent("alice", KindLinks, "links.yaml").WithLinkVerdicts(nil)
		if err := logger.Log(event); err != nil {
			t.Fatalf("Log failed on iteration %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	matches, err := filepath.Glob(logPath + ".*")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) == 0 {
		t.Error("Expected rotation to create backup files")
	}
}

func TestFileLogger_RotationWithCleanup(t *testing.T) {
	logger, logPath := newTestLogger(t, RotationConfig{MaxSize: 50, MaxBackups: 2})

	for i := 0; i < 10; i++ {
		if err := logger.Log(NewEvent("alice", KindLab, "vlan-lab")); err != nil {
			t.Fatalf("Log failed on iteration %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	matches, err := filepath.Glob(logPath + ".*")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) > 2 {
		t.Errorf("Expected at most 2 backup files, got %d", len(matches))
	}
}

func TestNewFileLogger_Errors(t *testing.T) {
	if _, err := NewFileLogger("/dev/null/impossible/audit.log", RotationConfig{}); err == nil {
		t.Error("NewFileLogger should fail when directory creation fails")
	}

	logPath := filepath.Join(t.TempDir(), "audit.log")
	if err := os.Mkdir(logPath, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if _, err := NewFileLogger(logPath, RotationConfig{}); err == nil {
		t.Error("NewFileLogger should fail when log path is a directory")
	}
}

func TestFileLogger_CloseNilFile(t *testing.T) {
	logger := &FileLogger{path: "/tmp/test.log"}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() with nil file should not error: %v", err)
	}
}

func TestDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("test", KindLinks, "x")); err != nil {
		t.Errorf("Log with nil default should not error: %v", err)
	}
	results, err := Query(Filter{})
	if err != nil {
		t.Errorf("Query with nil default should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}

	logger, _ := newTestLogger(t, RotationConfig{})
	SetDefaultLogger(logger)

	if err := Log(NewEvent("alice", KindLab, "vlan-lab")); err != nil {
		t.Errorf("Log failed: %v", err)
	}
	results, err = Query(Filter{})
	if err != nil {
		t.Errorf("Query failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}
