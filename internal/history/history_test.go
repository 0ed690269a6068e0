package history

import (
	"path/filepath"
	"testing"
	"time"

	"shellgate/internal/testutil"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	testutil.RequireNoError(t, err, "Open")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)

	code := 0
	first := Entry{
		EvaluationID: "eval-1",
		At:           time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Command:      "ls -la",
		Target:       "host",
		Mode:         "confirm",
		Decision:     "allow",
		Severity:     "none",
		ExitCode:     &code,
	}
	second := Entry{
		EvaluationID: "eval-2",
		At:           time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
		Command:      "rm -rf /",
		Target:       "docker:dev",
		Mode:         "safe-yolo",
		Decision:     "block",
		Severity:     "critical",
		Category:     "filesystem-destruction",
		Rejection:    "policy_blocked",
	}
	testutil.RequireNoError(t, s.Record(first), "record first")
	testutil.RequireNoError(t, s.Record(second), "record second")

	entries, err := s.Recent(10)
	testutil.RequireNoError(t, err, "Recent")
	testutil.RequireLen(t, entries, 2, "recorded entries")

	// Newest first.
	testutil.RequireEqual(t, "eval-2", entries[0].EvaluationID, "ordering")
	testutil.RequireEqual(t, "eval-1", entries[1].EvaluationID, "ordering")

	// A rejection has no exit code; a completed run keeps its.
	if entries[0].ExitCode != nil {
		t.Error("blocked evaluation should have no exit code")
	}
	if entries[1].ExitCode == nil || *entries[1].ExitCode != 0 {
		t.Error("completed evaluation should keep its exit code")
	}
	testutil.RequireEqual(t, "filesystem-destruction", entries[0].Category, "category")
	testutil.RequireEqual(t, "policy_blocked", entries[0].Rejection, "rejection")
}

func TestRecentLimit(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := Entry{
			EvaluationID: string(rune('a' + i)),
			At:           base.Add(time.Duration(i) * time.Minute),
			Command:      "ls",
			Target:       "host",
			Mode:         "confirm",
			Decision:     "allow",
			Severity:     "none",
		}
		testutil.RequireNoError(t, s.Record(e), "record")
	}

	entries, err := s.Recent(3)
	testutil.RequireNoError(t, err, "Recent")
	testutil.RequireLen(t, entries, 3, "limited entries")
	testutil.RequireEqual(t, "e", entries[0].EvaluationID, "newest first")
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "history.db")
	s, err := Open(path)
	testutil.RequireNoError(t, err, "Open with missing parents")
	s.Close()
}

func TestNoopRecorder(t *testing.T) {
	testutil.RequireNoError(t, Noop{}.Record(Entry{}), "noop record")
}
