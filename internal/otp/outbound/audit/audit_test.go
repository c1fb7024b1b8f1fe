package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
)

type stubArchive struct {
	err  error
	keys []string
}

func (s *stubArchive) Close() error { return nil }

func (s *stubArchive) PutObject(_ context.Context, _, key string, _ io.Reader, _ storage.PutOptions) (storage.ObjectInfo, error) {
	if s.err != nil {
		return storage.ObjectInfo{}, s.err
	}
	s.keys = append(s.keys, key)
	return storage.ObjectInfo{Key: key}, nil
}

func (s *stubArchive) GetObject(context.Context, string, string, storage.GetOptions) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, errors.New("not implemented")
}

func (s *stubArchive) StatObject(context.Context, string, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, errors.New("not implemented")
}

func (s *stubArchive) DeleteObject(context.Context, string, string) error { return nil }

func (s *stubArchive) ListObjects(context.Context, string, string, storage.ListOptions) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *stubArchive) PresignGet(context.Context, string, string, time.Duration) (string, error) {
	return "", storage.ErrMissingSigner
}

func (s *stubArchive) PresignPut(context.Context, string, string, storage.PutOptions, time.Duration) (string, error) {
	return "", storage.ErrMissingSigner
}

func testEntry(codeID int64, event string) usecase.AuditEntry {
	return usecase.AuditEntry{
		Event:       event,
		CodeID:      codeID,
		UserID:      7,
		OperationID: "login",
		At:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readLines(t *testing.T, path string) []usecase.AuditEntry {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected audit file to exist, got %v", err)
	}
	defer f.Close()

	var entries []usecase.AuditEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e usecase.AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("expected valid JSON line, got %v", err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestRecorderRecord(t *testing.T) {
	t.Run("AppendsJSONLines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		r := NewRecorder(Config{Path: path, Instrument: instrument.NewNoop()})

		if err := r.Record(context.Background(), testEntry(1, "issued")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := r.Record(context.Background(), testEntry(1, "used")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		entries := readLines(t, path)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Event != "issued" || entries[1].Event != "used" {
			t.Fatalf("expected issued then used, got %+v", entries)
		}
	})

	t.Run("ArchivesToObjectStore", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		arc := &stubArchive{}
		r := NewRecorder(Config{Path: path, Archive: arc, Bucket: "audit", Instrument: instrument.NewNoop()})

		if err := r.Record(context.Background(), testEntry(42, "expired")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(arc.keys) != 1 || arc.keys[0] != "audit/2026/03/01/42-expired.json" {
			t.Fatalf("expected an archive object keyed by date, got %v", arc.keys)
		}
	})

	t.Run("ArchiveFailureDoesNotFailRecord", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "audit.jsonl")
		arc := &stubArchive{err: errors.New("minio down")}
		r := NewRecorder(Config{Path: path, Archive: arc, Bucket: "audit", Instrument: instrument.NewNoop()})

		if err := r.Record(context.Background(), testEntry(42, "expired")); err != nil {
			t.Fatalf("expected archive failures to be swallowed, got %v", err)
		}

		if got := readLines(t, path); len(got) != 1 {
			t.Fatalf("expected the local line to be written, got %d", len(got))
		}
	})
}
