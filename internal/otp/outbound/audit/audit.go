package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
)

// Recorder keeps an append-only trail of code lifecycle events.
//
// Every entry is written as one JSON line to a local file. When an object
// store is configured, the entry is also archived there; archive failures
// are logged but never fail the recording, the local file is the source of
// truth.
type Recorder struct {
	mu      sync.Mutex
	path    string
	archive storage.Storage
	bucket  string
	ins     instrument.Instrumentation
}

// Config configures the Recorder.
type Config struct {
	// Path is the local audit file location.
	Path string
	// Archive is the optional object store for long-term retention.
	Archive storage.Storage
	// Bucket is the archive bucket; required when Archive is set.
	Bucket string
	// Instrument provides tracing.
	Instrument instrument.Instrumentation
}

func NewRecorder(cfg Config) *Recorder {
	return &Recorder{
		path:    cfg.Path,
		archive: cfg.Archive,
		bucket:  cfg.Bucket,
		ins:     cfg.Instrument,
	}
}

// Record appends the entry to the audit file and archives it best effort.
func (r *Recorder) Record(ctx context.Context, e usecase.AuditEntry) error {
	ctx, span := r.ins.Tracer("otp.outbound.audit").Start(ctx, "Record")
	defer span.End()

	line, err := json.Marshal(e)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := r.appendLine(line); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if r.archive != nil {
		key := fmt.Sprintf("audit/%s/%d-%s.json", e.At.UTC().Format("2006/01/02"), e.CodeID, e.Event)
		if _, err := r.archive.PutObject(ctx, r.bucket, key, bytes.NewReader(line), storage.PutOptions{
			Size:        int64(len(line)),
			ContentType: "application/json",
		}); err != nil {
			slog.WarnContext(ctx, "failed to archive audit entry", "key", key, "error", err)
		}
	}

	return nil
}

func (r *Recorder) appendLine(line []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
