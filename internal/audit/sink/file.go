package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// FileSink appends events as JSON lines. The file is opened on first write.
type FileSink struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// NewFileSink creates a FileSink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Name identifies the sink in logs and metrics.
func (f *FileSink) Name() string { return "file" }

// Write appends one JSON document per event and syncs the file.
func (f *FileSink) Write(_ context.Context, events []*auditDomain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
			return apperrors.Wrap(err, "failed to create audit log directory")
		}
		file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return apperrors.Wrap(err, "failed to open audit log file")
		}
		f.file = file
	}

	enc := json.NewEncoder(f.file)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return apperrors.Wrap(err, "failed to write audit event")
		}
	}
	return f.file.Sync()
}

// Close closes the underlying file if it was opened.
func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
