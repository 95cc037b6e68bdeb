package domain

import (
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// Audit error definitions.
var (
	// ErrUnsupportedExportFormat indicates the export format is unknown or not enabled.
	ErrUnsupportedExportFormat = errors.Wrap(errors.ErrInvalidInput, "unsupported export format")

	// ErrInvalidTimeRange indicates the report window ends before it starts.
	ErrInvalidTimeRange = errors.Wrap(errors.ErrInvalidInput, "end must not be before start")

	// ErrSinkWrite indicates a sink failed to persist a batch.
	ErrSinkWrite = errors.Wrap(errors.ErrPersistence, "audit sink write failed")

	// ErrSignatureInvalid indicates a persisted event does not match its signature.
	ErrSignatureInvalid = errors.New("audit event signature invalid")

	// ErrPipelineClosed indicates the pipeline was closed.
	ErrPipelineClosed = errors.New("audit pipeline closed")
)
